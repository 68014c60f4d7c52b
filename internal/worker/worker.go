// Package worker runs the notification dispatch loop: jobs come off the Redis
// queue and go out as HTTP posts to the configured notify webhook (a WhatsApp
// gateway in production).
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/washpoint/backend/internal/notifications"
	"github.com/washpoint/backend/pkg/clock"
	"github.com/washpoint/backend/pkg/queue"
)

// Dispatcher processes notification jobs: post to the webhook, record the
// outcome on the notification row.
type Dispatcher struct {
	repo       *notifications.Repository
	queue      *queue.Queue
	client     *http.Client
	webhookURL string
	clock      clock.Clock
	logger     *zap.Logger
}

// NewDispatcher creates a notification dispatcher. An empty webhookURL puts the
// dispatcher in log-only mode: jobs are marked sent without an outbound call,
// which keeps development environments quiet.
func NewDispatcher(repo *notifications.Repository, q *queue.Queue, webhookURL string, timeout time.Duration, clk clock.Clock, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		repo:       repo,
		queue:      q,
		client:     &http.Client{Timeout: timeout},
		webhookURL: webhookURL,
		clock:      clk,
		logger:     logger,
	}
}

// Process executes one notification job.
func (d *Dispatcher) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeNotification {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.NotificationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if d.webhookURL == "" {
		d.logger.Info("notify webhook not configured; marking sent",
			zap.Int64("notification_id", payload.NotificationID),
			zap.String("kind", payload.Kind))
		return d.repo.MarkSent(ctx, payload.NotificationID, d.clock.Now())
	}

	body, err := json.Marshal(map[string]string{
		"phone":   payload.Phone,
		"message": payload.Message,
		"kind":    payload.Kind,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook status: %d", resp.StatusCode)
	}

	if err := d.repo.MarkSent(ctx, payload.NotificationID, d.clock.Now()); err != nil {
		d.logger.Error("mark sent failed", zap.Error(err), zap.Int64("notification_id", payload.NotificationID))
		return fmt.Errorf("update db: %w", err)
	}
	d.logger.Info("notification delivered",
		zap.Int64("notification_id", payload.NotificationID),
		zap.String("kind", payload.Kind))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error. Jobs that
// exhaust their retries are marked failed and land in the DLQ.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("notification worker stopping")
			return
		default:
		}

		job, err := d.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			d.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		d.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := d.Process(ctx, job); err != nil {
			d.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if job.Attempt+1 >= queue.MaxRetries {
				d.markFailed(ctx, job, err)
			}
			if reErr := d.queue.Retry(ctx, job); reErr != nil {
				d.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
		}
	}
}

func (d *Dispatcher) markFailed(ctx context.Context, job *queue.Job, cause error) {
	var payload queue.NotificationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return
	}
	if err := d.repo.MarkFailed(ctx, payload.NotificationID, cause.Error()); err != nil {
		d.logger.Error("mark failed failed", zap.Error(err), zap.Int64("notification_id", payload.NotificationID))
	}
}
