package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/washpoint/backend/internal/events"
	"github.com/washpoint/backend/internal/models"
	"github.com/washpoint/backend/pkg/queue"
)

// Store is the slice of Repository the notifier writes through.
type Store interface {
	Insert(ctx context.Context, n *models.Notification) error
}

// Enqueuer hands jobs to the dispatch queue. *queue.Queue implements it.
type Enqueuer interface {
	EnqueueNotification(ctx context.Context, payload queue.NotificationPayload) error
}

// Notifier turns wash status changes into queued customer messages. It is
// attached to the event fan-out at wiring time.
type Notifier struct {
	store Store
	queue Enqueuer
	log   *zap.Logger
}

func NewNotifier(store Store, q Enqueuer, log *zap.Logger) *Notifier {
	return &Notifier{store: store, queue: q, log: log}
}

// kindFor picks the message template for the arriving status.
func kindFor(to models.WashStatus) models.NotificationKind {
	switch to {
	case models.WashReadyPickup:
		return models.NotifyReadyPickup
	case models.WashDelivered:
		return models.NotifyReviewRequest
	default:
		return models.NotifyStatusChanged
	}
}

// messageFor renders the customer-facing text.
func messageFor(kind models.NotificationKind, o *models.Order) string {
	plate := ""
	if o.Vehicle != nil {
		plate = " " + o.Vehicle.LicensePlate
	}
	switch kind {
	case models.NotifyReadyPickup:
		return fmt.Sprintf("Your car%s is ready for pickup!", plate)
	case models.NotifyReviewRequest:
		return fmt.Sprintf("Thanks for choosing us! How was the wash for your car%s?", plate)
	default:
		return fmt.Sprintf("Update on your car%s: %s", plate, o.WashStatus)
	}
}

// OnStatusChange records the notification and enqueues its delivery. The row is
// written first so a queue outage leaves a visible queued record behind.
func (n *Notifier) OnStatusChange(ctx context.Context, change events.StatusChange) error {
	o := change.Order
	kind := kindFor(change.To)

	payload, err := json.Marshal(map[string]interface{}{
		"order_id": o.ID,
		"from":     change.From,
		"to":       change.To,
	})
	if err != nil {
		return err
	}

	row := &models.Notification{
		ShopID:     o.ShopID,
		CustomerID: o.CustomerID,
		Kind:       kind,
		Payload:    payload,
	}
	if err := n.store.Insert(ctx, row); err != nil {
		return err
	}

	phone := ""
	if o.Customer != nil {
		phone = o.Customer.Phone
	}
	err = n.queue.EnqueueNotification(ctx, queue.NotificationPayload{
		NotificationID: row.ID,
		ShopID:         o.ShopID,
		CustomerID:     o.CustomerID,
		Kind:           string(kind),
		Phone:          phone,
		Message:        messageFor(kind, o),
	})
	if err != nil {
		n.log.Warn("notification enqueue failed; row stays queued",
			zap.Int64("notification_id", row.ID), zap.Error(err))
		return err
	}
	return nil
}
