// Package notifications records outbound customer messages and hands them to
// the dispatch queue. Delivery is best-effort: a failed enqueue or send never
// rolls back the lifecycle change that triggered it.
package notifications

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/washpoint/backend/internal/models"
)

// Repository persists notification rows.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert records a queued notification and fills in the generated id.
func (r *Repository) Insert(ctx context.Context, n *models.Notification) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO notifications (shop_id, customer_id, kind, payload, status)
		VALUES ($1, $2, $3, $4, 'queued')
		RETURNING id, created_at`,
		n.ShopID, n.CustomerID, n.Kind, n.Payload).Scan(&n.ID, &n.CreatedAt)
}

// MarkSent records a successful delivery.
func (r *Repository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE notifications SET status = 'sent', sent_at = $1, error = NULL WHERE id = $2`,
		at, id)
	return err
}

// MarkFailed records a delivery failure after the queue gave up.
func (r *Repository) MarkFailed(ctx context.Context, id int64, reason string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE notifications SET status = 'failed', error = $1 WHERE id = $2`,
		reason, id)
	return err
}

// ListByCustomer returns a customer's notification history, newest first.
func (r *Repository) ListByCustomer(ctx context.Context, shopID, customerID int64, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, shop_id, customer_id, kind, payload, status, error, sent_at, created_at
		FROM notifications
		WHERE shop_id = $1 AND customer_id = $2
		ORDER BY created_at DESC LIMIT $3`,
		shopID, customerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.ShopID, &n.CustomerID, &n.Kind, &n.Payload,
			&n.Status, &n.Error, &n.SentAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
