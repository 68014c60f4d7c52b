package models

import (
	"encoding/json"
	"time"
)

// NotificationKind selects the message template.
type NotificationKind string

const (
	NotifyStatusChanged NotificationKind = "status_changed"
	NotifyReadyPickup   NotificationKind = "ready_pickup"
	NotifyReviewRequest NotificationKind = "review_request"
)

// NotificationStatus is the delivery state of a notification attempt.
type NotificationStatus string

const (
	NotificationQueued NotificationStatus = "queued"
	NotificationSent   NotificationStatus = "sent"
	NotificationFailed NotificationStatus = "failed"
)

// Notification records one outbound customer message. Delivery is best-effort
// and never blocks the lifecycle operation that triggered it.
type Notification struct {
	ID         int64              `json:"id"`
	ShopID     int64              `json:"shop_id"`
	CustomerID int64              `json:"customer_id"`
	Kind       NotificationKind   `json:"kind"`
	Payload    json.RawMessage    `json:"payload"`
	Status     NotificationStatus `json:"status"`
	Error      *string            `json:"error,omitempty"`
	SentAt     *time.Time         `json:"sent_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}
