// Package events fans wash lifecycle changes out to the side-effect consumers:
// the realtime hub, the notification queue and the loyalty ledger. Consumers
// are attached as callbacks at wiring time so the order service stays free of
// transport dependencies.
package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/washpoint/backend/internal/models"
)

// StatusChange describes one observed wash status move. It is emitted only when
// the status actually changed; idempotent re-sets never reach the emitter.
type StatusChange struct {
	Order *models.Order
	From  models.WashStatus
	To    models.WashStatus
	At    time.Time
}

// Emitter receives lifecycle changes. Implementations must never fail the
// operation that produced the change.
type Emitter interface {
	WashStatusChanged(ctx context.Context, change StatusChange)
}

// Nop discards every event. Used in tests and tooling.
type Nop struct{}

func (Nop) WashStatusChanged(context.Context, StatusChange) {}

// Fanout dispatches each change to the attached consumers. Consumer failures
// are logged and swallowed: a dead websocket hub or a full queue must not roll
// back a wash that already moved.
type Fanout struct {
	log     *zap.Logger
	publish func(ctx context.Context, change StatusChange) error
	notify  func(ctx context.Context, change StatusChange) error
	reward  func(ctx context.Context, shopID, customerID int64) error
}

func NewFanout(log *zap.Logger) *Fanout {
	return &Fanout{log: log}
}

// OnPublish attaches the realtime broadcast consumer.
func (f *Fanout) OnPublish(fn func(ctx context.Context, change StatusChange) error) {
	f.publish = fn
}

// OnNotify attaches the customer notification consumer.
func (f *Fanout) OnNotify(fn func(ctx context.Context, change StatusChange) error) {
	f.notify = fn
}

// OnReward attaches the loyalty consumer, invoked once per delivery.
func (f *Fanout) OnReward(fn func(ctx context.Context, shopID, customerID int64) error) {
	f.reward = fn
}

// WashStatusChanged dispatches the change to every attached consumer.
func (f *Fanout) WashStatusChanged(ctx context.Context, change StatusChange) {
	fields := []zap.Field{
		zap.Int64("order_id", change.Order.ID),
		zap.Int64("shop_id", change.Order.ShopID),
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)),
	}

	if f.publish != nil {
		if err := f.publish(ctx, change); err != nil {
			f.log.Warn("realtime publish failed", append(fields, zap.Error(err))...)
		}
	}
	if f.notify != nil {
		if err := f.notify(ctx, change); err != nil {
			f.log.Warn("notification enqueue failed", append(fields, zap.Error(err))...)
		}
	}
	if change.To == models.WashDelivered && f.reward != nil {
		if err := f.reward(ctx, change.Order.ShopID, change.Order.CustomerID); err != nil {
			f.log.Warn("loyalty point grant failed", append(fields, zap.Error(err))...)
		}
	}
}
