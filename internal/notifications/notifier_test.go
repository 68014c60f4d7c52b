package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/washpoint/backend/internal/events"
	"github.com/washpoint/backend/internal/models"
	"github.com/washpoint/backend/pkg/queue"
)

type fakeStore struct {
	rows []*models.Notification
}

func (f *fakeStore) Insert(_ context.Context, n *models.Notification) error {
	n.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, n)
	return nil
}

type fakeQueue struct {
	jobs []queue.NotificationPayload
	err  error
}

func (f *fakeQueue) EnqueueNotification(_ context.Context, p queue.NotificationPayload) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, p)
	return nil
}

func change(to models.WashStatus) events.StatusChange {
	return events.StatusChange{
		Order: &models.Order{
			ID:         7,
			ShopID:     1,
			CustomerID: 10,
			WashStatus: to,
			Vehicle:    &models.VehicleRef{LicensePlate: "ABC1234"},
			Customer:   &models.CustomerRef{ID: 10, Name: "Ana", Phone: "+5511999999999"},
		},
		From: models.WashWaiting,
		To:   to,
	}
}

func TestKindFor(t *testing.T) {
	assert.Equal(t, models.NotifyStatusChanged, kindFor(models.WashInProgress))
	assert.Equal(t, models.NotifyReadyPickup, kindFor(models.WashReadyPickup))
	assert.Equal(t, models.NotifyReviewRequest, kindFor(models.WashDelivered))
}

func TestOnStatusChange(t *testing.T) {
	store := &fakeStore{}
	q := &fakeQueue{}
	n := NewNotifier(store, q, zap.NewNop())

	err := n.OnStatusChange(context.Background(), change(models.WashReadyPickup))
	require.NoError(t, err)

	require.Len(t, store.rows, 1)
	assert.Equal(t, models.NotifyReadyPickup, store.rows[0].Kind)
	assert.Equal(t, int64(10), store.rows[0].CustomerID)

	require.Len(t, q.jobs, 1)
	assert.Equal(t, store.rows[0].ID, q.jobs[0].NotificationID)
	assert.Equal(t, "+5511999999999", q.jobs[0].Phone)
	assert.Contains(t, q.jobs[0].Message, "ABC1234")
	assert.Contains(t, q.jobs[0].Message, "ready for pickup")
}

func TestOnStatusChangeQueueFailureKeepsRow(t *testing.T) {
	store := &fakeStore{}
	q := &fakeQueue{err: errors.New("redis down")}
	n := NewNotifier(store, q, zap.NewNop())

	err := n.OnStatusChange(context.Background(), change(models.WashInProgress))
	require.Error(t, err)
	assert.Len(t, store.rows, 1, "the queued row survives the enqueue failure")
}
