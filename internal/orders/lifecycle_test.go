package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washpoint/backend/internal/models"
)

func TestApplyStatusStampsStartOnce(t *testing.T) {
	o := &models.Order{WashStatus: models.WashWaiting, PaymentStatus: models.PaymentPending}
	first := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	changed := ApplyStatus(o, models.WashInProgress, first)
	assert.True(t, changed)
	require.NotNil(t, o.StartedAt)
	assert.Equal(t, first, *o.StartedAt)

	// back to waiting and restarted later: the original stamp survives
	ApplyStatus(o, models.WashWaiting, first.Add(5*time.Minute))
	changed = ApplyStatus(o, models.WashInProgress, first.Add(10*time.Minute))
	assert.True(t, changed)
	assert.Equal(t, first, *o.StartedAt)
}

func TestApplyStatusStampsCompletionOnce(t *testing.T) {
	now := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)

	t.Run("completed stamps", func(t *testing.T) {
		o := &models.Order{WashStatus: models.WashInProgress}
		ApplyStatus(o, models.WashCompleted, now)
		require.NotNil(t, o.CompletedAt)
		assert.Equal(t, now, *o.CompletedAt)
	})

	t.Run("ready_pickup stamps", func(t *testing.T) {
		o := &models.Order{WashStatus: models.WashInProgress}
		ApplyStatus(o, models.WashReadyPickup, now)
		require.NotNil(t, o.CompletedAt)
	})

	t.Run("completed then ready_pickup keeps the first stamp", func(t *testing.T) {
		o := &models.Order{WashStatus: models.WashInProgress}
		ApplyStatus(o, models.WashCompleted, now)
		ApplyStatus(o, models.WashReadyPickup, now.Add(3*time.Minute))
		assert.Equal(t, now, *o.CompletedAt)
	})
}

func TestApplyStatusDeliveredSettlesPayment(t *testing.T) {
	o := &models.Order{WashStatus: models.WashReadyPickup, PaymentStatus: models.PaymentPending}

	changed := ApplyStatus(o, models.WashDelivered, time.Now())
	assert.True(t, changed)
	assert.Equal(t, models.PaymentPaid, o.PaymentStatus)
}

func TestApplyStatusSameStatusIsNoChange(t *testing.T) {
	o := &models.Order{WashStatus: models.WashWaiting}

	changed := ApplyStatus(o, models.WashWaiting, time.Now())
	assert.False(t, changed)
	assert.Nil(t, o.StartedAt)
	assert.Nil(t, o.CompletedAt)
}

func TestValidateStatus(t *testing.T) {
	assert.NoError(t, ValidateStatus(models.WashWaiting))
	assert.NoError(t, ValidateStatus(models.WashDelivered))
	assert.Error(t, ValidateStatus(models.WashStatus("detailing")))
	assert.Error(t, ValidateStatus(""))
}

func TestTrackingProgressCoversEveryStatus(t *testing.T) {
	for status := range washStatuses {
		_, ok := TrackingProgress[status]
		assert.True(t, ok, "missing progress for %s", status)
	}
	assert.Equal(t, 0, TrackingProgress[models.WashWaiting])
	assert.Equal(t, 50, TrackingProgress[models.WashInProgress])
	assert.Equal(t, 75, TrackingProgress[models.WashCompleted])
	assert.Equal(t, 90, TrackingProgress[models.WashReadyPickup])
	assert.Equal(t, 100, TrackingProgress[models.WashDelivered])
}
