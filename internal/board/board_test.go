package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washpoint/backend/internal/models"
)

var now = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func order(id int64, status models.WashStatus) models.Order {
	return models.Order{ID: id, WashStatus: status}
}

func started(id int64, minutesAgo int) models.Order {
	o := order(id, models.WashInProgress)
	t := now.Add(-time.Duration(minutesAgo) * time.Minute)
	o.StartedAt = &t
	return o
}

func TestBuildBuckets(t *testing.T) {
	orders := []models.Order{
		order(1, models.WashWaiting),
		started(2, 5),
		order(3, models.WashCompleted),
		order(4, models.WashReadyPickup),
	}

	b := Build(orders, now)
	assert.Len(t, b.Waiting, 1)
	assert.Len(t, b.InProgress, 1)
	assert.Len(t, b.Ready, 2, "completed and ready_pickup share the ready bucket")
	assert.Equal(t, Counts{Waiting: 1, InProgress: 1, Ready: 2}, b.Count())
}

func TestBuildWaitingEstimatesGrowWithPosition(t *testing.T) {
	orders := []models.Order{
		order(1, models.WashWaiting),
		order(2, models.WashWaiting),
		order(3, models.WashWaiting),
	}

	b := Build(orders, now)
	require.Len(t, b.Waiting, 3)
	assert.Equal(t, 15, b.Waiting[0].EstimatedMinutes)
	assert.Equal(t, 25, b.Waiting[1].EstimatedMinutes)
	assert.Equal(t, 35, b.Waiting[2].EstimatedMinutes)
}

func TestBuildQueuePositionSkipsOtherBuckets(t *testing.T) {
	// a running wash between two waiting cars does not push the queue back
	orders := []models.Order{
		order(1, models.WashWaiting),
		started(2, 5),
		order(3, models.WashWaiting),
	}

	b := Build(orders, now)
	require.Len(t, b.Waiting, 2)
	assert.Equal(t, 15, b.Waiting[0].EstimatedMinutes)
	assert.Equal(t, 25, b.Waiting[1].EstimatedMinutes)
}

func TestBuildInProgressEstimates(t *testing.T) {
	tests := []struct {
		name       string
		minutesAgo int
		want       int
	}{
		{name: "just started", minutesAgo: 0, want: 30},
		{name: "ten minutes in", minutesAgo: 10, want: 20},
		{name: "at the nominal duration", minutesAgo: 30, want: 0},
		{name: "overrun floors at zero", minutesAgo: 45, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Build([]models.Order{started(1, tt.minutesAgo)}, now)
			require.Len(t, b.InProgress, 1)
			assert.Equal(t, tt.want, b.InProgress[0].EstimatedMinutes)
		})
	}
}

func TestBuildInProgressWithoutStartStamp(t *testing.T) {
	// no start stamp means no countdown to run
	b := Build([]models.Order{order(1, models.WashInProgress)}, now)
	require.Len(t, b.InProgress, 1)
	assert.Equal(t, 0, b.InProgress[0].EstimatedMinutes)
}

func TestBuildEmpty(t *testing.T) {
	b := Build(nil, now)
	assert.NotNil(t, b.Waiting)
	assert.NotNil(t, b.InProgress)
	assert.NotNil(t, b.Ready)
	assert.Equal(t, Counts{}, b.Count())
}

func TestBuildIgnoresDelivered(t *testing.T) {
	// ListActive excludes delivered orders already; a stray one is dropped
	b := Build([]models.Order{order(1, models.WashDelivered)}, now)
	assert.Equal(t, Counts{}, b.Count())
}
