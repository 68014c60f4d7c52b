// Package board aggregates a shop's live washes into the operations board
// shown on the workshop screen.
package board

import (
	"time"

	"github.com/washpoint/backend/internal/models"
)

// Wait estimation constants, in minutes. A waiting car is quoted a base setup
// time plus one wash ahead of it per queue position; a running wash counts
// down from the nominal duration.
const (
	baseWaitMinutes     = 15
	perCarMinutes       = 10
	washDurationMinutes = 30
)

// Entry is one order on the board with its wait estimate.
type Entry struct {
	Order            models.Order `json:"order"`
	EstimatedMinutes int          `json:"estimated_minutes"`
}

// Board is the bucketed view of a shop's undelivered orders. Completed and
// ready-for-pickup washes share the ready bucket; delivered orders are gone.
type Board struct {
	Waiting    []Entry `json:"waiting"`
	InProgress []Entry `json:"in_progress"`
	Ready      []Entry `json:"ready"`
}

// Counts summarizes the board for dashboards.
type Counts struct {
	Waiting    int `json:"waiting"`
	InProgress int `json:"in_progress"`
	Ready      int `json:"ready"`
}

// Build buckets the active orders and computes the estimates. The input must be
// in intake order: the index among waiting orders is the queue position. Build
// never returns nil buckets.
func Build(orders []models.Order, now time.Time) Board {
	b := Board{
		Waiting:    []Entry{},
		InProgress: []Entry{},
		Ready:      []Entry{},
	}

	for _, o := range orders {
		switch o.WashStatus {
		case models.WashWaiting:
			position := len(b.Waiting)
			b.Waiting = append(b.Waiting, Entry{
				Order:            o,
				EstimatedMinutes: baseWaitMinutes + perCarMinutes*position,
			})
		case models.WashInProgress:
			b.InProgress = append(b.InProgress, Entry{
				Order:            o,
				EstimatedMinutes: remaining(o, now),
			})
		case models.WashCompleted, models.WashReadyPickup:
			b.Ready = append(b.Ready, Entry{Order: o})
		}
	}
	return b
}

// remaining is the time left on a running wash, floored at zero once it
// overruns the nominal duration. Without a start stamp there is nothing to
// count down from.
func remaining(o models.Order, now time.Time) int {
	if o.StartedAt == nil {
		return 0
	}
	elapsed := int(now.Sub(*o.StartedAt).Minutes())
	if elapsed >= washDurationMinutes {
		return 0
	}
	return washDurationMinutes - elapsed
}

// Count tallies the board buckets.
func (b Board) Count() Counts {
	return Counts{
		Waiting:    len(b.Waiting),
		InProgress: len(b.InProgress),
		Ready:      len(b.Ready),
	}
}
