// Package orders tracks a wash from intake to pickup: operational status,
// timestamps, payment and the side effects each status move triggers.
package orders

import (
	"time"

	"github.com/washpoint/backend/internal/domain"
	"github.com/washpoint/backend/internal/models"
)

// washStatuses is every stage the board knows about. The progression is
// advisory: operators may jump stages or move a wash back, so any known status
// is a legal target. The effects below key off the arriving status only.
var washStatuses = map[models.WashStatus]struct{}{
	models.WashWaiting:     {},
	models.WashInProgress:  {},
	models.WashCompleted:   {},
	models.WashReadyPickup: {},
	models.WashDelivered:   {},
}

// ValidateStatus rejects unknown wash statuses.
func ValidateStatus(s models.WashStatus) error {
	if _, ok := washStatuses[s]; !ok {
		return domain.Validation("unknown wash status %q", s)
	}
	return nil
}

// ApplyStatus moves the order to the target status and applies the arrival
// effects in place:
//
//   - in_progress stamps StartedAt, first arrival only
//   - completed and ready_pickup stamp CompletedAt, first arrival only
//   - delivered settles the payment unconditionally
//
// The timestamps survive moves back and forth: a wash sent back to waiting and
// restarted keeps its original StartedAt. The returned flag reports whether the
// status actually changed; callers emit events only on a real change.
func ApplyStatus(o *models.Order, to models.WashStatus, now time.Time) bool {
	changed := o.WashStatus != to
	o.WashStatus = to

	switch to {
	case models.WashInProgress:
		if o.StartedAt == nil {
			t := now
			o.StartedAt = &t
		}
	case models.WashCompleted, models.WashReadyPickup:
		if o.CompletedAt == nil {
			t := now
			o.CompletedAt = &t
		}
	case models.WashDelivered:
		o.PaymentStatus = models.PaymentPaid
	}
	return changed
}

// TrackingProgress maps each status to the percentage shown on the public
// tracking page.
var TrackingProgress = map[models.WashStatus]int{
	models.WashWaiting:     0,
	models.WashInProgress:  50,
	models.WashCompleted:   75,
	models.WashReadyPickup: 90,
	models.WashDelivered:   100,
}
