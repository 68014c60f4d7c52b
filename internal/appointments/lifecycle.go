package appointments

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/washpoint/backend/internal/domain"
	"github.com/washpoint/backend/internal/models"
)

// Lifecycle events.
const (
	EventConfirm  = "confirm"
	EventCancel   = "cancel"
	EventComplete = "complete"
)

// events encodes the legal appointment moves. Completed and cancelled are
// terminal: nothing leads back to pending or confirmed. Re-applying an event
// that leaves the status unchanged is a permitted no-op.
var events = []loopfsm.EventDesc{
	{
		Name: EventConfirm,
		Src:  []string{string(models.AppointmentPending), string(models.AppointmentConfirmed)},
		Dst:  string(models.AppointmentConfirmed),
	},
	{
		Name: EventCancel,
		Src:  []string{string(models.AppointmentPending), string(models.AppointmentConfirmed), string(models.AppointmentCancelled)},
		Dst:  string(models.AppointmentCancelled),
	},
	{
		Name: EventComplete,
		Src:  []string{string(models.AppointmentPending), string(models.AppointmentConfirmed), string(models.AppointmentCompleted)},
		Dst:  string(models.AppointmentCompleted),
	},
}

// ApplyTransition validates event against the current status and returns the
// destination status. A looplab/fsm machine is built per call because the fsm
// tracks its current state internally.
func ApplyTransition(ctx context.Context, current models.AppointmentStatus, event string) (models.AppointmentStatus, error) {
	machine := loopfsm.NewFSM(string(current), events, nil)

	if err := machine.Event(ctx, event); err != nil {
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &noTransition) {
			// self-loop: already in the destination state
			return current, nil
		}
		var invalidEvent loopfsm.InvalidEventError
		if errors.As(err, &invalidEvent) {
			return "", &domain.TransitionError{Event: event, Current: string(current)}
		}
		return "", err
	}
	return models.AppointmentStatus(machine.Current()), nil
}
