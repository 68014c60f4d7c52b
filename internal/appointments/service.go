package appointments

import (
	"context"

	"go.uber.org/zap"

	"github.com/washpoint/backend/internal/domain"
	"github.com/washpoint/backend/internal/models"
	"github.com/washpoint/backend/internal/tenant"
	"github.com/washpoint/backend/pkg/clock"
)

// Store is the persistence surface the service needs. *Repository implements it.
type Store interface {
	Insert(ctx context.Context, a *models.Appointment) error
	Get(ctx context.Context, id int64, shop *int64) (*models.Appointment, error)
	List(ctx context.Context, shop *int64, f ListFilter) ([]models.Appointment, int, error)
	Update(ctx context.Context, a *models.Appointment) error
	UpdateStatus(ctx context.Context, id int64, status models.AppointmentStatus) error
	SoftDelete(ctx context.Context, id, shopID int64) error
	BookedTimes(ctx context.Context, shopID int64, date string) (map[string]struct{}, error)
	CountConflicts(ctx context.Context, shopID int64, date, timeOfDay string, excludeID int64) (int, error)
}

// Refs resolves customer and vehicle ownership for cross-reference checks.
type Refs interface {
	CustomerExists(ctx context.Context, shopID, customerID int64) (bool, error)
	VehicleOwner(ctx context.Context, shopID, vehicleID int64) (int64, error)
}

// Service implements booking, rescheduling and the appointment lifecycle.
type Service struct {
	store Store
	refs  Refs
	hours Hours
	clock clock.Clock
	log   *zap.Logger
}

func NewService(store Store, refs Refs, hours Hours, clk clock.Clock, log *zap.Logger) *Service {
	return &Service{store: store, refs: refs, hours: hours, clock: clk, log: log}
}

// AvailableSlots lists the bookable times of one shop day.
func (s *Service) AvailableSlots(ctx context.Context, scope tenant.Scope, date string) ([]string, error) {
	shopID, err := scope.MustShop()
	if err != nil {
		return nil, err
	}
	booked, err := s.store.BookedTimes(ctx, shopID, date)
	if err != nil {
		return nil, err
	}
	return AvailableSlots(s.hours, date, booked, s.clock.Now()), nil
}

// CreateInput is the payload for booking an appointment.
type CreateInput struct {
	CustomerID    int64   `json:"customer_id" binding:"required"`
	VehicleID     int64   `json:"vehicle_id" binding:"required"`
	ServiceType   string  `json:"service_type" binding:"required,oneof=basic full polish"`
	ScheduledDate string  `json:"scheduled_date" binding:"required"`
	ScheduledTime string  `json:"scheduled_time" binding:"required"`
	Notes         *string `json:"notes"`
}

// Book validates the schedule and the customer/vehicle references, then creates
// a pending appointment. The slot conflict check excludes cancelled
// appointments; the partial unique index closes the race two concurrent
// bookings could otherwise win together.
func (s *Service) Book(ctx context.Context, scope tenant.Scope, actorID int64, in CreateInput) (*models.Appointment, error) {
	shopID, err := scope.MustShop()
	if err != nil {
		return nil, err
	}
	if err := s.hours.ValidateSchedule(in.ScheduledDate, in.ScheduledTime, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, shopID, in.CustomerID, in.VehicleID); err != nil {
		return nil, err
	}
	if err := s.checkSlotFree(ctx, shopID, in.ScheduledDate, in.ScheduledTime, 0); err != nil {
		return nil, err
	}

	a := &models.Appointment{
		ShopID:        shopID,
		CustomerID:    in.CustomerID,
		VehicleID:     in.VehicleID,
		ServiceType:   in.ServiceType,
		ScheduledDate: in.ScheduledDate,
		ScheduledTime: in.ScheduledTime,
		Status:        models.AppointmentPending,
		Notes:         in.Notes,
		CreatedBy:     actorID,
	}
	if err := s.store.Insert(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info("appointment booked",
		zap.Int64("appointment_id", a.ID),
		zap.Int64("shop_id", shopID),
		zap.String("slot", a.ScheduledDate+" "+a.ScheduledTime))
	return a, nil
}

// UpdateInput carries the reschedulable fields. Nil means "leave unchanged".
type UpdateInput struct {
	VehicleID     *int64  `json:"vehicle_id"`
	ServiceType   *string `json:"service_type" binding:"omitempty,oneof=basic full polish"`
	ScheduledDate *string `json:"scheduled_date"`
	ScheduledTime *string `json:"scheduled_time"`
	Notes         *string `json:"notes"`
}

// Update reschedules or edits an appointment. When the slot moves, the full
// schedule validation reruns with the appointment itself excluded from the
// conflict count.
func (s *Service) Update(ctx context.Context, scope tenant.Scope, id int64, in UpdateInput) (*models.Appointment, error) {
	shopID, err := scope.MustShop()
	if err != nil {
		return nil, err
	}
	a, err := s.store.Get(ctx, id, &shopID)
	if err != nil {
		return nil, err
	}
	if a.Status == models.AppointmentCompleted || a.Status == models.AppointmentCancelled {
		return nil, domain.Validation("cannot modify a %s appointment", a.Status)
	}

	if in.VehicleID != nil && *in.VehicleID != a.VehicleID {
		owner, err := s.refs.VehicleOwner(ctx, shopID, *in.VehicleID)
		if err != nil {
			return nil, err
		}
		if owner != a.CustomerID {
			return nil, domain.Validation("vehicle does not belong to this customer")
		}
		a.VehicleID = *in.VehicleID
	}
	if in.ServiceType != nil {
		a.ServiceType = *in.ServiceType
	}
	if in.Notes != nil {
		a.Notes = in.Notes
	}

	date, timeOfDay := a.ScheduledDate, a.ScheduledTime
	if in.ScheduledDate != nil {
		date = *in.ScheduledDate
	}
	if in.ScheduledTime != nil {
		timeOfDay = *in.ScheduledTime
	}
	if date != a.ScheduledDate || timeOfDay != a.ScheduledTime {
		if err := s.hours.ValidateSchedule(date, timeOfDay, s.clock.Now()); err != nil {
			return nil, err
		}
		if err := s.checkSlotFree(ctx, shopID, date, timeOfDay, a.ID); err != nil {
			return nil, err
		}
		a.ScheduledDate, a.ScheduledTime = date, timeOfDay
	}

	if err := s.store.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Get fetches one appointment within the scope.
func (s *Service) Get(ctx context.Context, scope tenant.Scope, id int64) (*models.Appointment, error) {
	return s.store.Get(ctx, id, scope.ShopID)
}

// List returns a page of appointments for the scope.
func (s *Service) List(ctx context.Context, scope tenant.Scope, f ListFilter) ([]models.Appointment, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
	return s.store.List(ctx, scope.ShopID, f)
}

// Transition applies a lifecycle event (confirm, cancel, complete) to the
// appointment. Illegal moves fail without touching the store; a self-loop is
// accepted and persisted as a no-op.
func (s *Service) Transition(ctx context.Context, scope tenant.Scope, id int64, event string) (*models.Appointment, error) {
	a, err := s.store.Get(ctx, id, scope.ShopID)
	if err != nil {
		return nil, err
	}
	next, err := ApplyTransition(ctx, a.Status, event)
	if err != nil {
		return nil, err
	}
	if next == a.Status {
		return a, nil
	}
	if err := s.store.UpdateStatus(ctx, a.ID, next); err != nil {
		return nil, err
	}
	s.log.Info("appointment transitioned",
		zap.Int64("appointment_id", a.ID),
		zap.String("from", string(a.Status)),
		zap.String("to", string(next)))
	a.Status = next
	return a, nil
}

// Remove soft-deletes an appointment.
func (s *Service) Remove(ctx context.Context, scope tenant.Scope, id int64) error {
	shopID, err := scope.MustShop()
	if err != nil {
		return err
	}
	return s.store.SoftDelete(ctx, id, shopID)
}

func (s *Service) checkRefs(ctx context.Context, shopID, customerID, vehicleID int64) error {
	ok, err := s.refs.CustomerExists(ctx, shopID, customerID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("customer")
	}
	owner, err := s.refs.VehicleOwner(ctx, shopID, vehicleID)
	if err != nil {
		return err
	}
	if owner != customerID {
		return domain.Validation("vehicle does not belong to this customer")
	}
	return nil
}

func (s *Service) checkSlotFree(ctx context.Context, shopID int64, date, timeOfDay string, excludeID int64) error {
	count, err := s.store.CountConflicts(ctx, shopID, date, timeOfDay, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.Validation("time slot %s %s is not available", date, timeOfDay)
	}
	return nil
}
