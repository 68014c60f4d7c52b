package appointments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/washpoint/backend/internal/domain"
	"github.com/washpoint/backend/internal/models"
	"github.com/washpoint/backend/internal/tenant"
	"github.com/washpoint/backend/pkg/clock"
)

// fakeStore keeps appointments in memory and mimics the repository's conflict
// semantics, including the unique-index backstop on insert.
type fakeStore struct {
	nextID int64
	items  map[int64]*models.Appointment
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, items: make(map[int64]*models.Appointment)}
}

func (f *fakeStore) Insert(_ context.Context, a *models.Appointment) error {
	for _, other := range f.items {
		if other.ShopID == a.ShopID && other.ScheduledDate == a.ScheduledDate &&
			other.ScheduledTime == a.ScheduledTime && other.Status != models.AppointmentCancelled {
			return domain.Validation("time slot %s %s is not available", a.ScheduledDate, a.ScheduledTime)
		}
	}
	a.ID = f.nextID
	f.nextID++
	cp := *a
	f.items[a.ID] = &cp
	return nil
}

func (f *fakeStore) Get(_ context.Context, id int64, shop *int64) (*models.Appointment, error) {
	a, ok := f.items[id]
	if !ok || (shop != nil && a.ShopID != *shop) {
		return nil, domain.NotFound("appointment")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) List(_ context.Context, shop *int64, _ ListFilter) ([]models.Appointment, int, error) {
	var out []models.Appointment
	for _, a := range f.items {
		if shop == nil || a.ShopID == *shop {
			out = append(out, *a)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) Update(_ context.Context, a *models.Appointment) error {
	if _, ok := f.items[a.ID]; !ok {
		return domain.NotFound("appointment")
	}
	cp := *a
	f.items[a.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id int64, status models.AppointmentStatus) error {
	a, ok := f.items[id]
	if !ok {
		return domain.NotFound("appointment")
	}
	a.Status = status
	return nil
}

func (f *fakeStore) SoftDelete(_ context.Context, id, shopID int64) error {
	a, ok := f.items[id]
	if !ok || a.ShopID != shopID {
		return domain.NotFound("appointment")
	}
	delete(f.items, id)
	return nil
}

func (f *fakeStore) BookedTimes(_ context.Context, shopID int64, date string) (map[string]struct{}, error) {
	booked := make(map[string]struct{})
	for _, a := range f.items {
		if a.ShopID == shopID && a.ScheduledDate == date &&
			(a.Status == models.AppointmentPending || a.Status == models.AppointmentConfirmed) {
			booked[a.ScheduledTime] = struct{}{}
		}
	}
	return booked, nil
}

func (f *fakeStore) CountConflicts(_ context.Context, shopID int64, date, timeOfDay string, excludeID int64) (int, error) {
	count := 0
	for _, a := range f.items {
		if a.ID != excludeID && a.ShopID == shopID && a.ScheduledDate == date &&
			a.ScheduledTime == timeOfDay && a.Status != models.AppointmentCancelled {
			count++
		}
	}
	return count, nil
}

// fakeRefs maps vehicle id to owning customer id; every listed customer exists.
type fakeRefs struct {
	customers map[int64]bool
	vehicles  map[int64]int64
}

func (f fakeRefs) CustomerExists(_ context.Context, _ int64, customerID int64) (bool, error) {
	return f.customers[customerID], nil
}

func (f fakeRefs) VehicleOwner(_ context.Context, _ int64, vehicleID int64) (int64, error) {
	owner, ok := f.vehicles[vehicleID]
	if !ok {
		return 0, domain.NotFound("vehicle")
	}
	return owner, nil
}

func newTestService(t *testing.T, store Store, now string) *Service {
	t.Helper()
	refs := fakeRefs{
		customers: map[int64]bool{10: true, 11: true},
		vehicles:  map[int64]int64{100: 10, 101: 11, 102: 10},
	}
	return NewService(store, refs, testHours, clock.Fixed{T: at(t, now)}, zap.NewNop())
}

func shopScope(id int64) tenant.Scope {
	return tenant.Scope{ShopID: &id, Role: models.RoleOwner}
}

func validCreate() CreateInput {
	return CreateInput{
		CustomerID:    10,
		VehicleID:     100,
		ServiceType:   "full",
		ScheduledDate: "2026-03-11",
		ScheduledTime: "10:00",
	}
}

func TestBook(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending appointment", func(t *testing.T) {
		svc := newTestService(t, newFakeStore(), "2026-03-10 09:00")

		a, err := svc.Book(ctx, shopScope(1), 5, validCreate())
		require.NoError(t, err)
		assert.Equal(t, models.AppointmentPending, a.Status)
		assert.Equal(t, int64(1), a.ShopID)
		assert.Equal(t, int64(5), a.CreatedBy)
	})

	t.Run("rejects past slot", func(t *testing.T) {
		svc := newTestService(t, newFakeStore(), "2026-03-12 09:00")

		_, err := svc.Book(ctx, shopScope(1), 5, validCreate())
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Contains(t, err.Error(), "past")
	})

	t.Run("rejects slot outside business hours", func(t *testing.T) {
		svc := newTestService(t, newFakeStore(), "2026-03-10 09:00")
		in := validCreate()
		in.ScheduledTime = "19:00"

		_, err := svc.Book(ctx, shopScope(1), 5, in)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("rejects taken slot", func(t *testing.T) {
		svc := newTestService(t, newFakeStore(), "2026-03-10 09:00")
		_, err := svc.Book(ctx, shopScope(1), 5, validCreate())
		require.NoError(t, err)

		in := validCreate()
		in.CustomerID, in.VehicleID = 11, 101
		_, err = svc.Book(ctx, shopScope(1), 5, in)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not available")
	})

	t.Run("cancelled appointment frees its slot", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(t, store, "2026-03-10 09:00")
		a, err := svc.Book(ctx, shopScope(1), 5, validCreate())
		require.NoError(t, err)
		_, err = svc.Transition(ctx, shopScope(1), a.ID, EventCancel)
		require.NoError(t, err)

		in := validCreate()
		in.CustomerID, in.VehicleID = 11, 101
		_, err = svc.Book(ctx, shopScope(1), 5, in)
		assert.NoError(t, err)
	})

	t.Run("same slot at another shop does not conflict", func(t *testing.T) {
		svc := newTestService(t, newFakeStore(), "2026-03-10 09:00")
		_, err := svc.Book(ctx, shopScope(1), 5, validCreate())
		require.NoError(t, err)

		_, err = svc.Book(ctx, shopScope(2), 5, validCreate())
		assert.NoError(t, err)
	})

	t.Run("rejects unknown customer", func(t *testing.T) {
		svc := newTestService(t, newFakeStore(), "2026-03-10 09:00")
		in := validCreate()
		in.CustomerID = 99

		_, err := svc.Book(ctx, shopScope(1), 5, in)
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("rejects vehicle of another customer", func(t *testing.T) {
		svc := newTestService(t, newFakeStore(), "2026-03-10 09:00")
		in := validCreate()
		in.VehicleID = 101

		_, err := svc.Book(ctx, shopScope(1), 5, in)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not belong")
	})

	t.Run("global scope must name a shop", func(t *testing.T) {
		svc := newTestService(t, newFakeStore(), "2026-03-10 09:00")
		global := tenant.Scope{Role: models.RoleSuperOperator, IsGlobal: true}

		_, err := svc.Book(ctx, global, 5, validCreate())
		require.Error(t, err)
		assert.True(t, domain.IsAuthorization(err))
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	book := func(t *testing.T) (*Service, *models.Appointment) {
		svc := newTestService(t, newFakeStore(), "2026-03-10 09:00")
		a, err := svc.Book(ctx, shopScope(1), 5, validCreate())
		require.NoError(t, err)
		return svc, a
	}

	t.Run("reschedule to a free slot", func(t *testing.T) {
		svc, a := book(t)
		newTime := "11:00"

		got, err := svc.Update(ctx, shopScope(1), a.ID, UpdateInput{ScheduledTime: &newTime})
		require.NoError(t, err)
		assert.Equal(t, "11:00", got.ScheduledTime)
	})

	t.Run("reschedule does not conflict with itself", func(t *testing.T) {
		svc, a := book(t)
		sameTime := a.ScheduledTime
		notes := "keep the slot"

		got, err := svc.Update(ctx, shopScope(1), a.ID, UpdateInput{ScheduledTime: &sameTime, Notes: &notes})
		require.NoError(t, err)
		assert.Equal(t, a.ScheduledTime, got.ScheduledTime)
		require.NotNil(t, got.Notes)
		assert.Equal(t, "keep the slot", *got.Notes)
	})

	t.Run("reschedule onto a taken slot fails", func(t *testing.T) {
		svc, a := book(t)
		in := validCreate()
		in.CustomerID, in.VehicleID, in.ScheduledTime = 11, 101, "11:00"
		_, err := svc.Book(ctx, shopScope(1), 5, in)
		require.NoError(t, err)

		taken := "11:00"
		_, err = svc.Update(ctx, shopScope(1), a.ID, UpdateInput{ScheduledTime: &taken})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not available")
	})

	t.Run("cannot edit a cancelled appointment", func(t *testing.T) {
		svc, a := book(t)
		_, err := svc.Transition(ctx, shopScope(1), a.ID, EventCancel)
		require.NoError(t, err)

		newTime := "11:00"
		_, err = svc.Update(ctx, shopScope(1), a.ID, UpdateInput{ScheduledTime: &newTime})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("cross-tenant id reads as missing", func(t *testing.T) {
		svc, a := book(t)
		newTime := "11:00"

		_, err := svc.Update(ctx, shopScope(2), a.ID, UpdateInput{ScheduledTime: &newTime})
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestServiceTransition(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newFakeStore(), "2026-03-10 09:00")
	a, err := svc.Book(ctx, shopScope(1), 5, validCreate())
	require.NoError(t, err)

	got, err := svc.Transition(ctx, shopScope(1), a.ID, EventConfirm)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentConfirmed, got.Status)

	got, err = svc.Transition(ctx, shopScope(1), a.ID, EventComplete)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCompleted, got.Status)

	_, err = svc.Transition(ctx, shopScope(1), a.ID, EventCancel)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestAvailableSlotsService(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newFakeStore(), "2026-03-10 09:00")
	_, err := svc.Book(ctx, shopScope(1), 5, validCreate())
	require.NoError(t, err)

	slots, err := svc.AvailableSlots(ctx, shopScope(1), "2026-03-11")
	require.NoError(t, err)
	assert.Len(t, slots, 19)
	assert.NotContains(t, slots, "10:00")
}

func TestAvailableSlotsDeterministic(t *testing.T) {
	svc := newTestService(t, newFakeStore(), "2026-03-10 09:00")

	first, err := svc.AvailableSlots(context.Background(), shopScope(1), "2026-03-11")
	require.NoError(t, err)
	second, err := svc.AvailableSlots(context.Background(), shopScope(1), "2026-03-11")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1], first[i], "slots are in chronological order")
	}
}
