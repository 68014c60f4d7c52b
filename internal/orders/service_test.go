package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/washpoint/backend/internal/domain"
	"github.com/washpoint/backend/internal/events"
	"github.com/washpoint/backend/internal/models"
	"github.com/washpoint/backend/internal/tenant"
	"github.com/washpoint/backend/pkg/clock"
)

type fakeStore struct {
	nextID int64
	items  map[int64]*models.Order
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, items: make(map[int64]*models.Order)}
}

func (f *fakeStore) Insert(_ context.Context, o *models.Order) error {
	o.ID = f.nextID
	f.nextID++
	cp := *o
	f.items[o.ID] = &cp
	return nil
}

func (f *fakeStore) Get(_ context.Context, id int64, shop *int64) (*models.Order, error) {
	o, ok := f.items[id]
	if !ok || (shop != nil && o.ShopID != *shop) {
		return nil, domain.NotFound("order")
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) GetByToken(_ context.Context, token string) (*models.Order, error) {
	for _, o := range f.items {
		if o.TrackingToken == token {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.NotFound("order")
}

func (f *fakeStore) List(_ context.Context, shop *int64, filter ListFilter) ([]models.Order, int, error) {
	var out []models.Order
	for _, o := range f.items {
		if shop != nil && o.ShopID != *shop {
			continue
		}
		if filter.StaffID != 0 && !contains(o.StaffIDs, filter.StaffID) {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (f *fakeStore) ListActive(_ context.Context, shopID int64, day string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.items {
		if o.ShopID == shopID && o.WashStatus != models.WashDelivered &&
			o.DateTime.Format("2006-01-02") == day {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateLifecycle(_ context.Context, o *models.Order) error {
	stored, ok := f.items[o.ID]
	if !ok {
		return domain.NotFound("order")
	}
	stored.WashStatus = o.WashStatus
	stored.PaymentStatus = o.PaymentStatus
	stored.StartedAt = o.StartedAt
	stored.CompletedAt = o.CompletedAt
	return nil
}

func (f *fakeStore) UpdatePayment(_ context.Context, id, shopID int64, method models.PaymentMethod, status models.PaymentStatus) error {
	o, ok := f.items[id]
	if !ok || o.ShopID != shopID {
		return domain.NotFound("order")
	}
	o.PaymentMethod = method
	o.PaymentStatus = status
	return nil
}

func (f *fakeStore) AppendPhotos(_ context.Context, id, shopID int64, after bool, urls []string) error {
	o, ok := f.items[id]
	if !ok || o.ShopID != shopID {
		return domain.NotFound("order")
	}
	if after {
		o.PhotosAfter = append(o.PhotosAfter, urls...)
	} else {
		o.PhotosBefore = append(o.PhotosBefore, urls...)
	}
	return nil
}

func (f *fakeStore) SoftDelete(_ context.Context, id, shopID int64) error {
	o, ok := f.items[id]
	if !ok || o.ShopID != shopID {
		return domain.NotFound("order")
	}
	delete(f.items, id)
	return nil
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

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

type fakeStaff struct {
	active map[int64]bool
}

func (f fakeStaff) CountActiveStaff(_ context.Context, _ int64, ids []int64) (int, error) {
	n := 0
	for _, id := range ids {
		if f.active[id] {
			n++
		}
	}
	return n, nil
}

// recordingEmitter captures every emitted change.
type recordingEmitter struct {
	changes []events.StatusChange
}

func (r *recordingEmitter) WashStatusChanged(_ context.Context, c events.StatusChange) {
	r.changes = append(r.changes, c)
}

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestService(store Store) (*Service, *recordingEmitter) {
	refs := fakeRefs{
		customers: map[int64]bool{10: true},
		vehicles:  map[int64]int64{100: 10, 101: 77},
	}
	staff := fakeStaff{active: map[int64]bool{20: true, 21: true}}
	emitter := &recordingEmitter{}
	svc := NewService(store, refs, staff, clock.Fixed{T: testNow}, emitter, zap.NewNop())
	return svc, emitter
}

func shopScope(id int64) tenant.Scope {
	return tenant.Scope{ShopID: &id, Role: models.RoleOwner}
}

func validCreate() CreateInput {
	return CreateInput{
		CustomerID:    10,
		VehicleID:     100,
		ServiceType:   models.ServiceFull,
		Amount:        80,
		PaymentMethod: models.PaymentPix,
		StaffIDs:      []int64{20},
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("mints a tracking token and starts waiting", func(t *testing.T) {
		svc, _ := newTestService(newFakeStore())

		o, err := svc.Create(ctx, shopScope(1), validCreate())
		require.NoError(t, err)
		assert.Equal(t, models.WashWaiting, o.WashStatus)
		assert.Equal(t, models.PaymentPending, o.PaymentStatus)
		assert.NotEmpty(t, o.TrackingToken)
		assert.Equal(t, testNow, o.DateTime)
	})

	t.Run("tokens are unique per order", func(t *testing.T) {
		svc, _ := newTestService(newFakeStore())

		a, err := svc.Create(ctx, shopScope(1), validCreate())
		require.NoError(t, err)
		b, err := svc.Create(ctx, shopScope(1), validCreate())
		require.NoError(t, err)
		assert.NotEqual(t, a.TrackingToken, b.TrackingToken)
	})

	t.Run("rejects unknown customer", func(t *testing.T) {
		svc, _ := newTestService(newFakeStore())
		in := validCreate()
		in.CustomerID = 99

		_, err := svc.Create(ctx, shopScope(1), in)
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("rejects vehicle of another customer", func(t *testing.T) {
		svc, _ := newTestService(newFakeStore())
		in := validCreate()
		in.VehicleID = 101

		_, err := svc.Create(ctx, shopScope(1), in)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("rejects inactive or foreign staff", func(t *testing.T) {
		svc, _ := newTestService(newFakeStore())
		in := validCreate()
		in.StaffIDs = []int64{20, 99}

		_, err := svc.Create(ctx, shopScope(1), in)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "staff")
	})

	t.Run("duplicate staff ids collapse and pass validation", func(t *testing.T) {
		svc, _ := newTestService(newFakeStore())
		in := validCreate()
		in.StaffIDs = []int64{20, 20, 21}

		o, err := svc.Create(ctx, shopScope(1), in)
		require.NoError(t, err)
		assert.Equal(t, []int64{20, 21}, o.StaffIDs)
	})

	t.Run("no staff assignment is allowed", func(t *testing.T) {
		svc, _ := newTestService(newFakeStore())
		in := validCreate()
		in.StaffIDs = nil

		_, err := svc.Create(ctx, shopScope(1), in)
		assert.NoError(t, err)
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	create := func(t *testing.T) (*Service, *recordingEmitter, *models.Order) {
		svc, emitter := newTestService(newFakeStore())
		o, err := svc.Create(ctx, shopScope(1), validCreate())
		require.NoError(t, err)
		return svc, emitter, o
	}

	t.Run("emits once per real change", func(t *testing.T) {
		svc, emitter, o := create(t)

		got, err := svc.SetStatus(ctx, shopScope(1), o.ID, models.WashInProgress)
		require.NoError(t, err)
		assert.Equal(t, models.WashInProgress, got.WashStatus)
		require.Len(t, emitter.changes, 1)
		assert.Equal(t, models.WashWaiting, emitter.changes[0].From)
		assert.Equal(t, models.WashInProgress, emitter.changes[0].To)
	})

	t.Run("same status again emits nothing", func(t *testing.T) {
		svc, emitter, o := create(t)
		_, err := svc.SetStatus(ctx, shopScope(1), o.ID, models.WashInProgress)
		require.NoError(t, err)

		_, err = svc.SetStatus(ctx, shopScope(1), o.ID, models.WashInProgress)
		require.NoError(t, err)
		assert.Len(t, emitter.changes, 1)
	})

	t.Run("delivery settles payment and is emitted", func(t *testing.T) {
		svc, emitter, o := create(t)

		got, err := svc.SetStatus(ctx, shopScope(1), o.ID, models.WashDelivered)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPaid, got.PaymentStatus)
		require.Len(t, emitter.changes, 1)
		assert.Equal(t, models.WashDelivered, emitter.changes[0].To)
	})

	t.Run("start timestamp survives a restart", func(t *testing.T) {
		svc, _, o := create(t)
		first, err := svc.SetStatus(ctx, shopScope(1), o.ID, models.WashInProgress)
		require.NoError(t, err)
		require.NotNil(t, first.StartedAt)

		_, err = svc.SetStatus(ctx, shopScope(1), o.ID, models.WashWaiting)
		require.NoError(t, err)
		again, err := svc.SetStatus(ctx, shopScope(1), o.ID, models.WashInProgress)
		require.NoError(t, err)
		assert.Equal(t, *first.StartedAt, *again.StartedAt)
	})

	t.Run("rejects unknown status without touching the order", func(t *testing.T) {
		svc, emitter, o := create(t)

		_, err := svc.SetStatus(ctx, shopScope(1), o.ID, models.WashStatus("vacuuming"))
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Empty(t, emitter.changes)
	})

	t.Run("cross-tenant id reads as missing", func(t *testing.T) {
		svc, _, o := create(t)

		_, err := svc.SetStatus(ctx, shopScope(2), o.ID, models.WashInProgress)
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestUpdatePayment(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(newFakeStore())
	o, err := svc.Create(ctx, shopScope(1), validCreate())
	require.NoError(t, err)

	got, err := svc.UpdatePayment(ctx, shopScope(1), o.ID, PaymentInput{
		PaymentMethod: models.PaymentCard,
		PaymentStatus: models.PaymentPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCard, got.PaymentMethod)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)
}

func TestMyWashes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(newFakeStore())

	mine := validCreate()
	mine.StaffIDs = []int64{20}
	_, err := svc.Create(ctx, shopScope(1), mine)
	require.NoError(t, err)

	other := validCreate()
	other.StaffIDs = []int64{21}
	_, err = svc.Create(ctx, shopScope(1), other)
	require.NoError(t, err)

	items, total, err := svc.MyWashes(ctx, shopScope(1), 20, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, []int64{20}, items[0].StaffIDs)
}
