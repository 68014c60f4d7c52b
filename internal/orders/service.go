package orders

import (
	"context"

	"go.uber.org/zap"

	"github.com/washpoint/backend/internal/domain"
	"github.com/washpoint/backend/internal/events"
	"github.com/washpoint/backend/internal/models"
	"github.com/washpoint/backend/internal/tenant"
	"github.com/washpoint/backend/pkg/clock"
)

// Store is the persistence surface the service needs. *Repository implements it.
type Store interface {
	Insert(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id int64, shop *int64) (*models.Order, error)
	GetByToken(ctx context.Context, token string) (*models.Order, error)
	List(ctx context.Context, shop *int64, f ListFilter) ([]models.Order, int, error)
	ListActive(ctx context.Context, shopID int64, day string) ([]models.Order, error)
	UpdateLifecycle(ctx context.Context, o *models.Order) error
	UpdatePayment(ctx context.Context, id, shopID int64, method models.PaymentMethod, status models.PaymentStatus) error
	AppendPhotos(ctx context.Context, id, shopID int64, after bool, urls []string) error
	SoftDelete(ctx context.Context, id, shopID int64) error
}

// Refs resolves customer and vehicle ownership for cross-reference checks.
type Refs interface {
	CustomerExists(ctx context.Context, shopID, customerID int64) (bool, error)
	VehicleOwner(ctx context.Context, shopID, vehicleID int64) (int64, error)
}

// StaffCounter validates staff assignments against the shop roster.
type StaffCounter interface {
	CountActiveStaff(ctx context.Context, shopID int64, ids []int64) (int, error)
}

// Service implements order intake, the wash lifecycle and payment entry.
type Service struct {
	store   Store
	refs    Refs
	staff   StaffCounter
	clock   clock.Clock
	emitter events.Emitter
	log     *zap.Logger
}

func NewService(store Store, refs Refs, staff StaffCounter, clk clock.Clock, emitter events.Emitter, log *zap.Logger) *Service {
	return &Service{store: store, refs: refs, staff: staff, clock: clk, emitter: emitter, log: log}
}

// CreateInput is the intake payload for a new wash order.
type CreateInput struct {
	CustomerID    int64                `json:"customer_id" binding:"required"`
	VehicleID     int64                `json:"vehicle_id" binding:"required"`
	ServiceType   models.ServiceType   `json:"service_type" binding:"required,oneof=basic full polish"`
	Amount        float64              `json:"amount" binding:"required,gt=0"`
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required,oneof=cash pix card"`
	StaffIDs      []int64              `json:"staff_ids"`
	Notes         *string              `json:"notes"`
}

// Create validates the references and the staff roster, mints a tracking token
// and registers the order in waiting state. Staff ids are validated by count:
// every distinct id must resolve to an active staff member of the shop.
func (s *Service) Create(ctx context.Context, scope tenant.Scope, in CreateInput) (*models.Order, error) {
	shopID, err := scope.MustShop()
	if err != nil {
		return nil, err
	}

	ok, err := s.refs.CustomerExists(ctx, shopID, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFound("customer")
	}
	owner, err := s.refs.VehicleOwner(ctx, shopID, in.VehicleID)
	if err != nil {
		return nil, err
	}
	if owner != in.CustomerID {
		return nil, domain.Validation("vehicle does not belong to this customer")
	}

	staffIDs := distinct(in.StaffIDs)
	if len(staffIDs) > 0 {
		count, err := s.staff.CountActiveStaff(ctx, shopID, staffIDs)
		if err != nil {
			return nil, err
		}
		if count != len(staffIDs) {
			return nil, domain.Validation("one or more assigned staff members are invalid")
		}
	}

	o := &models.Order{
		ShopID:        shopID,
		CustomerID:    in.CustomerID,
		VehicleID:     in.VehicleID,
		ServiceType:   in.ServiceType,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: models.PaymentPending,
		WashStatus:    models.WashWaiting,
		TrackingToken: NewTrackingToken(),
		DateTime:      s.clock.Now(),
		Notes:         in.Notes,
		StaffIDs:      staffIDs,
		PhotosBefore:  []string{},
		PhotosAfter:   []string{},
	}
	if err := s.store.Insert(ctx, o); err != nil {
		return nil, err
	}
	s.log.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.Int64("shop_id", shopID),
		zap.String("service_type", string(o.ServiceType)))
	return o, nil
}

// Get fetches one order within the scope.
func (s *Service) Get(ctx context.Context, scope tenant.Scope, id int64) (*models.Order, error) {
	return s.store.Get(ctx, id, scope.ShopID)
}

// List returns a page of orders for the scope.
func (s *Service) List(ctx context.Context, scope tenant.Scope, f ListFilter) ([]models.Order, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
	return s.store.List(ctx, scope.ShopID, f)
}

// SetStatus moves the order to the target wash status and applies the arrival
// effects. Setting the current status again is accepted and changes nothing:
// no timestamps move and no event fires.
func (s *Service) SetStatus(ctx context.Context, scope tenant.Scope, id int64, to models.WashStatus) (*models.Order, error) {
	if err := ValidateStatus(to); err != nil {
		return nil, err
	}
	o, err := s.store.Get(ctx, id, scope.ShopID)
	if err != nil {
		return nil, err
	}

	from := o.WashStatus
	now := s.clock.Now()
	changed := ApplyStatus(o, to, now)
	if !changed {
		return o, nil
	}

	if err := s.store.UpdateLifecycle(ctx, o); err != nil {
		return nil, err
	}
	s.log.Info("wash status changed",
		zap.Int64("order_id", o.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	s.emitter.WashStatusChanged(ctx, events.StatusChange{Order: o, From: from, To: to, At: now})
	return o, nil
}

// GetByToken resolves an order by its public tracking token. No tenant scope:
// the token itself is the capability.
func (s *Service) GetByToken(ctx context.Context, token string) (*models.Order, error) {
	return s.store.GetByToken(ctx, token)
}

// SetStatusByToken applies a status move addressed by tracking token. Used by
// the kiosk flow where the terminal holds the token, not a session.
func (s *Service) SetStatusByToken(ctx context.Context, token string, to models.WashStatus) (*models.Order, error) {
	if err := ValidateStatus(to); err != nil {
		return nil, err
	}
	o, err := s.store.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.SetStatus(ctx, tenant.Scope{ShopID: &o.ShopID}, o.ID, to)
}

// PaymentInput is a manual payment entry.
type PaymentInput struct {
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required,oneof=cash pix card"`
	PaymentStatus models.PaymentStatus `json:"payment_status" binding:"required,oneof=pending paid"`
}

// UpdatePayment records how the order was settled. Independent of the wash
// lifecycle except that delivery itself forces paid.
func (s *Service) UpdatePayment(ctx context.Context, scope tenant.Scope, id int64, in PaymentInput) (*models.Order, error) {
	shopID, err := scope.MustShop()
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdatePayment(ctx, id, shopID, in.PaymentMethod, in.PaymentStatus); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id, &shopID)
}

// AttachPhotos appends uploaded photo URLs to the before or after set.
func (s *Service) AttachPhotos(ctx context.Context, scope tenant.Scope, id int64, after bool, urls []string) (*models.Order, error) {
	shopID, err := scope.MustShop()
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, domain.Validation("no photos provided")
	}
	if err := s.store.AppendPhotos(ctx, id, shopID, after, urls); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id, &shopID)
}

// MyWashes lists the orders assigned to the calling staff member.
func (s *Service) MyWashes(ctx context.Context, scope tenant.Scope, userID int64, f ListFilter) ([]models.Order, int, error) {
	f.StaffID = userID
	return s.List(ctx, scope, f)
}

// Remove soft-deletes an order. The tracking token dies with it.
func (s *Service) Remove(ctx context.Context, scope tenant.Scope, id int64) error {
	shopID, err := scope.MustShop()
	if err != nil {
		return err
	}
	return s.store.SoftDelete(ctx, id, shopID)
}

func distinct(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
