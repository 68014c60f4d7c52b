package loyalty

import (
	"context"

	"go.uber.org/zap"

	"github.com/washpoint/backend/internal/domain"
	"github.com/washpoint/backend/internal/models"
)

// Store is the persistence surface the service needs. *Repository implements it.
type Store interface {
	ActiveProgram(ctx context.Context, shopID int64) (*models.LoyaltyProgram, error)
	UpsertProgram(ctx context.Context, p *models.LoyaltyProgram) error
	Card(ctx context.Context, shopID, customerID int64) (*models.LoyaltyCard, error)
	AddPoints(ctx context.Context, shopID, customerID int64, delta int) (int, error)
}

// Service implements point accrual and redemption.
type Service struct {
	store Store
	log   *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// EarnPoint credits one wash to the customer's card. Called from the event
// fan-out on delivery. Shops without an active program accrue nothing; that is
// not an error.
func (s *Service) EarnPoint(ctx context.Context, shopID, customerID int64) error {
	_, err := s.store.ActiveProgram(ctx, shopID)
	if domain.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	points, err := s.store.AddPoints(ctx, shopID, customerID, 1)
	if err != nil {
		return err
	}
	s.log.Info("loyalty point earned",
		zap.Int64("shop_id", shopID),
		zap.Int64("customer_id", customerID),
		zap.Int("points", points))
	return nil
}

// Status reports a customer's balance against the active program.
func (s *Service) Status(ctx context.Context, shopID, customerID int64) (*models.RedeemableStatus, error) {
	program, err := s.store.ActiveProgram(ctx, shopID)
	if err != nil {
		return nil, err
	}
	card, err := s.store.Card(ctx, shopID, customerID)
	if err != nil {
		return nil, err
	}
	return &models.RedeemableStatus{
		CanRedeem:     card.Points >= program.WashesRequired,
		CurrentPoints: card.Points,
		Required:      program.WashesRequired,
	}, nil
}

// Redeem claims a free wash: the program's required points are deducted from
// the card. Balances beyond the threshold carry over.
func (s *Service) Redeem(ctx context.Context, shopID, customerID int64) (*models.RedeemableStatus, error) {
	program, err := s.store.ActiveProgram(ctx, shopID)
	if err != nil {
		return nil, err
	}
	card, err := s.store.Card(ctx, shopID, customerID)
	if err != nil {
		return nil, err
	}
	if card.Points < program.WashesRequired {
		return nil, domain.Validation("not enough points: %d of %d", card.Points, program.WashesRequired)
	}

	points, err := s.store.AddPoints(ctx, shopID, customerID, -program.WashesRequired)
	if err != nil {
		return nil, err
	}
	s.log.Info("loyalty reward redeemed",
		zap.Int64("shop_id", shopID),
		zap.Int64("customer_id", customerID),
		zap.Int("points_left", points))
	return &models.RedeemableStatus{
		CanRedeem:     points >= program.WashesRequired,
		CurrentPoints: points,
		Required:      program.WashesRequired,
	}, nil
}

// ProgramInput configures a shop's program.
type ProgramInput struct {
	Name           string `json:"name" binding:"required"`
	WashesRequired int    `json:"washes_required" binding:"required,gt=0"`
}

// ConfigureProgram activates a new program for the shop, replacing any
// previous one. Existing card balances are kept.
func (s *Service) ConfigureProgram(ctx context.Context, shopID int64, in ProgramInput) (*models.LoyaltyProgram, error) {
	p := &models.LoyaltyProgram{
		ShopID:         shopID,
		Name:           in.Name,
		WashesRequired: in.WashesRequired,
	}
	if err := s.store.UpsertProgram(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
