// Package loyalty keeps per-customer wash counts against a shop's loyalty
// program. Points accrue on delivery and convert into a free wash.
package loyalty

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/washpoint/backend/internal/domain"
	"github.com/washpoint/backend/internal/models"
)

// Repository persists loyalty programs and cards.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ActiveProgram returns the shop's active program, or a scoped miss when none
// is configured.
func (r *Repository) ActiveProgram(ctx context.Context, shopID int64) (*models.LoyaltyProgram, error) {
	var p models.LoyaltyProgram
	err := r.db.QueryRow(ctx, `
		SELECT id, shop_id, name, washes_required, is_active, created_at, updated_at
		FROM loyalty_programs WHERE shop_id = $1 AND is_active`, shopID).
		Scan(&p.ID, &p.ShopID, &p.Name, &p.WashesRequired, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("loyalty program")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertProgram creates or replaces the shop's active program. The partial
// unique index allows one active program per shop, so the previous one is
// deactivated first.
func (r *Repository) UpsertProgram(ctx context.Context, p *models.LoyaltyProgram) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE loyalty_programs SET is_active = FALSE, updated_at = NOW()
		WHERE shop_id = $1 AND is_active`, p.ShopID); err != nil {
		return err
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO loyalty_programs (shop_id, name, washes_required, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, created_at, updated_at`,
		p.ShopID, p.Name, p.WashesRequired).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}
	p.IsActive = true
	return tx.Commit(ctx)
}

// Card returns a customer's card, creating an empty one on first use.
func (r *Repository) Card(ctx context.Context, shopID, customerID int64) (*models.LoyaltyCard, error) {
	var c models.LoyaltyCard
	err := r.db.QueryRow(ctx, `
		INSERT INTO loyalty_cards (shop_id, customer_id, points)
		VALUES ($1, $2, 0)
		ON CONFLICT (shop_id, customer_id) DO UPDATE SET updated_at = loyalty_cards.updated_at
		RETURNING id, shop_id, customer_id, points, created_at, updated_at`,
		shopID, customerID).
		Scan(&c.ID, &c.ShopID, &c.CustomerID, &c.Points, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AddPoints adjusts a card's balance by delta and returns the new balance.
func (r *Repository) AddPoints(ctx context.Context, shopID, customerID int64, delta int) (int, error) {
	var points int
	err := r.db.QueryRow(ctx, `
		INSERT INTO loyalty_cards (shop_id, customer_id, points)
		VALUES ($1, $2, GREATEST($3, 0))
		ON CONFLICT (shop_id, customer_id)
		DO UPDATE SET points = GREATEST(loyalty_cards.points + $3, 0), updated_at = NOW()
		RETURNING points`,
		shopID, customerID, delta).Scan(&points)
	return points, err
}
