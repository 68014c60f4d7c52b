// Package shops manages the tenant registry. Only super operators create or
// deactivate shops; owners may update their own shop's profile.
package shops

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/washpoint/backend/internal/domain"
	"github.com/washpoint/backend/internal/models"
)

// Repository persists shops in Postgres.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const shopColumns = `id, name, slug, is_active, logo_url, created_at, updated_at`

func scanShop(row pgx.Row) (*models.Shop, error) {
	var s models.Shop
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.IsActive, &s.LogoURL, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a shop. Slugs are globally unique.
func (r *Repository) Create(ctx context.Context, s *models.Shop) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO shops (name, slug) VALUES ($1, $2)
		RETURNING id, is_active, created_at, updated_at`,
		s.Name, s.Slug).Scan(&s.ID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.Validation("slug %q is already taken", s.Slug)
	}
	return err
}

// Get fetches one shop.
func (r *Repository) Get(ctx context.Context, id int64) (*models.Shop, error) {
	s, err := scanShop(r.db.QueryRow(ctx,
		`SELECT `+shopColumns+` FROM shops WHERE id = $1 AND deleted_at IS NULL`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("shop")
	}
	return s, err
}

// List returns every live shop. Super-operator only.
func (r *Repository) List(ctx context.Context) ([]models.Shop, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+shopColumns+` FROM shops WHERE deleted_at IS NULL ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Shop
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Update rewrites the shop profile.
func (r *Repository) Update(ctx context.Context, s *models.Shop) error {
	err := r.db.QueryRow(ctx, `
		UPDATE shops SET name = $1, is_active = $2, logo_url = $3, updated_at = NOW()
		WHERE id = $4 AND deleted_at IS NULL
		RETURNING updated_at`,
		s.Name, s.IsActive, s.LogoURL, s.ID).Scan(&s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound("shop")
	}
	return err
}

// SoftDelete retires a shop. Its data stays for audit but every scoped read
// path goes dark.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE shops SET deleted_at = NOW(), is_active = FALSE WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("shop")
	}
	return nil
}
