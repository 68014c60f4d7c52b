package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/washpoint/backend/internal/models"
)

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, password_hash, name, role, shop_id, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Role, &u.ShopID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail returns a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, email, passwordHash, name string, role models.Role, shopID *int64) (*models.User, error) {
	const q = `INSERT INTO users (email, password_hash, name, role, shop_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, email, passwordHash, name, string(role), shopID))
}

// ListStaff returns the active staff members of a shop.
func (r *Repository) ListStaff(ctx context.Context, shopID int64) ([]models.UserPublic, error) {
	const q = `SELECT id, email, name, role, shop_id, is_active, created_at
		FROM users WHERE shop_id = $1 AND role = 'staff' AND is_active ORDER BY name`
	rows, err := r.pool.Query(ctx, q, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.ShopID, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// CountActiveStaff returns how many of the given ids resolve to active staff of
// the shop. Duplicate ids collapse in the IN list, matching the count-based
// validation the order intake performs.
func (r *Repository) CountActiveStaff(ctx context.Context, shopID int64, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const q = `SELECT COUNT(*) FROM users
		WHERE id = ANY($1) AND shop_id = $2 AND role = 'staff' AND is_active`
	var n int
	if err := r.pool.QueryRow(ctx, q, ids, shopID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// SetShop rebinds a user's shop. Used by super-operator shop switching.
func (r *Repository) SetShop(ctx context.Context, userID int64, shopID *int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET shop_id = $1, updated_at = NOW() WHERE id = $2`, shopID, userID)
	return err
}
