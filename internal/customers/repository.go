// Package customers manages a shop's customer registry.
package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/washpoint/backend/internal/domain"
	"github.com/washpoint/backend/internal/models"
)

// Repository persists customers in Postgres.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const customerColumns = `id, shop_id, name, phone, notes, is_frequent, created_at, updated_at`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.ShopID, &c.Name, &c.Phone, &c.Notes, &c.IsFrequent, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a customer for the shop.
func (r *Repository) Create(ctx context.Context, c *models.Customer) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO customers (shop_id, name, phone, notes, is_frequent)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		c.ShopID, c.Name, c.Phone, c.Notes, c.IsFrequent).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Get fetches one customer. A nil shop means global scope.
func (r *Repository) Get(ctx context.Context, id int64, shop *int64) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1 AND deleted_at IS NULL`
	args := []interface{}{id}
	if shop != nil {
		query += ` AND shop_id = $2`
		args = append(args, *shop)
	}
	c, err := scanCustomer(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("customer")
	}
	return c, err
}

// List returns a page of customers, optionally filtered by a name or phone
// search term.
func (r *Repository) List(ctx context.Context, shop *int64, search string, page, perPage int) ([]models.Customer, int, error) {
	where := `deleted_at IS NULL`
	args := []interface{}{}
	n := 0
	if shop != nil {
		n++
		where += fmt.Sprintf(" AND shop_id = $%d", n)
		args = append(args, *shop)
	}
	if search != "" {
		n++
		where += fmt.Sprintf(" AND (name ILIKE $%d OR phone ILIKE $%d)", n, n)
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM customers WHERE %s ORDER BY name LIMIT $%d OFFSET $%d`,
		customerColumns, where, n+1, n+2)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

// Update rewrites the mutable customer fields.
func (r *Repository) Update(ctx context.Context, c *models.Customer) error {
	err := r.db.QueryRow(ctx, `
		UPDATE customers SET name = $1, phone = $2, notes = $3, is_frequent = $4, updated_at = NOW()
		WHERE id = $5 AND shop_id = $6 AND deleted_at IS NULL
		RETURNING updated_at`,
		c.Name, c.Phone, c.Notes, c.IsFrequent, c.ID, c.ShopID).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound("customer")
	}
	return err
}

// SoftDelete hides the customer from every read path.
func (r *Repository) SoftDelete(ctx context.Context, id, shopID int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE customers SET deleted_at = NOW() WHERE id = $1 AND shop_id = $2 AND deleted_at IS NULL`,
		id, shopID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("customer")
	}
	return nil
}

// CustomerExists reports whether the customer lives at the shop. Used by the
// appointment and order cross-reference checks.
func (r *Repository) CustomerExists(ctx context.Context, shopID, customerID int64) (bool, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM customers WHERE id = $1 AND shop_id = $2 AND deleted_at IS NULL`,
		customerID, shopID).Scan(&n)
	return n > 0, err
}
