// Package vehicles manages the vehicles registered to a shop's customers.
package vehicles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/washpoint/backend/internal/domain"
	"github.com/washpoint/backend/internal/models"
)

// Repository persists vehicles in Postgres.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const vehicleColumns = `id, shop_id, customer_id, license_plate, model, color, type, created_at, updated_at`

func scanVehicle(row pgx.Row) (*models.Vehicle, error) {
	var v models.Vehicle
	err := row.Scan(&v.ID, &v.ShopID, &v.CustomerID, &v.LicensePlate, &v.Model, &v.Color, &v.Type, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a vehicle. Plates are unique per shop.
func (r *Repository) Create(ctx context.Context, v *models.Vehicle) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO vehicles (shop_id, customer_id, license_plate, model, color, type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		v.ShopID, v.CustomerID, v.LicensePlate, v.Model, v.Color, v.Type).
		Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.Validation("license plate %s is already registered", v.LicensePlate)
	}
	return err
}

// Get fetches one vehicle. A nil shop means global scope.
func (r *Repository) Get(ctx context.Context, id int64, shop *int64) (*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1 AND deleted_at IS NULL`
	args := []interface{}{id}
	if shop != nil {
		query += ` AND shop_id = $2`
		args = append(args, *shop)
	}
	v, err := scanVehicle(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("vehicle")
	}
	return v, err
}

// ListByCustomer returns a customer's vehicles.
func (r *Repository) ListByCustomer(ctx context.Context, shopID, customerID int64) ([]models.Vehicle, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+vehicleColumns+` FROM vehicles
		WHERE shop_id = $1 AND customer_id = $2 AND deleted_at IS NULL
		ORDER BY created_at`,
		shopID, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// Update rewrites the mutable vehicle fields.
func (r *Repository) Update(ctx context.Context, v *models.Vehicle) error {
	err := r.db.QueryRow(ctx, `
		UPDATE vehicles SET license_plate = $1, model = $2, color = $3, type = $4, updated_at = NOW()
		WHERE id = $5 AND shop_id = $6 AND deleted_at IS NULL
		RETURNING updated_at`,
		v.LicensePlate, v.Model, v.Color, v.Type, v.ID, v.ShopID).Scan(&v.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.Validation("license plate %s is already registered", v.LicensePlate)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound("vehicle")
	}
	return err
}

// SoftDelete hides the vehicle from every read path.
func (r *Repository) SoftDelete(ctx context.Context, id, shopID int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE vehicles SET deleted_at = NOW() WHERE id = $1 AND shop_id = $2 AND deleted_at IS NULL`,
		id, shopID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("vehicle")
	}
	return nil
}

// VehicleOwner resolves the owning customer of a vehicle at the shop. Used by
// the appointment and order cross-reference checks; a cross-tenant id reads as
// missing.
func (r *Repository) VehicleOwner(ctx context.Context, shopID, vehicleID int64) (int64, error) {
	var customerID int64
	err := r.db.QueryRow(ctx, `
		SELECT customer_id FROM vehicles WHERE id = $1 AND shop_id = $2 AND deleted_at IS NULL`,
		vehicleID, shopID).Scan(&customerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.NotFound("vehicle")
	}
	return customerID, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
