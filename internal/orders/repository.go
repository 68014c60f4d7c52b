package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/washpoint/backend/internal/domain"
	"github.com/washpoint/backend/internal/models"
)

// Repository persists orders in Postgres. Staff assignments live in the
// order_staff join table; photo URLs are stored as text arrays.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const orderColumns = `o.id, o.shop_id, o.customer_id, o.vehicle_id, o.service_type,
	o.amount, o.payment_method, o.payment_status, o.wash_status, o.tracking_token,
	o.date_time, o.started_at, o.completed_at, o.notes, o.photos_before, o.photos_after,
	o.created_at, o.updated_at,
	(SELECT COALESCE(array_agg(user_id ORDER BY user_id), '{}') FROM order_staff WHERE order_id = o.id),
	v.license_plate, v.model, v.color, v.type,
	c.id, c.name, c.phone`

const orderFrom = ` FROM orders o
	JOIN vehicles v ON v.id = o.vehicle_id
	JOIN customers c ON c.id = o.customer_id`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	var vehicle models.VehicleRef
	var customer models.CustomerRef
	err := row.Scan(&o.ID, &o.ShopID, &o.CustomerID, &o.VehicleID, &o.ServiceType,
		&o.Amount, &o.PaymentMethod, &o.PaymentStatus, &o.WashStatus, &o.TrackingToken,
		&o.DateTime, &o.StartedAt, &o.CompletedAt, &o.Notes, &o.PhotosBefore, &o.PhotosAfter,
		&o.CreatedAt, &o.UpdatedAt, &o.StaffIDs,
		&vehicle.LicensePlate, &vehicle.Model, &vehicle.Color, &vehicle.Type,
		&customer.ID, &customer.Name, &customer.Phone)
	if err != nil {
		return nil, err
	}
	o.Vehicle = &vehicle
	o.Customer = &customer
	return &o, nil
}

// Insert creates the order and its staff assignments in one transaction.
func (r *Repository) Insert(ctx context.Context, o *models.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (shop_id, customer_id, vehicle_id, service_type, amount,
			payment_method, payment_status, wash_status, tracking_token, date_time, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		o.ShopID, o.CustomerID, o.VehicleID, o.ServiceType, o.Amount,
		o.PaymentMethod, o.PaymentStatus, o.WashStatus, o.TrackingToken,
		o.DateTime, o.Notes).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return err
	}

	for _, userID := range o.StaffIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_staff (order_id, user_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, o.ID, userID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Get fetches one order. A nil shop means global scope.
func (r *Repository) Get(ctx context.Context, id int64, shop *int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` WHERE o.id = $1 AND o.deleted_at IS NULL`
	args := []interface{}{id}
	if shop != nil {
		query += ` AND o.shop_id = $2`
		args = append(args, *shop)
	}

	o, err := scanOrder(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("order")
	}
	return o, err
}

// GetByToken resolves an order by its public tracking token.
func (r *Repository) GetByToken(ctx context.Context, token string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` WHERE o.tracking_token = $1 AND o.deleted_at IS NULL`
	o, err := scanOrder(r.db.QueryRow(ctx, query, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("order")
	}
	return o, err
}

// ListFilter narrows List. Zero values mean "no filter"; FromDate and ToDate
// are inclusive day bounds in YYYY-MM-DD.
type ListFilter struct {
	WashStatus    models.WashStatus
	PaymentStatus models.PaymentStatus
	CustomerID    int64
	StaffID       int64
	FromDate      string
	ToDate        string
	Page          int
	PerPage       int
}

// List returns a page of orders for the scope plus the total count, newest
// first.
func (r *Repository) List(ctx context.Context, shop *int64, f ListFilter) ([]models.Order, int, error) {
	where := `o.deleted_at IS NULL`
	args := []interface{}{}
	n := 0
	add := func(cond string, val interface{}) {
		n++
		where += fmt.Sprintf(" AND "+cond, n)
		args = append(args, val)
	}
	if shop != nil {
		add("o.shop_id = $%d", *shop)
	}
	if f.WashStatus != "" {
		add("o.wash_status = $%d", f.WashStatus)
	}
	if f.PaymentStatus != "" {
		add("o.payment_status = $%d", f.PaymentStatus)
	}
	if f.CustomerID != 0 {
		add("o.customer_id = $%d", f.CustomerID)
	}
	if f.StaffID != 0 {
		add("EXISTS (SELECT 1 FROM order_staff os WHERE os.order_id = o.id AND os.user_id = $%d)", f.StaffID)
	}
	if f.FromDate != "" {
		add("o.date_time >= $%d::date", f.FromDate)
	}
	if f.ToDate != "" {
		add("o.date_time < $%d::date + INTERVAL '1 day'", f.ToDate)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+orderFrom+` WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s%s WHERE %s ORDER BY o.date_time DESC LIMIT $%d OFFSET $%d`,
		orderColumns, orderFrom, where, n+1, n+2)
	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)

	out, err := r.queryOrders(ctx, query, args...)
	return out, total, err
}

// ListActive returns the undelivered orders of a shop dated day, in intake
// order. This is the operations board's working set: the slice index is the
// queue position, and yesterday's leftovers must not inflate today's queue.
func (r *Repository) ListActive(ctx context.Context, shopID int64, day string) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + `
		WHERE o.shop_id = $1 AND o.wash_status <> 'delivered' AND o.deleted_at IS NULL
			AND o.date_time >= $2::date AND o.date_time < $2::date + INTERVAL '1 day'
		ORDER BY o.created_at`
	return r.queryOrders(ctx, query, shopID, day)
}

// UpdateLifecycle persists the fields ApplyStatus may have touched.
func (r *Repository) UpdateLifecycle(ctx context.Context, o *models.Order) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET wash_status = $1, payment_status = $2, started_at = $3, completed_at = $4,
			updated_at = NOW()
		WHERE id = $5 AND deleted_at IS NULL`,
		o.WashStatus, o.PaymentStatus, o.StartedAt, o.CompletedAt, o.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("order")
	}
	return nil
}

// UpdatePayment records a manual payment entry.
func (r *Repository) UpdatePayment(ctx context.Context, id, shopID int64, method models.PaymentMethod, status models.PaymentStatus) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET payment_method = $1, payment_status = $2, updated_at = NOW()
		WHERE id = $3 AND shop_id = $4 AND deleted_at IS NULL`,
		method, status, id, shopID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("order")
	}
	return nil
}

// AppendPhotos adds photo URLs to the before or after set.
func (r *Repository) AppendPhotos(ctx context.Context, id, shopID int64, after bool, urls []string) error {
	column := "photos_before"
	if after {
		column = "photos_after"
	}
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`
		UPDATE orders SET %s = %s || $1, updated_at = NOW()
		WHERE id = $2 AND shop_id = $3 AND deleted_at IS NULL`, column, column),
		urls, id, shopID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("order")
	}
	return nil
}

// SoftDelete hides the order from every read path, the public tracking page
// included.
func (r *Repository) SoftDelete(ctx context.Context, id, shopID int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET deleted_at = NOW() WHERE id = $1 AND shop_id = $2 AND deleted_at IS NULL`,
		id, shopID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("order")
	}
	return nil
}

func (r *Repository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
