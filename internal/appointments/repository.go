package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/washpoint/backend/internal/domain"
	"github.com/washpoint/backend/internal/models"
)

// Repository persists appointments in Postgres.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const appointmentColumns = `id, shop_id, customer_id, vehicle_id, service_type,
	to_char(scheduled_date, 'YYYY-MM-DD'), to_char(scheduled_time, 'HH24:MI'),
	status, notes, created_by, created_at, updated_at`

func scanAppointment(row pgx.Row) (*models.Appointment, error) {
	var a models.Appointment
	err := row.Scan(&a.ID, &a.ShopID, &a.CustomerID, &a.VehicleID, &a.ServiceType,
		&a.ScheduledDate, &a.ScheduledTime, &a.Status, &a.Notes, &a.CreatedBy,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Insert creates the appointment and fills in the generated id and timestamps.
// A unique-index violation on the slot is reported as a validation error so a
// concurrent double booking surfaces the same way as the pre-check.
func (r *Repository) Insert(ctx context.Context, a *models.Appointment) error {
	query := `
		INSERT INTO appointments (shop_id, customer_id, vehicle_id, service_type,
			scheduled_date, scheduled_time, status, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, a.ShopID, a.CustomerID, a.VehicleID,
		a.ServiceType, a.ScheduledDate, a.ScheduledTime, a.Status, a.Notes,
		a.CreatedBy).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.Validation("time slot %s %s is not available", a.ScheduledDate, a.ScheduledTime)
	}
	return err
}

// Get fetches one appointment. A nil shop means global scope; otherwise the
// lookup is constrained to that shop and a cross-tenant id reads as missing.
func (r *Repository) Get(ctx context.Context, id int64, shop *int64) (*models.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1 AND deleted_at IS NULL`, appointmentColumns)
	args := []interface{}{id}
	if shop != nil {
		query += ` AND shop_id = $2`
		args = append(args, *shop)
	}

	a, err := scanAppointment(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("appointment")
	}
	return a, err
}

// ListFilter narrows List. Zero values mean "no filter".
type ListFilter struct {
	Date       string
	FromDate   string
	ToDate     string
	Status     models.AppointmentStatus
	CustomerID int64
	VehicleID  int64
	Page       int
	PerPage    int
}

// List returns a page of appointments for the scope plus the total count.
func (r *Repository) List(ctx context.Context, shop *int64, f ListFilter) ([]models.Appointment, int, error) {
	where := `deleted_at IS NULL`
	args := []interface{}{}
	n := 0
	add := func(cond string, val interface{}) {
		n++
		where += fmt.Sprintf(" AND "+cond, n)
		args = append(args, val)
	}
	if shop != nil {
		add("shop_id = $%d", *shop)
	}
	if f.Date != "" {
		add("scheduled_date = $%d", f.Date)
	}
	if f.FromDate != "" {
		add("scheduled_date >= $%d", f.FromDate)
	}
	if f.ToDate != "" {
		add("scheduled_date <= $%d", f.ToDate)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.CustomerID != 0 {
		add("customer_id = $%d", f.CustomerID)
	}
	if f.VehicleID != 0 {
		add("vehicle_id = $%d", f.VehicleID)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE %s
		ORDER BY scheduled_date, scheduled_time
		LIMIT $%d OFFSET $%d`, appointmentColumns, where, n+1, n+2)
	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *a)
	}
	return out, total, rows.Err()
}

// Update rewrites the mutable fields of an appointment. The slot unique index
// backstops reschedules the same way it backstops inserts.
func (r *Repository) Update(ctx context.Context, a *models.Appointment) error {
	query := `
		UPDATE appointments
		SET vehicle_id = $1, service_type = $2, scheduled_date = $3,
			scheduled_time = $4, notes = $5, updated_at = NOW()
		WHERE id = $6 AND shop_id = $7 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query, a.VehicleID, a.ServiceType, a.ScheduledDate,
		a.ScheduledTime, a.Notes, a.ID, a.ShopID).Scan(&a.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.Validation("time slot %s %s is not available", a.ScheduledDate, a.ScheduledTime)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound("appointment")
	}
	return err
}

// UpdateStatus moves the appointment to a validated lifecycle status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status models.AppointmentStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE appointments SET status = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`,
		status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("appointment")
	}
	return nil
}

// SoftDelete hides the appointment from every read path.
func (r *Repository) SoftDelete(ctx context.Context, id, shopID int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE appointments SET deleted_at = NOW() WHERE id = $1 AND shop_id = $2 AND deleted_at IS NULL`,
		id, shopID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("appointment")
	}
	return nil
}

// BookedTimes returns the occupied slot times of a shop day. Cancelled
// appointments do not hold their slot.
func (r *Repository) BookedTimes(ctx context.Context, shopID int64, date string) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, `
		SELECT to_char(scheduled_time, 'HH24:MI') FROM appointments
		WHERE shop_id = $1 AND scheduled_date = $2
			AND status IN ('pending', 'confirmed')
			AND deleted_at IS NULL`,
		shopID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	booked := make(map[string]struct{})
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		booked[t] = struct{}{}
	}
	return booked, rows.Err()
}

// CountConflicts counts non-cancelled appointments holding the slot, excluding
// excludeID so a reschedule does not conflict with itself.
func (r *Repository) CountConflicts(ctx context.Context, shopID int64, date, timeOfDay string, excludeID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE shop_id = $1 AND scheduled_date = $2 AND scheduled_time = $3
			AND status <> 'cancelled' AND deleted_at IS NULL AND id <> $4`,
		shopID, date, timeOfDay, excludeID).Scan(&count)
	return count, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
