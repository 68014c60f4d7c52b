package models

import "time"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Appointment is a reserved time slot at a shop. The (shop, date, time) triple is
// unique among non-cancelled appointments; the store enforces it with a partial
// unique index so concurrent bookings cannot race past the conflict check.
type Appointment struct {
	ID            int64             `json:"id"`
	ShopID        int64             `json:"shop_id"`
	CustomerID    int64             `json:"customer_id"`
	VehicleID     int64             `json:"vehicle_id"`
	ServiceType   string            `json:"service_type"`
	ScheduledDate string            `json:"scheduled_date"` // 2006-01-02
	ScheduledTime string            `json:"scheduled_time"` // 15:04
	Status        AppointmentStatus `json:"status"`
	Notes         *string           `json:"notes,omitempty"`
	CreatedBy     int64             `json:"created_by"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	DeletedAt     *time.Time        `json:"-"`
}
