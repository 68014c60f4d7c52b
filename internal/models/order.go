package models

import "time"

// WashStatus is the operational stage of a service order.
type WashStatus string

const (
	WashWaiting     WashStatus = "waiting"
	WashInProgress  WashStatus = "in_progress"
	WashCompleted   WashStatus = "completed"
	WashReadyPickup WashStatus = "ready_pickup"
	WashDelivered   WashStatus = "delivered"
)

// ServiceType is the kind of wash performed.
type ServiceType string

const (
	ServiceBasic  ServiceType = "basic"
	ServiceFull   ServiceType = "full"
	ServicePolish ServiceType = "polish"
)

// PaymentMethod records how the customer paid. Manually entered, no gateway.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentPix  PaymentMethod = "pix"
	PaymentCard PaymentMethod = "card"
)

// PaymentStatus is the settlement state of an order.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Order is one car-wash service instance, tracked from intake to pickup.
// The tracking token is minted once at creation and is the only identifier
// exposed to unauthenticated lookups.
type Order struct {
	ID            int64         `json:"id"`
	ShopID        int64         `json:"shop_id"`
	CustomerID    int64         `json:"customer_id"`
	VehicleID     int64         `json:"vehicle_id"`
	ServiceType   ServiceType   `json:"service_type"`
	Amount        float64       `json:"amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	WashStatus    WashStatus    `json:"wash_status"`
	TrackingToken string        `json:"tracking_token"`
	DateTime      time.Time     `json:"date_time"`
	StartedAt     *time.Time    `json:"started_at,omitempty"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	Notes         *string       `json:"notes,omitempty"`
	PhotosBefore  []string      `json:"photos_before"`
	PhotosAfter   []string      `json:"photos_after"`
	StaffIDs      []int64       `json:"staff_ids"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	DeletedAt     *time.Time    `json:"-"`

	// Joined views, populated by list queries for board and tracking payloads.
	Vehicle  *VehicleRef  `json:"vehicle,omitempty"`
	Customer *CustomerRef `json:"customer,omitempty"`
}
