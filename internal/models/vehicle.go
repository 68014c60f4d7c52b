package models

import "time"

// VehicleType classifies a vehicle for pricing and bay assignment.
type VehicleType string

const (
	VehicleCar        VehicleType = "car"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehiclePickup     VehicleType = "pickup"
)

// Vehicle belongs to a customer of a shop.
type Vehicle struct {
	ID           int64       `json:"id"`
	ShopID       int64       `json:"shop_id"`
	CustomerID   int64       `json:"customer_id"`
	LicensePlate string      `json:"license_plate"`
	Model        string      `json:"model"`
	Color        string      `json:"color"`
	Type         VehicleType `json:"type"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	DeletedAt    *time.Time  `json:"-"`
}

// VehicleRef is the sanitized vehicle view embedded in board and tracking payloads.
type VehicleRef struct {
	LicensePlate string      `json:"license_plate"`
	Model        string      `json:"model"`
	Color        string      `json:"color"`
	Type         VehicleType `json:"type"`
}

// Ref returns the embeddable view of the vehicle.
func (v *Vehicle) Ref() VehicleRef {
	return VehicleRef{LicensePlate: v.LicensePlate, Model: v.Model, Color: v.Color, Type: v.Type}
}
