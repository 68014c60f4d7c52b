package models

import "time"

// Customer is a car owner registered at a shop.
type Customer struct {
	ID         int64      `json:"id"`
	ShopID     int64      `json:"shop_id"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	Notes      *string    `json:"notes,omitempty"`
	IsFrequent bool       `json:"is_frequent"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"-"`
}

// CustomerRef is the sanitized customer view embedded in board and tracking payloads.
type CustomerRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Ref returns the embeddable view of the customer.
func (c *Customer) Ref() CustomerRef {
	return CustomerRef{ID: c.ID, Name: c.Name, Phone: c.Phone}
}
