package models

import "time"

// LoyaltyProgram is a shop's points configuration: one free reward every
// WashesRequired completed washes.
type LoyaltyProgram struct {
	ID             int64     `json:"id"`
	ShopID         int64     `json:"shop_id"`
	Name           string    `json:"name"`
	WashesRequired int       `json:"washes_required"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LoyaltyCard accumulates points for one customer at one shop.
type LoyaltyCard struct {
	ID         int64     `json:"id"`
	ShopID     int64     `json:"shop_id"`
	CustomerID int64     `json:"customer_id"`
	Points     int       `json:"points"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RedeemableStatus reports whether a customer can claim a reward.
type RedeemableStatus struct {
	CanRedeem     bool `json:"can_redeem"`
	CurrentPoints int  `json:"current_points"`
	Required      int  `json:"required"`
}
