package models

import "time"

// Shop is an isolated business unit (tenant). All domain data is partitioned by it.
type Shop struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	IsActive  bool       `json:"is_active"`
	LogoURL   *string    `json:"logo_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}
