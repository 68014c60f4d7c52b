package orders

import "github.com/google/uuid"

// NewTrackingToken mints the public tracking identifier of an order. It is
// minted once at intake and never rotated.
func NewTrackingToken() string {
	return uuid.NewString()
}
