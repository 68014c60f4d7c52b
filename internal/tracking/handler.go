// Package tracking serves the public order tracking page and the kiosk status
// terminal. Both are addressed by tracking token and carry no session: the
// token is the capability, and the payload is stripped of anything a customer
// standing at the counter should not see.
package tracking

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/washpoint/backend/internal/models"
	"github.com/washpoint/backend/internal/orders"
	"github.com/washpoint/backend/pkg/response"
)

// Public wait quotes in minutes. Coarser than the board's estimates on purpose:
// the tracking page has no queue position to refine them with.
const (
	waitingQuoteMinutes    = 30
	inProgressQuoteMinutes = 20
)

// View is the sanitized tracking payload. No customer identity, no amounts, no
// staff, no internal ids beyond the token the caller already holds.
type View struct {
	Status           models.WashStatus    `json:"status"`
	Progress         int                  `json:"progress"`
	ServiceType      models.ServiceType   `json:"service_type"`
	PaymentStatus    models.PaymentStatus `json:"payment_status"`
	Vehicle          *models.VehicleRef   `json:"vehicle,omitempty"`
	EstimatedMinutes int                  `json:"estimated_minutes"`
	StartedAt        *time.Time           `json:"started_at,omitempty"`
	CompletedAt      *time.Time           `json:"completed_at,omitempty"`
	PhotosBefore     []string             `json:"photos_before"`
	PhotosAfter      []string             `json:"photos_after"`
}

// NewView builds the public payload for an order.
func NewView(o *models.Order) View {
	v := View{
		Status:        o.WashStatus,
		Progress:      orders.TrackingProgress[o.WashStatus],
		ServiceType:   o.ServiceType,
		PaymentStatus: o.PaymentStatus,
		Vehicle:       o.Vehicle,
		StartedAt:     o.StartedAt,
		CompletedAt:   o.CompletedAt,
		PhotosBefore:  o.PhotosBefore,
		PhotosAfter:   o.PhotosAfter,
	}
	switch o.WashStatus {
	case models.WashWaiting:
		v.EstimatedMinutes = waitingQuoteMinutes
	case models.WashInProgress:
		v.EstimatedMinutes = inProgressQuoteMinutes
	}
	return v
}

// Handler exposes the token-addressed endpoints.
type Handler struct {
	svc *orders.Service
}

func NewHandler(svc *orders.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the tracking routes on the unauthenticated router.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/track/:token", h.Track)
	rg.PATCH("/track/:token/status", h.KioskStatus)
}

// Track returns the public view of an order.
func (h *Handler) Track(c *gin.Context) {
	o, err := h.svc.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, NewView(o))
}

type kioskRequest struct {
	WashStatus models.WashStatus `json:"wash_status" binding:"required"`
}

// KioskStatus moves an order's status from the workshop kiosk. The terminal
// holds the token; side effects fire exactly as they do for staff updates.
func (h *Handler) KioskStatus(c *gin.Context) {
	var req kioskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	o, err := h.svc.SetStatusByToken(c.Request.Context(), c.Param("token"), req.WashStatus)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, NewView(o))
}
