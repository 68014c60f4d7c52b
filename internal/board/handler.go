package board

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/washpoint/backend/internal/models"
	"github.com/washpoint/backend/internal/tenant"
	"github.com/washpoint/backend/pkg/clock"
	"github.com/washpoint/backend/pkg/response"
)

// Source provides the active orders of a shop for one day, in intake order.
type Source interface {
	ListActive(ctx context.Context, shopID int64, day string) ([]models.Order, error)
}

// Handler serves the operations board.
type Handler struct {
	source Source
	clock  clock.Clock
}

func NewHandler(source Source, clk clock.Clock) *Handler {
	return &Handler{source: source, clock: clk}
}

// RegisterRoutes mounts the board routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/board", h.Get)
}

// Get returns the bucketed board for the scoped shop.
func (h *Handler) Get(c *gin.Context) {
	scope := tenant.FromContext(c)
	shopID, err := scope.MustShop()
	if err != nil {
		response.Error(c, err)
		return
	}

	now := h.clock.Now()
	orders, err := h.source.ListActive(c.Request.Context(), shopID, now.Format("2006-01-02"))
	if err != nil {
		response.Error(c, err)
		return
	}
	b := Build(orders, now)
	response.OK(c, gin.H{"board": b, "counts": b.Count()})
}
