package notifications

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/washpoint/backend/internal/tenant"
	"github.com/washpoint/backend/pkg/response"
)

// Handler exposes the notification history.
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes mounts the notification routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/customers/:id/notifications", h.ListByCustomer)
}

// ListByCustomer returns a customer's outbound message history.
func (h *Handler) ListByCustomer(c *gin.Context) {
	shopID, err := tenant.FromContext(c).MustShop()
	if err != nil {
		response.Error(c, err)
		return
	}
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid customer id")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	items, err := h.repo.ListByCustomer(c.Request.Context(), shopID, customerID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}
