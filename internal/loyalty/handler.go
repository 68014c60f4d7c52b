package loyalty

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/washpoint/backend/internal/tenant"
	"github.com/washpoint/backend/pkg/response"
)

// Handler exposes the loyalty endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the loyalty routes on an authenticated group. Program
// configuration is additionally wrapped in the owner role middleware by the
// caller.
func (h *Handler) RegisterRoutes(rg, owners *gin.RouterGroup) {
	rg.GET("/loyalty/program", h.Program)
	rg.GET("/loyalty/customers/:id", h.Status)
	rg.POST("/loyalty/customers/:id/redeem", h.Redeem)
	owners.PUT("/loyalty/program", h.Configure)
}

// Program returns the shop's active program.
func (h *Handler) Program(c *gin.Context) {
	shopID, err := tenant.FromContext(c).MustShop()
	if err != nil {
		response.Error(c, err)
		return
	}
	p, err := h.svc.store.ActiveProgram(c.Request.Context(), shopID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}

// Configure activates a new program for the shop.
func (h *Handler) Configure(c *gin.Context) {
	shopID, err := tenant.FromContext(c).MustShop()
	if err != nil {
		response.Error(c, err)
		return
	}
	var in ProgramInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.ConfigureProgram(c.Request.Context(), shopID, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}

// Status reports a customer's balance.
func (h *Handler) Status(c *gin.Context) {
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
	status, err := h.svc.Status(c.Request.Context(), shopID, customerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, status)
}

// Redeem claims a free wash for the customer.
func (h *Handler) Redeem(c *gin.Context) {
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
	status, err := h.svc.Redeem(c.Request.Context(), shopID, customerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, status)
}
