package vehicles

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/washpoint/backend/internal/models"
	"github.com/washpoint/backend/internal/tenant"
	"github.com/washpoint/backend/pkg/response"
)

// Handler exposes the vehicle endpoints.
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes mounts the vehicle routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/vehicles", h.Create)
	rg.GET("/vehicles/:id", h.Get)
	rg.PUT("/vehicles/:id", h.Update)
	rg.DELETE("/vehicles/:id", h.Delete)
	rg.GET("/customers/:id/vehicles", h.ListByCustomer)
}

type createRequest struct {
	CustomerID   int64              `json:"customer_id" binding:"required"`
	LicensePlate string             `json:"license_plate" binding:"required"`
	Model        string             `json:"model" binding:"required"`
	Color        string             `json:"color" binding:"required"`
	Type         models.VehicleType `json:"type" binding:"required,oneof=car motorcycle pickup"`
}

func (h *Handler) Create(c *gin.Context) {
	shopID, err := tenant.FromContext(c).MustShop()
	if err != nil {
		response.Error(c, err)
		return
	}
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	v := &models.Vehicle{
		ShopID:       shopID,
		CustomerID:   req.CustomerID,
		LicensePlate: req.LicensePlate,
		Model:        req.Model,
		Color:        req.Color,
		Type:         req.Type,
	}
	if err := h.repo.Create(c.Request.Context(), v); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, v)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid vehicle id")
		return
	}
	v, err := h.repo.Get(c.Request.Context(), id, tenant.FromContext(c).ShopID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, v)
}

type updateRequest struct {
	LicensePlate string             `json:"license_plate" binding:"required"`
	Model        string             `json:"model" binding:"required"`
	Color        string             `json:"color" binding:"required"`
	Type         models.VehicleType `json:"type" binding:"required,oneof=car motorcycle pickup"`
}

func (h *Handler) Update(c *gin.Context) {
	shopID, err := tenant.FromContext(c).MustShop()
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid vehicle id")
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	existing, err := h.repo.Get(c.Request.Context(), id, &shopID)
	if err != nil {
		response.Error(c, err)
		return
	}
	existing.LicensePlate = req.LicensePlate
	existing.Model = req.Model
	existing.Color = req.Color
	existing.Type = req.Type
	if err := h.repo.Update(c.Request.Context(), existing); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, existing)
}

func (h *Handler) Delete(c *gin.Context) {
	shopID, err := tenant.FromContext(c).MustShop()
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid vehicle id")
		return
	}
	if err := h.repo.SoftDelete(c.Request.Context(), id, shopID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

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
	items, err := h.repo.ListByCustomer(c.Request.Context(), shopID, customerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}
