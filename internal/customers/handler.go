package customers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/washpoint/backend/internal/models"
	"github.com/washpoint/backend/internal/tenant"
	"github.com/washpoint/backend/pkg/response"
)

// Handler exposes the customer endpoints.
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes mounts the customer routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/customers", h.List)
	rg.POST("/customers", h.Create)
	rg.GET("/customers/:id", h.Get)
	rg.PUT("/customers/:id", h.Update)
	rg.DELETE("/customers/:id", h.Delete)
}

type customerRequest struct {
	Name       string  `json:"name" binding:"required"`
	Phone      string  `json:"phone" binding:"required"`
	Notes      *string `json:"notes"`
	IsFrequent bool    `json:"is_frequent"`
}

func (h *Handler) Create(c *gin.Context) {
	shopID, err := tenant.FromContext(c).MustShop()
	if err != nil {
		response.Error(c, err)
		return
	}
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	customer := &models.Customer{
		ShopID:     shopID,
		Name:       req.Name,
		Phone:      req.Phone,
		Notes:      req.Notes,
		IsFrequent: req.IsFrequent,
	}
	if err := h.repo.Create(c.Request.Context(), customer); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, customer)
}

func (h *Handler) List(c *gin.Context) {
	scope := tenant.FromContext(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	items, total, err := h.repo.List(c.Request.Context(), scope.ShopID, c.Query("search"), page, perPage)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"customers": items, "total": total, "page": page, "per_page": perPage})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid customer id")
		return
	}
	customer, err := h.repo.Get(c.Request.Context(), id, tenant.FromContext(c).ShopID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, customer)
}

func (h *Handler) Update(c *gin.Context) {
	shopID, err := tenant.FromContext(c).MustShop()
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid customer id")
		return
	}
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	customer := &models.Customer{
		ID:         id,
		ShopID:     shopID,
		Name:       req.Name,
		Phone:      req.Phone,
		Notes:      req.Notes,
		IsFrequent: req.IsFrequent,
	}
	if err := h.repo.Update(c.Request.Context(), customer); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, customer)
}

func (h *Handler) Delete(c *gin.Context) {
	shopID, err := tenant.FromContext(c).MustShop()
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid customer id")
		return
	}
	if err := h.repo.SoftDelete(c.Request.Context(), id, shopID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
