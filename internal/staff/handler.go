// Package staff exposes staff account management for shop owners.
package staff

import (
	"github.com/gin-gonic/gin"

	"github.com/washpoint/backend/internal/auth"
	"github.com/washpoint/backend/internal/models"
	"github.com/washpoint/backend/internal/tenant"
	"github.com/washpoint/backend/pkg/response"
	"github.com/washpoint/backend/pkg/utils"
)

// Handler manages staff accounts within the active shop scope.
type Handler struct {
	users *auth.Repository
}

func NewHandler(users *auth.Repository) *Handler {
	return &Handler{users: users}
}

// RegisterRoutes mounts the staff routes. The caller wraps them in the
// owner/super role middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/staff", h.List)
	rg.POST("/staff", h.Register)
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

// Register creates a staff account bound to the scoped shop.
func (h *Handler) Register(c *gin.Context) {
	scope := tenant.FromContext(c)
	shopID, err := scope.MustShop()
	if err != nil {
		response.Error(c, err)
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Email, hash, req.Name, models.RoleStaff, &shopID)
	if err != nil {
		response.Conflict(c, "email already registered")
		return
	}
	response.Created(c, user.ToPublic())
}

// List returns the active staff of the scoped shop.
func (h *Handler) List(c *gin.Context) {
	scope := tenant.FromContext(c)
	shopID, err := scope.MustShop()
	if err != nil {
		response.Error(c, err)
		return
	}

	staff, err := h.users.ListStaff(c.Request.Context(), shopID)
	if err != nil {
		response.Internal(c, "failed to list staff")
		return
	}
	response.OK(c, staff)
}
