package auth

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/washpoint/backend/internal/models"
	"github.com/washpoint/backend/pkg/response"
	"github.com/washpoint/backend/pkg/utils"
)

// ContextClaims is the gin context key under which the JWT middleware stores
// the validated *Claims.
const ContextClaims = "auth_claims"

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SwitchShopRequest is the body for POST /auth/switch-shop (super operator only).
// A null shop_id returns to the global, all-shops scope.
type SwitchShopRequest struct {
	ShopID *int64 `json:"shop_id"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil || !user.IsActive {
		response.Unauthorized(c, "invalid email or password")
		return
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, user.Role, user.ShopID)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// RegisterOwnerRequest is the body for POST /auth/register-owner
// (super operator only).
type RegisterOwnerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	ShopID   int64  `json:"shop_id" binding:"required"`
}

// RegisterOwner creates an owner account bound to a shop.
func (h *Handler) RegisterOwner(c *gin.Context) {
	var req RegisterOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Email, hash, req.Name, models.RoleOwner, &req.ShopID)
	if err != nil {
		response.Conflict(c, "email already registered")
		return
	}
	h.logger.Info("owner registered", zap.Int64("user_id", user.ID), zap.Int64("shop_id", req.ShopID))
	response.Created(c, user.ToPublic())
}

// SwitchShop handles POST /auth/switch-shop. A super operator selects a shop to
// work under (or clears the selection to regain the global scope) and receives
// a token bound to that scope.
func (h *Handler) SwitchShop(c *gin.Context) {
	var req SwitchShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	claims := c.MustGet(ContextClaims).(*Claims)
	if claims.Role != models.RoleSuperOperator {
		response.Forbidden(c, "only a super operator can switch shops")
		return
	}

	token, err := h.jwt.Generate(claims.UserID, claims.Email, claims.Role, req.ShopID)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	user, err := h.repo.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	pub := user.ToPublic()
	pub.ShopID = req.ShopID
	response.OK(c, TokenResponse{Token: token, User: pub})
}
