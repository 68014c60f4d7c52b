package shops

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/washpoint/backend/internal/models"
	"github.com/washpoint/backend/internal/tenant"
	"github.com/washpoint/backend/pkg/response"
	"github.com/washpoint/backend/pkg/storage"
)

// Handler exposes the shop management endpoints. The S3 client is optional:
// without it the logo upload reports the feature as unavailable.
type Handler struct {
	repo *Repository
	s3   *storage.S3
}

func NewHandler(repo *Repository, s3 *storage.S3) *Handler {
	return &Handler{repo: repo, s3: s3}
}

// RegisterRoutes mounts the shop routes. supers is wrapped in the
// super-operator role middleware by the caller; rg is any authenticated group.
func (h *Handler) RegisterRoutes(rg, supers *gin.RouterGroup) {
	rg.GET("/shops/current", h.Current)
	supers.GET("/shops", h.List)
	supers.POST("/shops", h.Create)
	supers.PUT("/shops/:id", h.Update)
	supers.DELETE("/shops/:id", h.Delete)
	rg.POST("/shops/current/logo", h.UploadLogo)
}

type createRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required,min=2,max=100,lowercase"`
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	shop := &models.Shop{Name: req.Name, Slug: req.Slug}
	if err := h.repo.Create(c.Request.Context(), shop); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, shop)
}

func (h *Handler) List(c *gin.Context) {
	shops, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, shops)
}

// Current returns the shop of the active scope.
func (h *Handler) Current(c *gin.Context) {
	shopID, err := tenant.FromContext(c).MustShop()
	if err != nil {
		response.Error(c, err)
		return
	}
	shop, err := h.repo.Get(c.Request.Context(), shopID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, shop)
}

type updateRequest struct {
	Name     string `json:"name" binding:"required"`
	IsActive *bool  `json:"is_active"`
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid shop id")
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	shop, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	shop.Name = req.Name
	if req.IsActive != nil {
		shop.IsActive = *req.IsActive
	}
	if err := h.repo.Update(c.Request.Context(), shop); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, shop)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid shop id")
		return
	}
	if err := h.repo.SoftDelete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadLogo stores the shop's logo in S3 and records its URL.
func (h *Handler) UploadLogo(c *gin.Context) {
	if h.s3 == nil {
		response.Internal(c, "logo storage is not configured")
		return
	}
	shopID, err := tenant.FromContext(c).MustShop()
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := c.FormFile("logo")
	if err != nil {
		response.BadRequest(c, "logo file required")
		return
	}
	if file.Size > storage.MaxPhotoSize {
		response.BadRequest(c, "logo exceeds the size limit")
		return
	}
	contentType := file.Header.Get("Content-Type")
	ext, ok := storage.AllowedPhotoTypes[contentType]
	if !ok {
		response.BadRequest(c, "unsupported logo type")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Internal(c, "failed to read upload")
		return
	}
	defer src.Close()

	key := storage.LogoKey(shopID, uuid.NewString()+ext)
	url, err := h.s3.Put(c.Request.Context(), key, contentType, src)
	if err != nil {
		response.Internal(c, "failed to store logo")
		return
	}

	shop, err := h.repo.Get(c.Request.Context(), shopID)
	if err != nil {
		response.Error(c, err)
		return
	}
	shop.LogoURL = &url
	if err := h.repo.Update(c.Request.Context(), shop); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, shop)
}
