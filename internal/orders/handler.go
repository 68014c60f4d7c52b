package orders

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/washpoint/backend/internal/auth"
	"github.com/washpoint/backend/internal/models"
	"github.com/washpoint/backend/internal/tenant"
	"github.com/washpoint/backend/pkg/response"
	"github.com/washpoint/backend/pkg/storage"
)

// Handler exposes the order endpoints. The S3 client is optional: without it
// the photo endpoints report the feature as unavailable.
type Handler struct {
	svc *Service
	s3  *storage.S3
}

func NewHandler(svc *Service, s3 *storage.S3) *Handler {
	return &Handler{svc: svc, s3: s3}
}

// RegisterRoutes mounts the order routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/orders", h.List)
	rg.POST("/orders", h.Create)
	rg.GET("/orders/my-washes", h.MyWashes)
	rg.GET("/orders/:id", h.Get)
	rg.PATCH("/orders/:id/status", h.SetStatus)
	rg.PATCH("/orders/:id/payment", h.UpdatePayment)
	rg.POST("/orders/:id/photos", h.UploadPhotos)
	rg.DELETE("/orders/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	o, err := h.svc.Create(c.Request.Context(), tenant.FromContext(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, o)
}

func (h *Handler) List(c *gin.Context) {
	f := ListFilter{
		WashStatus:    models.WashStatus(c.Query("wash_status")),
		PaymentStatus: models.PaymentStatus(c.Query("payment_status")),
		FromDate:      c.Query("from"),
		ToDate:        c.Query("to"),
	}
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if raw := c.Query("customer_id"); raw != "" {
		f.CustomerID, _ = strconv.ParseInt(raw, 10, 64)
	}

	items, total, err := h.svc.List(c.Request.Context(), tenant.FromContext(c), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"orders": items, "total": total, "page": f.Page, "per_page": f.PerPage})
}

// MyWashes lists the orders assigned to the authenticated staff member.
func (h *Handler) MyWashes(c *gin.Context) {
	claims := c.MustGet(auth.ContextClaims).(*auth.Claims)
	var f ListFilter
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))

	items, total, err := h.svc.MyWashes(c.Request.Context(), tenant.FromContext(c), claims.UserID, f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"orders": items, "total": total, "page": f.Page, "per_page": f.PerPage})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	o, err := h.svc.Get(c.Request.Context(), tenant.FromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, o)
}

type statusRequest struct {
	WashStatus models.WashStatus `json:"wash_status" binding:"required"`
}

func (h *Handler) SetStatus(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	o, err := h.svc.SetStatus(c.Request.Context(), tenant.FromContext(c), id, req.WashStatus)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, o)
}

func (h *Handler) UpdatePayment(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	var in PaymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	o, err := h.svc.UpdatePayment(c.Request.Context(), tenant.FromContext(c), id, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, o)
}

// UploadPhotos accepts multipart uploads under the "photos" field, stores them
// in S3 and appends the URLs to the order. ?stage=after selects the after set;
// anything else is "before".
func (h *Handler) UploadPhotos(c *gin.Context) {
	if h.s3 == nil {
		response.Internal(c, "photo storage is not configured")
		return
	}
	id, err := paramID(c)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	scope := tenant.FromContext(c)
	shopID, err := scope.MustShop()
	if err != nil {
		response.Error(c, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "invalid multipart form")
		return
	}
	files := form.File["photos"]
	if len(files) == 0 {
		response.BadRequest(c, "no photos provided")
		return
	}

	stage := "before"
	after := false
	if c.Query("stage") == "after" {
		stage = "after"
		after = true
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		if file.Size > storage.MaxPhotoSize {
			response.BadRequest(c, fmt.Sprintf("%s exceeds the size limit", file.Filename))
			return
		}
		contentType := file.Header.Get("Content-Type")
		ext, ok := storage.AllowedPhotoTypes[contentType]
		if !ok {
			response.BadRequest(c, fmt.Sprintf("%s has an unsupported type", file.Filename))
			return
		}

		src, err := file.Open()
		if err != nil {
			response.Internal(c, "failed to read upload")
			return
		}
		key := storage.PhotoKey(shopID, id, stage, uuid.NewString()+ext)
		url, err := h.s3.Put(c.Request.Context(), key, contentType, src)
		src.Close()
		if err != nil {
			response.Internal(c, "failed to store photo")
			return
		}
		urls = append(urls, url)
	}

	o, err := h.svc.AttachPhotos(c.Request.Context(), scope, id, after, urls)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, o)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	if err := h.svc.Remove(c.Request.Context(), tenant.FromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func paramID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
