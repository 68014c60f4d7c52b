package appointments

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/washpoint/backend/internal/auth"
	"github.com/washpoint/backend/internal/models"
	"github.com/washpoint/backend/internal/tenant"
	"github.com/washpoint/backend/pkg/response"
)

// Handler exposes the appointment endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the appointment routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/appointments/available-slots", h.AvailableSlots)
	rg.GET("/appointments", h.List)
	rg.POST("/appointments", h.Create)
	rg.GET("/appointments/:id", h.Get)
	rg.PUT("/appointments/:id", h.Update)
	rg.PATCH("/appointments/:id/confirm", h.event(EventConfirm))
	rg.PATCH("/appointments/:id/cancel", h.event(EventCancel))
	rg.PATCH("/appointments/:id/complete", h.event(EventComplete))
	rg.DELETE("/appointments/:id", h.Delete)
}

// AvailableSlots returns the free times for ?date=YYYY-MM-DD.
func (h *Handler) AvailableSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.BadRequest(c, "date is required")
		return
	}
	slots, err := h.svc.AvailableSlots(c.Request.Context(), tenant.FromContext(c), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"date": date, "slots": slots})
}

func (h *Handler) Create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	claims := c.MustGet(auth.ContextClaims).(*auth.Claims)

	a, err := h.svc.Book(c.Request.Context(), tenant.FromContext(c), claims.UserID, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, a)
}

func (h *Handler) List(c *gin.Context) {
	f := ListFilter{
		Date:     c.Query("date"),
		FromDate: c.Query("from"),
		ToDate:   c.Query("to"),
		Status:   models.AppointmentStatus(c.Query("status")),
	}
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if raw := c.Query("customer_id"); raw != "" {
		f.CustomerID, _ = strconv.ParseInt(raw, 10, 64)
	}
	if raw := c.Query("vehicle_id"); raw != "" {
		f.VehicleID, _ = strconv.ParseInt(raw, 10, 64)
	}

	items, total, err := h.svc.List(c.Request.Context(), tenant.FromContext(c), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"appointments": items, "total": total, "page": f.Page, "per_page": f.PerPage})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		response.BadRequest(c, "invalid appointment id")
		return
	}
	a, err := h.svc.Get(c.Request.Context(), tenant.FromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, a)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		response.BadRequest(c, "invalid appointment id")
		return
	}
	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	a, err := h.svc.Update(c.Request.Context(), tenant.FromContext(c), id, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, a)
}

func (h *Handler) event(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.BadRequest(c, "invalid appointment id")
			return
		}
		a, err := h.svc.Transition(c.Request.Context(), tenant.FromContext(c), id, name)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, a)
	}
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		response.BadRequest(c, "invalid appointment id")
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
