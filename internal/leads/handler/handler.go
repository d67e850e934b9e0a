// Package handler exposes the leads module over HTTP.
package handler

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"whatsapp_crm_backend/internal/leads/repository"
	"whatsapp_crm_backend/internal/leads/service"
	"whatsapp_crm_backend/internal/leads/transport"
	"whatsapp_crm_backend/platform/httpkit"
	"whatsapp_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc     *service.Service
	capture *service.CaptureService
	val     *validator.Validator
}

func New(svc *service.Service, capture *service.CaptureService, val *validator.Validator) *Handler {
	return &Handler{svc: svc, capture: capture, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/stats/summary", h.Stats)
	rg.GET("/bulk/export", h.Export)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/auto-capture/:conversationId", h.AutoCapture)
	// Sweeping a tenant's pipeline is disruptive enough to gate on role.
	rg.POST("/maintenance/mark-stale", httpkit.RequireRole("admin"), h.MarkStale)
}

func (h *Handler) List(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.List(c.Request.Context(), id.AccountID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Stats(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), id.AccountID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.StatsEnvelope{Stats: stats})
}

func (h *Handler) GetByID(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	lead, err := h.svc.GetDetail(c.Request.Context(), leadID, id.AccountID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.LeadDetailEnvelope{Lead: lead})
}

func (h *Handler) Create(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), id.AccountID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.LeadEnvelope{Lead: lead})
}

func (h *Handler) Update(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), leadID, id.AccountID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.LeadEnvelope{Lead: lead})
}

func (h *Handler) Delete(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), leadID, id.AccountID())) {
		return
	}
	httpkit.OK(c, gin.H{"deleted": true})
}

// AutoCapture runs the capture workflow for a conversation on demand. The
// response lead is null when the conversation has no inbound messages.
func (h *Handler) AutoCapture(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	conversationID, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	lead, err := h.capture.Capture(c.Request.Context(), id.AccountID(), conversationID)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.CaptureResponse{}
	if lead != nil {
		mapped := service.ToLeadResponse(*lead)
		resp.Lead = &mapped
	}
	httpkit.OK(c, resp)
}

func (h *Handler) MarkStale(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	marked, err := h.svc.MarkStale(c.Request.Context(), id.AccountID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.MarkStaleResponse{MarkedCount: marked})
}

var exportHeader = []string{"name", "email", "phone", "company", "intent", "score", "status", "message_count", "created_at"}

// Export streams the tenant's leads as a CSV attachment.
func (h *Handler) Export(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.ExportLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	rows, err := h.svc.Export(c.Request.Context(), id.AccountID(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=leads.csv")

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(exportHeader); err != nil {
		return
	}
	for _, row := range rows {
		if err := writer.Write(csvRecord(row)); err != nil {
			return
		}
	}
	writer.Flush()
}

func csvRecord(row repository.ExportRow) []string {
	return []string{
		row.Name,
		row.Email,
		row.Phone,
		row.Company,
		string(row.Intent),
		strconv.Itoa(row.Score),
		string(row.Status),
		strconv.Itoa(row.MessageCount),
		row.CreatedAt.UTC().Format(time.RFC3339),
	}
}
