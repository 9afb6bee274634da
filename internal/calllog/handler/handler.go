package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"callerid_backend/internal/calllog/service"
	"callerid_backend/internal/calllog/transport"
	"callerid_backend/platform/httpkit"
	"callerid_backend/platform/validator"
)

// Handler handles HTTP requests for the call log.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid call ID"
)

// New creates a new call log handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Record adds a call to the call log.
// POST /api/v1/calllog
func (h *Handler) Record(c *gin.Context) {
	var req transport.RecordCallRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.Record(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// List returns the coalesced call log.
// GET /api/v1/calllog
func (h *Handler) List(c *gin.Context) {
	var req transport.ListCallsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.List(c.Request.Context(), req, c.GetHeader("Accept-Language"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Sheet returns the bottom-sheet text of a call.
// GET /api/v1/calllog/:id/sheet
func (h *Handler) Sheet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.SheetRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.Sheet(c.Request.Context(), id, req, c.GetHeader("Accept-Language"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// MarkRead flags calls as read.
// POST /api/v1/calllog/read
func (h *Handler) MarkRead(c *gin.Context) {
	var req transport.MarkReadRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.MarkRead(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
