package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"callerid_backend/internal/contacts/service"
	"callerid_backend/internal/contacts/transport"
	"callerid_backend/platform/httpkit"
	"callerid_backend/platform/validator"
)

// Handler handles HTTP requests for contacts.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new contacts handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Search filters contacts by a dialpad or text query.
// GET /api/v1/contacts/search?q=
func (h *Handler) Search(c *gin.Context) {
	var req transport.SearchContactsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	// The keypad layout follows the caller's language, e.g. Cyrillic for ru.
	result, err := h.svc.Search(c.Request.Context(), req, c.GetHeader("Accept-Language"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create stores a new contact.
// POST /api/v1/contacts
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateContactRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}
