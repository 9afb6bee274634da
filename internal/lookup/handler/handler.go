package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"callerid_backend/internal/lookup/service"
	"callerid_backend/internal/lookup/transport"
	"callerid_backend/internal/scheduler"
	"callerid_backend/platform/httpkit"
	"callerid_backend/platform/i18n"
	"callerid_backend/platform/phone"
	"callerid_backend/platform/validator"
)

// Handler handles HTTP requests for number lookups.
type Handler struct {
	svc      *service.Service
	val      *validator.Validator
	strings  *i18n.Bundle
	enqueuer scheduler.RefreshEnqueuer
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgTooManyNumbers   = "too many numbers"
	msgEnqueueFailed    = "failed to queue refresh"
)

// New creates a new lookup handler.
func New(svc *service.Service, val *validator.Validator, strings *i18n.Bundle) *Handler {
	return &Handler{svc: svc, val: val, strings: strings}
}

// Lookup resolves the identity behind one number.
// POST /api/v1/lookup
func (h *Handler) Lookup(c *gin.Context) {
	var req transport.LookupRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	loc := h.localizer(c)
	result, err := h.svc.Lookup(c.Request.Context(), service.Query{
		Raw:      req.Number,
		Region:   req.Region,
		Language: loc.Language(),
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toIdentityResponse(result, result.Number.CountryHint, loc))
}

// LookupBatch resolves up to service.MaxBatchSize numbers.
// POST /api/v1/lookup/batch
func (h *Handler) LookupBatch(c *gin.Context) {
	var req transport.BatchLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if len(req.Numbers) > service.MaxBatchSize {
		httpkit.Error(c, http.StatusBadRequest, msgTooManyNumbers, gin.H{"max": service.MaxBatchSize})
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	loc := h.localizer(c)
	items, err := h.svc.LookupBatch(c.Request.Context(), req.Numbers, req.Region, loc.Language())
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.BatchLookupResponse{Items: make([]transport.BatchItemResponse, len(items))}
	for i, item := range items {
		resp.Items[i].Input = req.Numbers[i]
		if item.Err != nil {
			resp.Items[i].Error = errorMessage(item.Err)
			continue
		}
		identity := toIdentityResponse(item.Result, item.Result.Number.CountryHint, loc)
		resp.Items[i].Identity = &identity
	}
	httpkit.OK(c, resp)
}

// Normalize parses a dial string and returns its canonical forms.
// GET /api/v1/numbers/normalize?number=&region=
func (h *Handler) Normalize(c *gin.Context) {
	var req transport.NormalizeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	number := h.svc.Parse(req.Number, req.Region)
	httpkit.OK(c, toNumberResponse(number, number.CountryHint))
}

// Match reports whether two dial strings refer to the same number.
// POST /api/v1/numbers/match
func (h *Handler) Match(c *gin.Context) {
	var req transport.MatchRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	regionA, regionB := req.RegionA, req.RegionB
	if regionA == "" {
		regionA = req.Region
	}
	if regionB == "" {
		regionB = req.Region
	}
	a := h.svc.Parse(req.A, regionA)
	b := h.svc.Parse(req.B, regionB)

	httpkit.OK(c, transport.MatchResponse{
		Match: phone.IsMatch(a, b),
		A:     toNumberResponse(a, a.CountryHint),
		B:     toNumberResponse(b, b.CountryHint),
	})
}

// Block adds a number to the blocklist.
// POST /api/v1/numbers/block
func (h *Handler) Block(c *gin.Context) {
	var req transport.NumberStatusRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	number, err := h.svc.Block(c.Request.Context(), req.Number, req.Region)
	if httpkit.HandleError(c, err) {
		return
	}
	blocked := true
	httpkit.OK(c, transport.NumberStatusResponse{Number: toNumberResponse(number, number.CountryHint), Blocked: &blocked})
}

// Unblock removes a number from the blocklist.
// POST /api/v1/numbers/unblock
func (h *Handler) Unblock(c *gin.Context) {
	var req transport.NumberStatusRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	number, err := h.svc.Unblock(c.Request.Context(), req.Number, req.Region)
	if httpkit.HandleError(c, err) {
		return
	}
	blocked := false
	httpkit.OK(c, transport.NumberStatusResponse{Number: toNumberResponse(number, number.CountryHint), Blocked: &blocked})
}

// ReportSpam records a spam report for a number.
// POST /api/v1/numbers/report-spam
func (h *Handler) ReportSpam(c *gin.Context) {
	var req transport.NumberStatusRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	count, err := h.svc.ReportSpam(c.Request.Context(), req.Number, req.Region)
	if httpkit.HandleError(c, err) {
		return
	}
	number := h.svc.Parse(req.Number, req.Region)
	httpkit.OK(c, transport.NumberStatusResponse{Number: toNumberResponse(number, number.CountryHint), SpamReportCount: &count})
}

// SetRefreshEnqueuer moves admin refreshes onto the task queue.
func (h *Handler) SetRefreshEnqueuer(e scheduler.RefreshEnqueuer) {
	h.enqueuer = e
}

// Refresh looks a number up again past the cache. With a task queue the
// refresh is queued and 202 is returned; otherwise it runs inline.
// POST /api/v1/admin/lookup/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req transport.LookupRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	if h.enqueuer != nil {
		taskID, err := h.enqueuer.EnqueueLookupRefresh(c.Request.Context(), scheduler.LookupRefreshPayload{
			Number: req.Number,
			Region: req.Region,
		})
		if err != nil {
			httpkit.Error(c, http.StatusServiceUnavailable, msgEnqueueFailed, nil)
			return
		}
		httpkit.Accepted(c, transport.RefreshQueuedResponse{TaskID: taskID})
		return
	}

	loc := h.localizer(c)
	result, err := h.svc.Refresh(c.Request.Context(), service.Query{
		Raw:      req.Number,
		Region:   req.Region,
		Language: loc.Language(),
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toIdentityResponse(result, result.Number.CountryHint, loc))
}

func (h *Handler) localizer(c *gin.Context) *i18n.Localizer {
	return h.strings.Localizer(c.GetHeader("Accept-Language"))
}
