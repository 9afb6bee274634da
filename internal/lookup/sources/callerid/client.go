// Package callerid provides the HTTP client for the network caller-ID service.
// The service bills per request, so calls go through a token bucket.
package callerid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"callerid_backend/internal/lookup/consolidate"
	"callerid_backend/platform/apperr"
	"callerid_backend/platform/logger"
	"callerid_backend/platform/phone"
	"callerid_backend/platform/sanitize"

	"golang.org/x/time/rate"
)

// Client queries the caller-ID service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	log        *logger.Logger
}

// New creates a caller-ID client allowing perSecond requests with a burst of
// twice that. A non-positive perSecond disables limiting.
func New(baseURL, apiKey string, perSecond float64, log *logger.Logger) *Client {
	limit := rate.Inf
	burst := 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = max(1, int(2*perSecond))
	}
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(limit, burst),
		log:        log,
	}
}

func (c *Client) Source() consolidate.Source { return consolidate.SourceCallerID }

// Lookup fetches the caller-ID entry for a valid number. When the request
// budget would not free up before ctx expires it fails fast with a rate
// limit error instead of waiting.
func (c *Client) Lookup(ctx context.Context, number phone.CanonicalNumber) ([]consolidate.Record, error) {
	if !number.Valid {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperr.RateLimited("caller-id request budget exhausted").WithOp("callerid.Lookup")
	}

	reqURL := fmt.Sprintf("%s/v1/caller-id/%s", c.baseURL, url.PathEscape(number.E164))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusNoContent:
		return nil, nil
	case http.StatusTooManyRequests:
		c.log.Warn("caller-id quota exceeded upstream")
		return nil, apperr.RateLimited("caller-id quota exceeded").WithOp("callerid.Lookup")
	default:
		return nil, fmt.Errorf("upstream error: status %d", resp.StatusCode)
	}

	var entry apiCallerID
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if strings.TrimSpace(entry.Name) == "" && entry.PhotoURI == "" {
		return nil, nil
	}
	return []consolidate.Record{entry.toRecord()}, nil
}

type apiCallerID struct {
	Name              string `json:"name"`
	PhotoURI          string `json:"photoUri"`
	PhotoThumbnailURI string `json:"photoThumbnailUri"`
	Type              string `json:"type"`
	PersonID          string `json:"personId"`
}

func (e apiCallerID) toRecord() consolidate.Record {
	return consolidate.Record{
		Source:            consolidate.SourceCallerID,
		Name:              sanitize.Name(e.Name),
		PhotoURI:          e.PhotoURI,
		PhotoThumbnailURI: e.PhotoThumbnailURI,
		InfoType:          consolidate.ParseInfoType(e.Type),
		PersonID:          e.PersonID,
	}
}
