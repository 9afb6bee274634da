// Package directory provides the HTTP client for the remote contact directory.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"callerid_backend/internal/lookup/consolidate"
	"callerid_backend/platform/logger"
	"callerid_backend/platform/phone"
	"callerid_backend/platform/sanitize"
)

// Client queries the directory's number lookup endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        *logger.Logger
}

// New creates a directory client rooted at baseURL.
func New(baseURL, apiKey string, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		log:        log,
	}
}

func (c *Client) Source() consolidate.Source { return consolidate.SourceRemoteContact }

// Lookup asks the directory for entries under the number's E.164 form.
// Numbers that do not parse are never sent.
func (c *Client) Lookup(ctx context.Context, number phone.CanonicalNumber) ([]consolidate.Record, error) {
	if !number.Valid {
		return nil, nil
	}

	params := url.Values{}
	params.Set("number", number.E164)
	params.Set("region", phone.Region(number))
	reqURL := fmt.Sprintf("%s/v1/lookup?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		c.log.Error("directory unauthorized", "status", resp.StatusCode)
		return nil, fmt.Errorf("unauthorized: invalid API key")
	default:
		return nil, fmt.Errorf("upstream error: status %d", resp.StatusCode)
	}

	var body apiLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	records := make([]consolidate.Record, 0, len(body.Results))
	for _, entry := range body.Results {
		records = append(records, entry.toRecord())
	}
	return records, nil
}

type apiLookupResponse struct {
	Results []apiEntry `json:"results"`
}

type apiEntry struct {
	DisplayName       string `json:"displayName"`
	Label             string `json:"label"`
	PhotoURI          string `json:"photoUri"`
	PhotoThumbnailURI string `json:"photoThumbnailUri"`
	ContactID         string `json:"contactId"`
	LookupKey         string `json:"lookupKey"`
	DirectoryID       string `json:"directoryId"`
}

func (e apiEntry) toRecord() consolidate.Record {
	return consolidate.Record{
		Source:            consolidate.SourceRemoteContact,
		Name:              sanitize.Name(e.DisplayName),
		Label:             e.Label,
		PhotoURI:          e.PhotoURI,
		PhotoThumbnailURI: e.PhotoThumbnailURI,
		ContactID:         e.ContactID,
		LookupKey:         e.LookupKey,
		DirectoryID:       e.DirectoryID,
	}
}
