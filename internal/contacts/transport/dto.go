package transport

import "github.com/google/uuid"

// CreateContactRequest contains data for creating a contact.
type CreateContactRequest struct {
	DisplayName       string                `json:"displayName" validate:"required,min=1,max=200"`
	LookupKey         string                `json:"lookupKey,omitempty" validate:"omitempty,max=200"`
	PhotoURI          string                `json:"photoUri,omitempty" validate:"omitempty,max=1024"`
	PhotoThumbnailURI string                `json:"photoThumbnailUri,omitempty" validate:"omitempty,max=1024"`
	PhotoID           int64                 `json:"photoId,omitempty" validate:"min=0"`
	DirectoryID       int64                 `json:"directoryId,omitempty" validate:"min=0"`
	Numbers           []CreateNumberRequest `json:"numbers" validate:"required,min=1,max=20,dive"`
}

// CreateNumberRequest is one number of a new contact.
type CreateNumberRequest struct {
	Number     string `json:"number" validate:"required,max=64,dialstring"`
	CountryISO string `json:"countryIso,omitempty" validate:"omitempty,region"`
	Label      string `json:"label,omitempty" validate:"omitempty,max=50"`
}

// SearchContactsRequest is bound from the query string.
type SearchContactsRequest struct {
	Query string `form:"q" validate:"required,max=64"`
	Limit int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

// ContactNumberResponse is one number of a contact.
type ContactNumberResponse struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
	Display    string `json:"display"`
	Label      string `json:"label,omitempty"`
}

// ContactResponse represents a contact in API responses.
type ContactResponse struct {
	ID                uuid.UUID               `json:"id"`
	DisplayName       string                  `json:"displayName"`
	LookupKey         string                  `json:"lookupKey,omitempty"`
	PhotoURI          string                  `json:"photoUri,omitempty"`
	PhotoThumbnailURI string                  `json:"photoThumbnailUri,omitempty"`
	Numbers           []ContactNumberResponse `json:"numbers"`
}

// HighlightResponse marks the matched part of the display name, in rune
// offsets. Initials is set when the query matched word initials.
type HighlightResponse struct {
	Start    int   `json:"start"`
	End      int   `json:"end"`
	Initials []int `json:"initials,omitempty"`
}

// SearchResultResponse is one search hit.
type SearchResultResponse struct {
	Contact       ContactResponse    `json:"contact"`
	MatchedBy     string             `json:"matchedBy"`
	Highlight     *HighlightResponse `json:"highlight,omitempty"`
	MatchedNumber string             `json:"matchedNumber,omitempty"`
}

// SearchContactsResponse wraps search hits.
type SearchContactsResponse struct {
	Items []SearchResultResponse `json:"items"`
	Total int                    `json:"total"`
}
