package transport

import (
	"time"

	"github.com/google/uuid"
)

// RecordCallRequest adds a call to the call log.
type RecordCallRequest struct {
	Number       string     `json:"number" validate:"omitempty,max=64"`
	CountryISO   string     `json:"countryIso,omitempty" validate:"omitempty,region"`
	Presentation string     `json:"presentation,omitempty" validate:"omitempty,oneof=allowed restricted unknown payphone"`
	CallType     string     `json:"callType" validate:"required,oneof=incoming outgoing missed voicemail rejected blocked answered_externally"`
	Features     uint32     `json:"features,omitempty"`
	Account      *Account   `json:"account,omitempty"`
	VoicemailTag string     `json:"voicemailTag,omitempty" validate:"omitempty,max=200"`
	Read         bool       `json:"read"`
	OccurredAt   *time.Time `json:"occurredAt,omitempty"`
}

// Account identifies the phone account of a call.
type Account struct {
	ComponentName string `json:"componentName" validate:"max=200"`
	ID            string `json:"id" validate:"max=200"`
	Label         string `json:"label,omitempty" validate:"max=100"`
}

// ListCallsRequest is bound from the query string.
type ListCallsRequest struct {
	Limit    int    `form:"limit" validate:"omitempty,min=1,max=500"`
	Timezone string `form:"tz" validate:"omitempty,timezone"`
}

// SheetRequest is bound from the query string.
type SheetRequest struct {
	Timezone string `form:"tz" validate:"omitempty,timezone"`
}

// MarkReadRequest flags calls as read.
type MarkReadRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=500"`
}

// CallResponse is a stored call.
type CallResponse struct {
	ID               uuid.UUID `json:"id"`
	Number           string    `json:"number"`
	NormalizedNumber string    `json:"normalizedNumber"`
	DisplayNumber    string    `json:"displayNumber"`
	Presentation     string    `json:"presentation"`
	CallType         string    `json:"callType"`
	GeocodedLocation string    `json:"geocodedLocation,omitempty"`
	Read             bool      `json:"read"`
	OccurredAt       time.Time `json:"occurredAt"`
}

// EntryResponse is one coalesced call log entry, ready to display.
type EntryResponse struct {
	ID            uuid.UUID   `json:"id"`
	CallIDs       []uuid.UUID `json:"callIds"`
	Count         int         `json:"count"`
	PrimaryText   string      `json:"primaryText"`
	SecondaryText string      `json:"secondaryText"`
	CallTypes     []string    `json:"callTypes"`
	Unread        bool        `json:"unread"`
	Bucket        string      `json:"bucket"`
	Number        string      `json:"number"`
	DisplayNumber string      `json:"displayNumber"`
	PhotoURI      string      `json:"photoUri,omitempty"`
	IsBlocked     bool        `json:"isBlocked"`
	IsSpam        bool        `json:"isSpam"`
	IsBusiness    bool        `json:"isBusiness"`
	OccurredAt    time.Time   `json:"occurredAt"`
}

// ListCallsResponse wraps call log entries.
type ListCallsResponse struct {
	Entries []EntryResponse `json:"entries"`
}

// SheetResponse is the text shown in a call's bottom sheet.
type SheetResponse struct {
	ID                 uuid.UUID `json:"id"`
	PrimaryText        string    `json:"primaryText"`
	SecondaryText      string    `json:"secondaryText"`
	CanReportAsInvalid bool      `json:"canReportAsInvalid"`
}

// MarkReadResponse reports how many calls changed.
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}
