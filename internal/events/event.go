// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"callerid_backend/internal/lookup/consolidate"
	"callerid_backend/platform/events"
	"callerid_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Lookup Domain Events
// =============================================================================

// IdentityResolved is published after a lookup consolidated fresh source
// results. Cached answers are not republished.
type IdentityResolved struct {
	BaseEvent
	NormalizedNumber string                 `json:"normalizedNumber"`
	Candidates       consolidate.Candidates `json:"candidates"`
}

func (e IdentityResolved) EventName() string { return "lookup.identity.resolved" }

// =============================================================================
// Call Log Domain Events
// =============================================================================

// CallRecorded is published when a call is added to the call log.
type CallRecorded struct {
	BaseEvent
	CallID           uuid.UUID `json:"callId"`
	RawNumber        string    `json:"rawNumber"`
	CountryISO       string    `json:"countryIso"`
	NormalizedNumber string    `json:"normalizedNumber"`
}

func (e CallRecorded) EventName() string { return "calllog.call.recorded" }
