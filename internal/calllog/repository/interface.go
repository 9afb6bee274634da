// Package repository stores the call log and the lookup history that
// remembers the last consolidated identity of every number.
package repository

import (
	"context"
	"time"

	"callerid_backend/internal/lookup/consolidate"

	"github.com/google/uuid"
)

// Call is one call log row.
type Call struct {
	ID               uuid.UUID
	RawNumber        string
	CountryISO       string
	NormalizedNumber string
	Presentation     string
	CallType         string
	Features         uint32
	AccountComponent string
	AccountID        string
	AccountLabel     string
	VoicemailTag     string
	GeocodedLocation string
	Read             bool
	OccurredAt       time.Time
}

// HistoryEntry is the last known identity of a number.
type HistoryEntry struct {
	NormalizedNumber string
	Candidates       consolidate.Candidates
	UpdatedAt        time.Time
}

// CallStore reads and writes call log rows.
type CallStore interface {
	InsertCall(ctx context.Context, c Call) error
	ListCalls(ctx context.Context, limit int) ([]Call, error)
	GetCall(ctx context.Context, id uuid.UUID) (Call, error)
	MarkRead(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// HistoryStore reads and writes the lookup history.
type HistoryStore interface {
	UpsertHistory(ctx context.Context, entries []HistoryEntry) error
	GetHistory(ctx context.Context, numbers []string) (map[string]consolidate.Candidates, error)
}

// HistoryPruner removes stale lookup history.
type HistoryPruner interface {
	DeleteHistoryBefore(ctx context.Context, before time.Time) (int64, error)
}

// Repository combines CallStore and HistoryStore.
type Repository interface {
	CallStore
	HistoryStore
}
