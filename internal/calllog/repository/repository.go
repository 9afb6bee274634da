package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"callerid_backend/internal/lookup/consolidate"
	"callerid_backend/platform/apperr"
	"callerid_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool db.Querier
}

// New creates a new call log repository.
func New(pool db.Querier) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var (
	_ Repository    = (*Repo)(nil)
	_ HistoryPruner = (*Repo)(nil)
)

const callColumns = `id, raw_number, country_iso, normalized_number, presentation, call_type, features,
	account_component, account_id, account_label, voicemail_tag, geocoded_location, is_read, occurred_at`

// InsertCall stores a call log row.
func (r *Repo) InsertCall(ctx context.Context, c Call) error {
	query := `INSERT INTO call_log (` + callColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.RawNumber, c.CountryISO, c.NormalizedNumber, c.Presentation, c.CallType, int32(c.Features),
		c.AccountComponent, c.AccountID, c.AccountLabel, c.VoicemailTag, c.GeocodedLocation, c.Read, c.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert call: %w", err)
	}
	return nil
}

// ListCalls returns the newest calls first.
func (r *Repo) ListCalls(ctx context.Context, limit int) ([]Call, error) {
	query := `SELECT ` + callColumns + ` FROM call_log ORDER BY occurred_at DESC, id LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	var calls []Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}
	return calls, nil
}

// GetCall returns one call, or apperr.NotFound.
func (r *Repo) GetCall(ctx context.Context, id uuid.UUID) (Call, error) {
	query := `SELECT ` + callColumns + ` FROM call_log WHERE id = $1`

	c, err := scanCall(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Call{}, apperr.NotFound("call not found")
	}
	if err != nil {
		return Call{}, fmt.Errorf("get call: %w", err)
	}
	return c, nil
}

// MarkRead flags the given calls as read and returns how many changed.
func (r *Repo) MarkRead(ctx context.Context, ids []uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE call_log SET is_read = true WHERE id = ANY($1) AND NOT is_read`, ids)
	if err != nil {
		return 0, fmt.Errorf("mark calls read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanCall(row pgx.Row) (Call, error) {
	var (
		c        Call
		features int32
	)
	err := row.Scan(&c.ID, &c.RawNumber, &c.CountryISO, &c.NormalizedNumber, &c.Presentation, &c.CallType, &features,
		&c.AccountComponent, &c.AccountID, &c.AccountLabel, &c.VoicemailTag, &c.GeocodedLocation, &c.Read, &c.OccurredAt)
	c.Features = uint32(features)
	return c, err
}

// UpsertHistory writes every entry in one batch. Older entries never
// overwrite newer ones.
func (r *Repo) UpsertHistory(ctx context.Context, entries []HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO phone_lookup_history (normalized_number, candidates, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (normalized_number) DO UPDATE
		SET candidates = EXCLUDED.candidates, updated_at = EXCLUDED.updated_at
		WHERE phone_lookup_history.updated_at <= EXCLUDED.updated_at`

	batch := &pgx.Batch{}
	for _, e := range entries {
		payload, err := json.Marshal(e.Candidates)
		if err != nil {
			return fmt.Errorf("encode history for %s: %w", e.NormalizedNumber, err)
		}
		batch.Queue(query, e.NormalizedNumber, payload, e.UpdatedAt)
	}

	results := r.pool.SendBatch(ctx, batch)
	for range entries {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("upsert history: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("upsert history: %w", err)
	}
	return nil
}

// GetHistory returns the stored candidates of every known number.
func (r *Repo) GetHistory(ctx context.Context, numbers []string) (map[string]consolidate.Candidates, error) {
	result := make(map[string]consolidate.Candidates, len(numbers))
	if len(numbers) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT normalized_number, candidates FROM phone_lookup_history WHERE normalized_number = ANY($1)`, numbers)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			number  string
			payload []byte
		)
		if err := rows.Scan(&number, &payload); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		var c consolidate.Candidates
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("decode history for %s: %w", number, err)
		}
		result[number] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return result, nil
}

// DeleteHistoryBefore drops history entries last updated before the cutoff.
func (r *Repo) DeleteHistoryBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM phone_lookup_history WHERE updated_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete stale history: %w", err)
	}
	return tag.RowsAffected(), nil
}
