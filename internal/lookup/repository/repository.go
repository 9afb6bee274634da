// Package repository stores the blocklist and spam reports.
package repository

import (
	"context"
	"fmt"

	"callerid_backend/platform/db"
)

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool db.Querier
}

// New creates a new number status repository.
func New(pool db.Querier) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Status reads block and spam state in one round trip.
func (r *Repo) Status(ctx context.Context, normalized string) (Status, error) {
	query := `
		SELECT
			EXISTS (SELECT 1 FROM blocked_numbers WHERE normalized_number = $1),
			(SELECT COUNT(*) FROM spam_reports WHERE normalized_number = $1)`

	var s Status
	if err := r.pool.QueryRow(ctx, query, normalized).Scan(&s.Blocked, &s.SpamReports); err != nil {
		return Status{}, fmt.Errorf("read number status: %w", err)
	}
	return s, nil
}

// Block adds the number to the blocklist. Blocking twice is a no-op.
func (r *Repo) Block(ctx context.Context, normalized string) error {
	query := `
		INSERT INTO blocked_numbers (normalized_number)
		VALUES ($1)
		ON CONFLICT (normalized_number) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, normalized); err != nil {
		return fmt.Errorf("block number: %w", err)
	}
	return nil
}

// Unblock removes the number from the blocklist.
func (r *Repo) Unblock(ctx context.Context, normalized string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM blocked_numbers WHERE normalized_number = $1`, normalized); err != nil {
		return fmt.Errorf("unblock number: %w", err)
	}
	return nil
}

// ReportSpam records a report and returns the new report count.
func (r *Repo) ReportSpam(ctx context.Context, normalized string) (int, error) {
	query := `
		WITH inserted AS (
			INSERT INTO spam_reports (normalized_number) VALUES ($1) RETURNING 1
		)
		SELECT (SELECT COUNT(*) FROM spam_reports WHERE normalized_number = $1) + (SELECT COUNT(*) FROM inserted)`

	var count int
	if err := r.pool.QueryRow(ctx, query, normalized).Scan(&count); err != nil {
		return 0, fmt.Errorf("report spam: %w", err)
	}
	return count, nil
}
