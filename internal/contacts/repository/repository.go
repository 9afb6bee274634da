package repository

import (
	"context"
	"fmt"

	"callerid_backend/internal/lookup/sources"
	"callerid_backend/platform/db"
	"callerid_backend/platform/phone"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool db.Querier
}

// New creates a new contacts repository.
func New(pool db.Querier) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create inserts the contact and its numbers in one batch, which Postgres
// runs as a single implicit transaction.
func (r *Repo) Create(ctx context.Context, c Contact) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO contacts (id, display_name, lookup_key, photo_uri, photo_thumbnail_uri, photo_id, directory_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.DisplayName, c.LookupKey, c.PhotoURI, c.PhotoThumbnailURI, c.PhotoID, c.DirectoryID, c.CreatedAt)
	for _, n := range c.Numbers {
		batch.Queue(`
			INSERT INTO contact_numbers (id, contact_id, raw_number, country_iso, normalized_number, min_match, label)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			n.ID, c.ID, n.RawNumber, n.CountryISO, n.NormalizedNumber, n.MinMatch, n.Label)
	}

	results := r.pool.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("create contact: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

// List returns contacts ordered by name, each with all of its numbers.
func (r *Repo) List(ctx context.Context, limit int) ([]Contact, error) {
	query := `
		SELECT c.id, c.display_name, c.lookup_key, c.photo_uri, c.photo_thumbnail_uri,
			c.photo_id, c.directory_id, c.created_at,
			n.id, n.raw_number, n.country_iso, n.normalized_number, n.min_match, n.label
		FROM (
			SELECT * FROM contacts ORDER BY display_name, id LIMIT $1
		) c
		LEFT JOIN contact_numbers n ON n.contact_id = c.id
		ORDER BY c.display_name, c.id, n.label, n.id`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		var (
			c        Contact
			numberID *uuid.UUID
			raw      *string
			country  *string
			norm     *string
			minMatch *string
			label    *string
		)
		if err := rows.Scan(
			&c.ID, &c.DisplayName, &c.LookupKey, &c.PhotoURI, &c.PhotoThumbnailURI,
			&c.PhotoID, &c.DirectoryID, &c.CreatedAt,
			&numberID, &raw, &country, &norm, &minMatch, &label,
		); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}

		if len(contacts) == 0 || contacts[len(contacts)-1].ID != c.ID {
			contacts = append(contacts, c)
		}
		if numberID != nil {
			last := &contacts[len(contacts)-1]
			last.Numbers = append(last.Numbers, Number{
				ID:               *numberID,
				RawNumber:        *raw,
				CountryISO:       *country,
				NormalizedNumber: *norm,
				MinMatch:         *minMatch,
				Label:            *label,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return contacts, nil
}

// FindCandidates returns stored numbers equal to the normalized form or
// sharing its trailing digits. The caller decides which ones really match.
func (r *Repo) FindCandidates(ctx context.Context, number phone.CanonicalNumber) ([]sources.ContactNumber, error) {
	normalized := phone.Normalize(number)
	minMatch := phone.MinMatch(number)
	if normalized == "" && minMatch == "" {
		return nil, nil
	}

	query := `
		SELECT c.id, c.display_name, n.raw_number, n.country_iso, n.label, c.lookup_key,
			c.photo_uri, c.photo_thumbnail_uri, c.photo_id, c.directory_id
		FROM contact_numbers n
		JOIN contacts c ON c.id = n.contact_id
		WHERE n.normalized_number = $1 OR ($2 <> '' AND n.min_match = $2)
		ORDER BY (n.normalized_number = $1) DESC, c.created_at, n.id
		LIMIT 50`

	rows, err := r.pool.Query(ctx, query, normalized, minMatch)
	if err != nil {
		return nil, fmt.Errorf("find contact numbers: %w", err)
	}
	defer rows.Close()

	var results []sources.ContactNumber
	for rows.Next() {
		var (
			cn sources.ContactNumber
			id uuid.UUID
		)
		if err := rows.Scan(&id, &cn.DisplayName, &cn.RawNumber, &cn.CountryISO, &cn.Label, &cn.LookupKey,
			&cn.PhotoURI, &cn.PhotoThumbnailURI, &cn.PhotoID, &cn.DirectoryID); err != nil {
			return nil, fmt.Errorf("scan contact number: %w", err)
		}
		cn.ContactID = id.String()
		results = append(results, cn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact numbers: %w", err)
	}
	return results, nil
}
