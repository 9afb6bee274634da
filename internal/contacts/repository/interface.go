// Package repository stores the local contacts used for caller identity.
package repository

import (
	"context"
	"time"

	"callerid_backend/internal/lookup/sources"

	"github.com/google/uuid"
)

// Contact is a stored contact with its numbers.
type Contact struct {
	ID                uuid.UUID
	DisplayName       string
	LookupKey         string
	PhotoURI          string
	PhotoThumbnailURI string
	PhotoID           int64
	DirectoryID       int64
	CreatedAt         time.Time
	Numbers           []Number
}

// Number is one number of a contact. NormalizedNumber and MinMatch are
// derived from RawNumber and CountryISO when the contact is created.
type Number struct {
	ID               uuid.UUID
	RawNumber        string
	CountryISO       string
	NormalizedNumber string
	MinMatch         string
	Label            string
}

// Reader is the read side used by search and the lookup source.
type Reader interface {
	List(ctx context.Context, limit int) ([]Contact, error)
	sources.ContactFinder
}

// Writer creates contacts.
type Writer interface {
	Create(ctx context.Context, c Contact) error
}

// Repository combines Reader and Writer.
type Repository interface {
	Reader
	Writer
}
