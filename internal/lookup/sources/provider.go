// Package sources defines the identity sources a lookup fans out to.
package sources

import (
	"context"
	"strconv"

	"callerid_backend/internal/lookup/consolidate"
	"callerid_backend/platform/phone"
)

// Provider returns the identity records one source holds for a number.
// Returning no records and no error means the source does not know the number.
type Provider interface {
	Source() consolidate.Source
	Lookup(ctx context.Context, number phone.CanonicalNumber) ([]consolidate.Record, error)
}

// ContactFinder returns stored contact numbers that may belong to number.
// Implementations may over-match; the local source filters with phone.IsMatch.
type ContactFinder interface {
	FindCandidates(ctx context.Context, number phone.CanonicalNumber) ([]ContactNumber, error)
}

// ContactNumber is one stored number of a local contact.
type ContactNumber struct {
	ContactID         string
	DisplayName       string
	RawNumber         string
	CountryISO        string
	Label             string
	LookupKey         string
	PhotoURI          string
	PhotoThumbnailURI string
	PhotoID           int64
	DirectoryID       int64
}

// Local looks numbers up in the user's own contacts.
type Local struct {
	finder ContactFinder
}

// NewLocal creates the local contacts source.
func NewLocal(finder ContactFinder) *Local {
	return &Local{finder: finder}
}

func (l *Local) Source() consolidate.Source { return consolidate.SourceLocalContact }

// Lookup returns the first stored contact whose number matches.
func (l *Local) Lookup(ctx context.Context, number phone.CanonicalNumber) ([]consolidate.Record, error) {
	if number.IsEmpty() {
		return nil, nil
	}
	stored, err := l.finder.FindCandidates(ctx, number)
	if err != nil {
		return nil, err
	}

	for _, cn := range stored {
		if !phone.IsMatch(number, phone.Parse(cn.RawNumber, cn.CountryISO)) {
			continue
		}
		return []consolidate.Record{{
			Source:            consolidate.SourceLocalContact,
			Name:              cn.DisplayName,
			Label:             cn.Label,
			ContactID:         cn.ContactID,
			LookupKey:         cn.LookupKey,
			PhotoURI:          cn.PhotoURI,
			PhotoThumbnailURI: cn.PhotoThumbnailURI,
			PhotoID:           cn.PhotoID,
			DirectoryID:       formatDirectoryID(cn.DirectoryID),
		}}, nil
	}
	return nil, nil
}

func formatDirectoryID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
