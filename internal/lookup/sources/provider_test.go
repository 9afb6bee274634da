package sources

import (
	"context"
	"errors"
	"testing"

	"callerid_backend/internal/lookup/consolidate"
	"callerid_backend/platform/phone"
)

type stubFinder struct {
	numbers []ContactNumber
	err     error
}

func (f stubFinder) FindCandidates(context.Context, phone.CanonicalNumber) ([]ContactNumber, error) {
	return f.numbers, f.err
}

func TestLocalFiltersByNumberMatch(t *testing.T) {
	finder := stubFinder{numbers: []ContactNumber{
		{ContactID: "c1", DisplayName: "Same Suffix", RawNumber: "+44 20 7253 0000", CountryISO: "GB"},
		{ContactID: "c2", DisplayName: "Alice", RawNumber: "(650) 253-0000", CountryISO: "US", Label: "Work", DirectoryID: 3},
	}}

	records, err := NewLocal(finder).Lookup(context.Background(), phone.Parse("+1 650 253 0000", "NL"))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	r := records[0]
	if r.Source != consolidate.SourceLocalContact || r.ContactID != "c2" || r.Label != "Work" || r.DirectoryID != "3" {
		t.Fatalf("unexpected record %+v", r)
	}
}

func TestLocalPropagatesErrors(t *testing.T) {
	_, err := NewLocal(stubFinder{err: errors.New("db down")}).Lookup(context.Background(), phone.Parse("6502530000", "US"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestLocalSkipsEmptyNumbers(t *testing.T) {
	records, err := NewLocal(stubFinder{err: errors.New("must not be called")}).Lookup(context.Background(), phone.Parse("", "US"))
	if err != nil || records != nil {
		t.Fatalf("expected nothing, got %v %v", records, err)
	}
}
