package callerid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"callerid_backend/internal/lookup/consolidate"
	"callerid_backend/platform/apperr"
	"callerid_backend/platform/logger"
	"callerid_backend/platform/phone"
)

func TestLookupBusiness(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/caller-id/+442079460000" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing bearer token")
		}
		_, _ = w.Write([]byte(`{"name":"Pizza Palace","type":"nearby_business","personId":"p-9","photoUri":"https://cid/p.png"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key", 0, logger.Nop())
	records, err := c.Lookup(context.Background(), phone.Parse("020 7946 0000", "GB"))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.Source != consolidate.SourceCallerID || r.Name != "Pizza Palace" || r.InfoType != consolidate.InfoTypeNearbyBusiness || r.PersonID != "p-9" {
		t.Fatalf("unexpected record %+v", r)
	}
}

func TestLookupEmptyEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"  "}`))
	}))
	defer srv.Close()

	records, err := New(srv.URL, "key", 0, logger.Nop()).Lookup(context.Background(), phone.Parse("+16502530000", "US"))
	if err != nil || len(records) != 0 {
		t.Fatalf("expected nothing, got %v %v", records, err)
	}
}

func TestLookupUpstreamQuota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "key", 0, logger.Nop()).Lookup(context.Background(), phone.Parse("+16502530000", "US"))
	if !apperr.Is(err, apperr.KindRateLimited) {
		t.Fatalf("expected rate limited error, got %v", err)
	}
}

func TestLookupRespectsLocalBudget(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"name":"Acme"}`))
	}))
	defer srv.Close()

	// One request per minute with a burst of one.
	c := New(srv.URL, "key", 1.0/60, logger.Nop())
	number := phone.Parse("+16502530000", "US")

	if _, err := c.Lookup(context.Background(), number); err != nil {
		t.Fatalf("first lookup: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Lookup(ctx, number)
	if !apperr.Is(err, apperr.KindRateLimited) {
		t.Fatalf("expected local rate limit, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one upstream request, got %d", hits.Load())
	}
}
