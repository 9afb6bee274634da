package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"callerid_backend/internal/calllog/repository"
	"callerid_backend/internal/calllog/transport"
	"callerid_backend/internal/events"
	"callerid_backend/internal/lookup/consolidate"
	"callerid_backend/platform/apperr"
	"callerid_backend/platform/i18n"
	"callerid_backend/platform/logger"

	"github.com/google/uuid"
)

var now = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

type memoryRepo struct {
	mu      sync.Mutex
	calls   []repository.Call
	history map[string]consolidate.Candidates
}

func (r *memoryRepo) InsertCall(_ context.Context, c repository.Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return nil
}

func (r *memoryRepo) ListCalls(_ context.Context, limit int) ([]repository.Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	calls := append([]repository.Call(nil), r.calls...)
	sort.Slice(calls, func(i, j int) bool { return calls[i].OccurredAt.After(calls[j].OccurredAt) })
	if len(calls) > limit {
		calls = calls[:limit]
	}
	return calls, nil
}

func (r *memoryRepo) GetCall(_ context.Context, id uuid.UUID) (repository.Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.calls {
		if c.ID == id {
			return c, nil
		}
	}
	return repository.Call{}, apperr.NotFound("call not found")
}

func (r *memoryRepo) MarkRead(_ context.Context, ids []uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.calls {
		for _, id := range ids {
			if r.calls[i].ID == id && !r.calls[i].Read {
				r.calls[i].Read = true
				n++
			}
		}
	}
	return n, nil
}

func (r *memoryRepo) UpsertHistory(_ context.Context, entries []repository.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		r.history[e.NormalizedNumber] = e.Candidates
	}
	return nil
}

func (r *memoryRepo) GetHistory(_ context.Context, numbers []string) (map[string]consolidate.Candidates, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]consolidate.Candidates)
	for _, n := range numbers {
		if c, ok := r.history[n]; ok {
			out[n] = c
		}
	}
	return out, nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func newService(t *testing.T) (*Service, *memoryRepo, *recordingBus) {
	t.Helper()
	bundle, err := i18n.Load()
	if err != nil {
		t.Fatalf("load strings: %v", err)
	}
	repo := &memoryRepo{history: map[string]consolidate.Candidates{
		"+16502530000": {Local: &consolidate.Record{Source: consolidate.SourceLocalContact, Name: "Alice", Label: "Mobile"}},
	}}
	bus := &recordingBus{}
	svc := New(repo, bus, bundle, nil, "US", logger.Nop())
	svc.now = func() time.Time { return now }
	return svc, repo, bus
}

func at(ago time.Duration) *time.Time {
	ts := now.Add(-ago)
	return &ts
}

func record(t *testing.T, svc *Service, req transport.RecordCallRequest) transport.CallResponse {
	t.Helper()
	resp, err := svc.Record(context.Background(), req)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	return resp
}

func TestRecordNormalizesAndPublishes(t *testing.T) {
	svc, repo, bus := newService(t)

	resp := record(t, svc, transport.RecordCallRequest{Number: "(650) 253-0000", CallType: "incoming", OccurredAt: at(time.Minute)})
	if resp.NormalizedNumber != "+16502530000" || resp.Presentation != "allowed" {
		t.Fatalf("unexpected call %+v", resp)
	}
	if repo.calls[0].CountryISO != "US" {
		t.Fatalf("expected default region, got %q", repo.calls[0].CountryISO)
	}
	if len(bus.events) != 1 {
		t.Fatalf("expected one event, got %d", len(bus.events))
	}
	recorded, ok := bus.events[0].(events.CallRecorded)
	if !ok || recorded.CallID != resp.ID || recorded.NormalizedNumber != "+16502530000" {
		t.Fatalf("unexpected event %+v", bus.events[0])
	}
}

func TestRecordWithoutNumberIsUnknown(t *testing.T) {
	svc, _, bus := newService(t)

	resp := record(t, svc, transport.RecordCallRequest{CallType: "missed"})
	if resp.Presentation != "unknown" {
		t.Fatalf("expected unknown presentation, got %q", resp.Presentation)
	}
	resp = record(t, svc, transport.RecordCallRequest{Number: "6502530000", Presentation: "restricted", CallType: "missed"})
	if resp.Number != "" {
		t.Fatal("restricted calls must not keep a number")
	}
	if len(bus.events) != 0 {
		t.Fatalf("calls without a number are not looked up, got %d events", len(bus.events))
	}
}

func TestRecordRejectsUnknownCallType(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Record(context.Background(), transport.RecordCallRequest{Number: "6502530000", CallType: "teleport"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListCoalescesAndFormats(t *testing.T) {
	svc, _, _ := newService(t)

	record(t, svc, transport.RecordCallRequest{Number: "+1 650 253 0000", CallType: "missed", OccurredAt: at(10 * time.Minute)})
	record(t, svc, transport.RecordCallRequest{Number: "650-253-0000", CallType: "incoming", Read: true, OccurredAt: at(5 * time.Minute)})
	record(t, svc, transport.RecordCallRequest{Presentation: "restricted", CallType: "missed", Read: true, OccurredAt: at(30 * time.Minute)})

	resp, err := svc.List(context.Background(), transport.ListCallsRequest{}, "en-US")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(resp.Entries))
	}

	alice := resp.Entries[0]
	if alice.PrimaryText != "Alice (2)" || alice.SecondaryText != "Mobile • 5 min ago" {
		t.Fatalf("unexpected text %q / %q", alice.PrimaryText, alice.SecondaryText)
	}
	if alice.Count != 2 || !alice.Unread || alice.Bucket != "today" {
		t.Fatalf("unexpected entry %+v", alice)
	}
	if len(alice.CallTypes) != 2 || alice.CallTypes[0] != "incoming" || alice.CallTypes[1] != "missed" {
		t.Fatalf("unexpected call types %v", alice.CallTypes)
	}

	private := resp.Entries[1]
	if private.PrimaryText != "Private number" || private.SecondaryText != "30 min ago" {
		t.Fatalf("unexpected text %q / %q", private.PrimaryText, private.SecondaryText)
	}
}

func TestListIsLocalized(t *testing.T) {
	svc, _, _ := newService(t)

	record(t, svc, transport.RecordCallRequest{Presentation: "restricted", CallType: "missed", OccurredAt: at(30 * time.Second)})

	resp, err := svc.List(context.Background(), transport.ListCallsRequest{}, "nl-NL,nl;q=0.9")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Entries[0].PrimaryText != "Privénummer" {
		t.Fatalf("expected Dutch text, got %q", resp.Entries[0].PrimaryText)
	}
}

func TestListRejectsUnknownTimezone(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.List(context.Background(), transport.ListCallsRequest{Timezone: "Mars/Olympus"}, "")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSheet(t *testing.T) {
	svc, _, _ := newService(t)

	call := record(t, svc, transport.RecordCallRequest{Number: "650-253-0000", CallType: "incoming", OccurredAt: at(time.Hour)})

	sheet, err := svc.Sheet(context.Background(), call.ID, transport.SheetRequest{}, "en")
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}
	if sheet.PrimaryText != "Alice" || sheet.SecondaryText != "Mobile • (650) 253-0000" {
		t.Fatalf("unexpected sheet %+v", sheet)
	}

	if _, err := svc.Sheet(context.Background(), uuid.New(), transport.SheetRequest{}, "en"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMarkRead(t *testing.T) {
	svc, _, _ := newService(t)

	call := record(t, svc, transport.RecordCallRequest{Number: "650-253-0000", CallType: "missed"})
	resp, err := svc.MarkRead(context.Background(), transport.MarkReadRequest{IDs: []uuid.UUID{call.ID}})
	if err != nil || resp.Updated != 1 {
		t.Fatalf("expected one update, got %+v %v", resp, err)
	}
}
