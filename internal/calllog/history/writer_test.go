package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"callerid_backend/internal/calllog/repository"
	"callerid_backend/internal/events"
	"callerid_backend/internal/lookup/consolidate"
	"callerid_backend/platform/logger"
)

type historyConfig struct {
	batchSize int
	debounce  time.Duration
}

func (c historyConfig) GetHistoryBatchSize() int          { return c.batchSize }
func (c historyConfig) GetHistoryDebounce() time.Duration { return c.debounce }

type recordingStore struct {
	mu       sync.Mutex
	batches  [][]repository.HistoryEntry
	failNext bool
}

func (s *recordingStore) UpsertHistory(_ context.Context, entries []repository.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext {
		s.failNext = false
		return errors.New("connection refused")
	}
	s.batches = append(s.batches, append([]repository.HistoryEntry(nil), entries...))
	return nil
}

func (s *recordingStore) GetHistory(context.Context, []string) (map[string]consolidate.Candidates, error) {
	return nil, nil
}

func (s *recordingStore) written() [][]repository.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]repository.HistoryEntry(nil), s.batches...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func entry(number string, at time.Time, name string) repository.HistoryEntry {
	return repository.HistoryEntry{
		NormalizedNumber: number,
		UpdatedAt:        at,
		Candidates: consolidate.Candidates{
			Local: &consolidate.Record{Source: consolidate.SourceLocalContact, Name: name},
		},
	}
}

func TestWriterFlushesFullBatch(t *testing.T) {
	store := &recordingStore{}
	w := NewWriter(store, historyConfig{batchSize: 2, debounce: time.Hour}, nil, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	now := time.Now()
	w.Add(entry("+16502530000", now, "Alice"))
	w.Add(entry("+16502530001", now, "Bob"))

	waitFor(t, func() bool { return len(store.written()) == 1 })
	if got := len(store.written()[0]); got != 2 {
		t.Fatalf("expected a batch of 2, got %d", got)
	}
}

func TestWriterFlushesAfterDebounce(t *testing.T) {
	store := &recordingStore{}
	w := NewWriter(store, historyConfig{batchSize: 100, debounce: 20 * time.Millisecond}, nil, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	w.Add(entry("+16502530000", time.Now(), "Alice"))
	waitFor(t, func() bool { return len(store.written()) == 1 })
	if w.Pending() != 0 {
		t.Fatalf("expected nothing pending, got %d", w.Pending())
	}
}

func TestWriterKeepsNewestPerNumber(t *testing.T) {
	store := &recordingStore{}
	w := NewWriter(store, historyConfig{batchSize: 100, debounce: time.Hour}, nil, logger.Nop())

	now := time.Now()
	w.Add(entry("+16502530000", now, "New"))
	w.Add(entry("+16502530000", now.Add(-time.Minute), "Old"))
	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	batches := store.written()
	if len(batches) != 1 || len(batches[0]) != 1 || batches[0][0].Candidates.Local.Name != "New" {
		t.Fatalf("unexpected batches %+v", batches)
	}
}

func TestWriterRequeuesOnFailure(t *testing.T) {
	store := &recordingStore{failNext: true}
	w := NewWriter(store, historyConfig{batchSize: 100, debounce: time.Hour}, nil, logger.Nop())

	w.Add(entry("+16502530000", time.Now(), "Alice"))
	if err := w.Flush(context.Background()); err == nil {
		t.Fatal("expected flush error")
	}
	if w.Pending() != 1 {
		t.Fatalf("expected entry to be requeued, got %d pending", w.Pending())
	}
	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("second flush: %v", err)
	}
	if len(store.written()) != 1 {
		t.Fatal("expected the retry to be written")
	}
}

func TestWriterHandlesOnlyResolvedIdentities(t *testing.T) {
	w := NewWriter(&recordingStore{}, historyConfig{batchSize: 100, debounce: time.Hour}, nil, logger.Nop())

	_ = w.Handle(context.Background(), events.CallRecorded{BaseEvent: events.NewBaseEvent(), NormalizedNumber: "+16502530000"})
	_ = w.Handle(context.Background(), events.IdentityResolved{BaseEvent: events.NewBaseEvent()})
	if w.Pending() != 0 {
		t.Fatalf("expected nothing buffered, got %d", w.Pending())
	}

	_ = w.Handle(context.Background(), events.IdentityResolved{BaseEvent: events.NewBaseEvent(), NormalizedNumber: "+16502530000"})
	if w.Pending() != 1 {
		t.Fatalf("expected one buffered entry, got %d", w.Pending())
	}
}

func TestWriterFlushesOnShutdown(t *testing.T) {
	store := &recordingStore{}
	w := NewWriter(store, historyConfig{batchSize: 100, debounce: time.Hour}, nil, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	w.Add(entry("+16502530000", time.Now(), "Alice"))
	cancel()
	<-done

	if len(store.written()) != 1 {
		t.Fatal("expected pending entries to be written on shutdown")
	}
}
