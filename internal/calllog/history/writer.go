// Package history persists consolidated lookups so the call log can render
// identities without querying the sources again.
package history

import (
	"context"
	"sync"
	"time"

	"callerid_backend/internal/calllog/repository"
	"callerid_backend/internal/events"
	"callerid_backend/platform/config"
	"callerid_backend/platform/logger"
	"callerid_backend/platform/metrics"
)

const finalFlushTimeout = 5 * time.Second

// Writer buffers lookup results and writes them with one batched upsert when
// the batch fills or the debounce window after the first buffered entry
// elapses. Only the newest result per number is kept.
type Writer struct {
	store     repository.HistoryStore
	batchSize int
	debounce  time.Duration
	metrics   *metrics.Metrics
	log       *logger.Logger

	mu      sync.Mutex
	pending map[string]repository.HistoryEntry

	arm  chan struct{}
	full chan struct{}
}

// NewWriter creates a Writer. Call Run to start flushing.
func NewWriter(store repository.HistoryStore, cfg config.HistoryConfig, m *metrics.Metrics, log *logger.Logger) *Writer {
	batchSize := cfg.GetHistoryBatchSize()
	if batchSize <= 0 {
		batchSize = 100
	}
	debounce := cfg.GetHistoryDebounce()
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &Writer{
		store:     store,
		batchSize: batchSize,
		debounce:  debounce,
		metrics:   m,
		log:       log,
		pending:   make(map[string]repository.HistoryEntry),
		arm:       make(chan struct{}, 1),
		full:      make(chan struct{}, 1),
	}
}

// Handle buffers IdentityResolved events and ignores everything else.
func (w *Writer) Handle(_ context.Context, event events.Event) error {
	e, ok := event.(events.IdentityResolved)
	if !ok || e.NormalizedNumber == "" {
		return nil
	}
	w.Add(repository.HistoryEntry{
		NormalizedNumber: e.NormalizedNumber,
		Candidates:       e.Candidates,
		UpdatedAt:        e.OccurredAt(),
	})
	return nil
}

// Add buffers one entry. An older entry for the same number is dropped.
func (w *Writer) Add(entry repository.HistoryEntry) {
	w.mu.Lock()
	if prev, ok := w.pending[entry.NormalizedNumber]; ok && prev.UpdatedAt.After(entry.UpdatedAt) {
		w.mu.Unlock()
		return
	}
	w.pending[entry.NormalizedNumber] = entry
	n := len(w.pending)
	w.mu.Unlock()

	if n == 1 {
		signal(w.arm)
	}
	if n >= w.batchSize {
		signal(w.full)
	}
}

// Pending returns how many entries wait for the next flush.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Run flushes until ctx is cancelled, then flushes whatever is left.
func (w *Writer) Run(ctx context.Context) {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timer, timerC = nil, nil
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalFlushTimeout)
			_ = w.Flush(flushCtx)
			cancel()
			return
		case <-w.arm:
			if timerC == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			}
		case <-w.full:
			stopTimer()
			_ = w.Flush(ctx)
		case <-timerC:
			timer, timerC = nil, nil
			_ = w.Flush(ctx)
		}
	}
}

// Flush writes everything buffered. On failure the entries are put back
// unless a newer result for the number arrived meanwhile.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return nil
	}
	batch := make([]repository.HistoryEntry, 0, len(w.pending))
	for _, e := range w.pending {
		batch = append(batch, e)
	}
	w.pending = make(map[string]repository.HistoryEntry)
	w.mu.Unlock()

	err := w.store.UpsertHistory(ctx, batch)
	w.metrics.ObserveHistoryFlush(len(batch), err)
	if err != nil {
		w.log.DatabaseError("flush lookup history", err)
		for _, e := range batch {
			w.Add(e)
		}
		return err
	}
	w.log.Debug("lookup history flushed", "entries", len(batch))
	return nil
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
