package scheduler

import (
	"context"
	"fmt"
	"strings"

	"callerid_backend/internal/lookup/service"
	"callerid_backend/platform/config"
	"callerid_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// LookupRefresher re-runs a lookup past the cache.
type LookupRefresher interface {
	Refresh(ctx context.Context, q service.Query) (service.Result, error)
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	refresher LookupRefresher
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, refresher LookupRefresher, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetSchedulerConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			defaultQueue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		refresher: refresher,
		log:       log,
	}

	mux.HandleFunc(TaskLookupRefresh, w.handleLookupRefresh)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleLookupRefresh refreshes one number. Malformed payloads are never
// retried; source failures are, up to the task's retry budget.
func (w *Worker) handleLookupRefresh(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLookupRefreshPayload(task)
	if err != nil {
		return fmt.Errorf("parse lookup refresh payload: %v: %w", err, asynq.SkipRetry)
	}
	if strings.TrimSpace(payload.Number) == "" {
		return fmt.Errorf("lookup refresh without number: %w", asynq.SkipRetry)
	}

	result, err := w.refresher.Refresh(ctx, service.Query{Raw: payload.Number, Region: payload.Region})
	if err != nil {
		return err
	}
	w.log.Info("lookup refreshed", "number", result.Number.E164, "nameSource", result.Identity.NameSource().String())
	return nil
}
