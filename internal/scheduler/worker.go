package scheduler

import (
	"context"
	"fmt"

	"circletel_backend/platform/apperr"
	"circletel_backend/platform/config"
	"circletel_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// QuoteExpirer expires a single overdue quote.
type QuoteExpirer interface {
	ExpireQuote(ctx context.Context, id uuid.UUID) error
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	expirer QuoteExpirer
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, expirer QuoteExpirer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		expirer: expirer,
		log:     log,
	}

	mux.HandleFunc(TaskQuoteExpire, w.handleQuoteExpire)

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

func (w *Worker) handleQuoteExpire(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseQuoteExpirePayload(task)
	if err != nil {
		return fmt.Errorf("parse quote expire payload: %v: %w", err, asynq.SkipRetry)
	}

	quoteID, err := uuid.Parse(payload.QuoteID)
	if err != nil {
		return fmt.Errorf("invalid quote id %q: %w", payload.QuoteID, asynq.SkipRetry)
	}

	if err := w.expirer.ExpireQuote(ctx, quoteID); err != nil {
		switch apperr.GetKind(err) {
		case apperr.KindNotFound, apperr.KindConflict:
			// Deleted, or moved on concurrently; nothing left to expire.
			w.log.Info("quote expiry skipped", "quoteId", quoteID, "reason", err.Error())
			return nil
		}
		return err
	}
	return nil
}
