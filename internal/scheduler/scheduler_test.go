package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"circletel_backend/platform/apperr"
	"circletel_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type fakeExpirer struct {
	ids []uuid.UUID
	err error
}

func (f *fakeExpirer) ExpireQuote(_ context.Context, id uuid.UUID) error {
	f.ids = append(f.ids, id)
	return f.err
}

func TestQuoteExpireTaskRoundTrip(t *testing.T) {
	id := uuid.NewString()
	task, err := NewQuoteExpireTask(QuoteExpirePayload{QuoteID: id})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Type() != TaskQuoteExpire {
		t.Fatalf("expected %q, got %q", TaskQuoteExpire, task.Type())
	}
	payload, err := ParseQuoteExpirePayload(task)
	if err != nil || payload.QuoteID != id {
		t.Fatalf("expected %q, got %q (%v)", id, payload.QuoteID, err)
	}
	if quoteExpireTaskID(id) != "quotes.expire:"+id {
		t.Fatalf("unexpected task id %q", quoteExpireTaskID(id))
	}
}

func TestHandleQuoteExpireCallsExpirer(t *testing.T) {
	expirer := &fakeExpirer{}
	w := &Worker{expirer: expirer, log: logger.Nop()}
	id := uuid.New()
	task, _ := NewQuoteExpireTask(QuoteExpirePayload{QuoteID: id.String()})

	if err := w.handleQuoteExpire(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expirer.ids) != 1 || expirer.ids[0] != id {
		t.Fatalf("expected expirer to be called with %s, got %v", id, expirer.ids)
	}
}

func TestHandleQuoteExpireSkipsRetryOnBadPayload(t *testing.T) {
	w := &Worker{expirer: &fakeExpirer{}, log: logger.Nop()}

	err := w.handleQuoteExpire(context.Background(), asynq.NewTask(TaskQuoteExpire, []byte(`{"quoteId":"nope"}`)))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}

	err = w.handleQuoteExpire(context.Background(), asynq.NewTask(TaskQuoteExpire, []byte(`not json`)))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestHandleQuoteExpireErrorHandling(t *testing.T) {
	task, _ := NewQuoteExpireTask(QuoteExpirePayload{QuoteID: uuid.NewString()})

	gone := &Worker{expirer: &fakeExpirer{err: apperr.NotFound("quote not found")}, log: logger.Nop()}
	if err := gone.handleQuoteExpire(context.Background(), task); err != nil {
		t.Fatalf("expected deleted quote to be ignored, got %v", err)
	}

	down := &Worker{expirer: &fakeExpirer{err: errors.New("db down")}, log: logger.Nop()}
	if err := down.handleQuoteExpire(context.Background(), task); err == nil {
		t.Fatal("expected transient error to be retried")
	}
}

type countingExpirer struct {
	calls atomic.Int32
}

func (c *countingExpirer) ExpireOverdueQuotes(context.Context) (int, error) {
	c.calls.Add(1)
	return 2, nil
}

func TestQuoteExpirySweepRunsImmediatelyAndStops(t *testing.T) {
	expirer := &countingExpirer{}
	sweep := NewQuoteExpirySweep(expirer, logger.Nop(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweep.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for expirer.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("expected an initial sweep")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected sweep to stop on cancel")
	}
	if got := expirer.calls.Load(); got != 1 {
		t.Fatalf("expected 1 sweep, got %d", got)
	}
}

func TestNewQuoteExpirySweepDefaultsInterval(t *testing.T) {
	if s := NewQuoteExpirySweep(&countingExpirer{}, logger.Nop(), 0); s.interval != defaultQuoteExpirySweepInterval {
		t.Fatalf("expected default interval, got %v", s.interval)
	}
}
