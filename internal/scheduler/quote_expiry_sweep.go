package scheduler

import (
	"context"
	"time"

	"circletel_backend/platform/logger"
)

const defaultQuoteExpirySweepInterval = time.Hour

// OverdueQuoteExpirer expires every sent or viewed quote past its deadline.
type OverdueQuoteExpirer interface {
	ExpireOverdueQuotes(ctx context.Context) (int, error)
}

// QuoteExpirySweep periodically expires overdue quotes. It catches quotes
// whose scheduled task was lost or never enqueued.
type QuoteExpirySweep struct {
	expirer  OverdueQuoteExpirer
	log      *logger.Logger
	interval time.Duration
}

func NewQuoteExpirySweep(expirer OverdueQuoteExpirer, log *logger.Logger, interval time.Duration) *QuoteExpirySweep {
	if interval <= 0 {
		interval = defaultQuoteExpirySweepInterval
	}
	return &QuoteExpirySweep{
		expirer:  expirer,
		log:      log,
		interval: interval,
	}
}

func (s *QuoteExpirySweep) Run(ctx context.Context) {
	if s == nil || s.expirer == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *QuoteExpirySweep) sweep(ctx context.Context) {
	expired, err := s.expirer.ExpireOverdueQuotes(ctx)
	if err != nil {
		s.log.Warn("quote expiry sweep failed", "error", err)
		return
	}

	if expired > 0 {
		s.log.Info("quote expiry sweep expired quotes", "expired", expired)
	}
}
