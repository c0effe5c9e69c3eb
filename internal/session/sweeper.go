package session

import (
	"context"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
)

// Sweeper runs SweepExpired on a cron schedule. Expiry is enforced lazily on
// every read, so the sweeper is purely a storage-hygiene optimization and can
// be disabled without affecting correctness.
type Sweeper struct {
	store  *Store
	expr   *cronexpr.Expression
	logger *log.Logger
}

// NewSweeper parses the cron spec (e.g. "0 * * * *" for hourly).
func NewSweeper(store *Store, spec string, logger *log.Logger) (*Sweeper, error) {
	expr, err := cronexpr.Parse(spec)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[SWEEP] ", log.LstdFlags)
	}
	return &Sweeper{store: store, expr: expr, logger: logger}, nil
}

// Run blocks until ctx is cancelled, sweeping at each scheduled instant.
func (s *Sweeper) Run(ctx context.Context) {
	for {
		next := s.expr.Next(time.Now())
		if next.IsZero() {
			s.logger.Printf("schedule has no future run, stopping")
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}
		n, err := s.store.SweepExpired(ctx)
		if err != nil {
			s.logger.Printf("sweep failed: %v", err)
			continue
		}
		if n > 0 {
			s.logger.Printf("removed %d expired sessions", n)
		}
	}
}
