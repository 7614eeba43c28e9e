// Package delivery keeps replies to redeliverable chat events at most once.
//
// A Guard tracks two sets keyed by event id: events admitted for processing
// and events whose reply has been sent. Both expire after a fixed TTL.
package delivery

import (
	"context"
	"time"

	"marketing-assistant-be/internal/pkg/logger"
)

const DefaultTTL = 60 * time.Second

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Ledger stores the processed and sent sets.
// TryAdmit and TryMarkSent must be atomic check-and-set operations.
type Ledger interface {
	TryAdmit(ctx context.Context, eventID string, now time.Time) (bool, error)
	TryMarkSent(ctx context.Context, eventID string, now time.Time) (bool, error)
	UnmarkSent(ctx context.Context, eventID string) error
	// Sweep drops entries first seen before cutoff.
	Sweep(ctx context.Context, cutoff time.Time) int
}

type Guard struct {
	ledger Ledger
	clock  Clock
	ttl    time.Duration
	logger logger.ILogger
}

func NewGuard(ledger Ledger, clock Clock, ttl time.Duration, log logger.ILogger) *Guard {
	if clock == nil {
		clock = SystemClock{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Guard{ledger: ledger, clock: clock, ttl: ttl, logger: log}
}

func (g *Guard) TTL() time.Duration { return g.ttl }

// Admit sweeps expired entries, then reports whether eventID is new.
// A redelivery inside the TTL window returns false. Ledger failures also
// return false so a broken ledger cannot cause duplicate replies.
func (g *Guard) Admit(ctx context.Context, eventID string) bool {
	now := g.clock.Now()
	if removed := g.ledger.Sweep(ctx, now.Add(-g.ttl)); removed > 0 {
		g.logger.Debug("DELIVERY", "Swept expired delivery entries", map[string]interface{}{"removed": removed})
	}

	admitted, err := g.ledger.TryAdmit(ctx, eventID, now)
	if err != nil {
		g.logger.Error("DELIVERY", "Failed to record event admission", map[string]interface{}{
			"event_id": eventID,
			"error":    err.Error(),
		})
		return false
	}
	if !admitted {
		g.logger.Warn("DELIVERY", "Skipping duplicate event", map[string]interface{}{"event_id": eventID})
	}
	return admitted
}

// Deliver calls send at most once per event id. Callers only reach it
// after Admit, and the processed entry may already have expired when a slow
// request finishes, so only the sent set is consulted. The sent mark is
// written before send runs and removed again if send fails, so the caller
// may retry a genuinely failed delivery. It reports whether send ran successfully.
func (g *Guard) Deliver(ctx context.Context, eventID string, send func(ctx context.Context) error) (bool, error) {
	marked, err := g.ledger.TryMarkSent(ctx, eventID, g.clock.Now())
	if err != nil {
		return false, err
	}
	if !marked {
		g.logger.Warn("DELIVERY", "Reply already sent, skipping", map[string]interface{}{"event_id": eventID})
		return false, nil
	}

	if err := send(ctx); err != nil {
		if unmarkErr := g.ledger.UnmarkSent(ctx, eventID); unmarkErr != nil {
			g.logger.Error("DELIVERY", "Failed to clear sent mark", map[string]interface{}{
				"event_id": eventID,
				"error":    unmarkErr.Error(),
			})
		}
		return false, err
	}
	return true, nil
}
