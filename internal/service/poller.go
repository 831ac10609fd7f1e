package service

import (
	"context"
	"log/slog"
	"time"

	bfotel "github.com/botfactory/botfactory/internal/adapter/otel"
	"github.com/botfactory/botfactory/internal/config"
	"github.com/botfactory/botfactory/internal/domain/update"
	"github.com/botfactory/botfactory/internal/port/messaging"
)

// Poller runs one bot's pull loop: long-poll, classify, dedup, dispatch.
// The cursor only moves forward; a failed handler never rewinds it, so a
// poison update cannot wedge the loop. The dedup ledger is injected and
// outlives the loop: a restarted bot re-pulls from a fresh cursor, and only
// the ledger keeps those redelivered updates from being answered twice.
type Poller struct {
	botID   string
	client  messaging.Client
	handle  func(ctx context.Context, env update.Envelope) error
	ledger  *Ledger
	cfg     config.Poller
	metrics *bfotel.Metrics

	offset int64
}

// NewPoller creates a Poller for one bot. The ledger carries dedup state
// across poller runs; it is owned by the caller.
func NewPoller(botID string, client messaging.Client, handle func(ctx context.Context, env update.Envelope) error, ledger *Ledger, cfg config.Poller, metrics *bfotel.Metrics) *Poller {
	return &Poller{
		botID:   botID,
		client:  client,
		handle:  handle,
		ledger:  ledger,
		cfg:     cfg,
		metrics: metrics,
	}
}

// Run polls until ctx is cancelled. Pull failures back off a fixed delay and
// retry; they never terminate the loop.
func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		batch, err := p.client.Pull(ctx, p.offset, p.cfg.PollWait)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("pull failed", "bot", p.botID, "error", err)
			if !sleepCtx(ctx, p.cfg.RetryDelay) {
				return
			}
			continue
		}

		if p.metrics != nil && len(batch) > 0 {
			p.metrics.UpdatesPulled.Add(ctx, int64(len(batch)))
		}

		for _, raw := range batch {
			if raw.UpdateID >= p.offset {
				p.offset = raw.UpdateID + 1
			}

			env, ok := update.Classify(raw)
			if !ok {
				continue
			}
			if !p.ledger.Admit(raw.UpdateID) {
				if p.metrics != nil {
					p.metrics.DuplicatesDropped.Add(ctx, 1)
				}
				continue
			}

			if err := p.handle(ctx, env); err != nil {
				slog.Error("update handling failed",
					"bot", p.botID,
					"update_id", raw.UpdateID,
					"error", err,
				)
			}
		}
	}
}

// sleepCtx waits d or until ctx is cancelled, reporting whether the full
// delay elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
