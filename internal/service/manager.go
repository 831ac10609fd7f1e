package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	bfotel "github.com/botfactory/botfactory/internal/adapter/otel"
	"github.com/botfactory/botfactory/internal/config"
	"github.com/botfactory/botfactory/internal/domain"
	"github.com/botfactory/botfactory/internal/domain/bot"
	"github.com/botfactory/botfactory/internal/domain/update"
	"github.com/botfactory/botfactory/internal/port/database"
	"github.com/botfactory/botfactory/internal/port/events"
	"github.com/botfactory/botfactory/internal/port/messaging"
)

// Manager owns the per-bot poll loops. Each running bot holds one goroutine;
// tenants are isolated, so one bot's failure never touches another's loop.
type Manager struct {
	store   database.Store
	dialer  messaging.Dialer
	reply   *ReplyService
	context *ContextService
	events  events.Publisher
	metrics *bfotel.Metrics
	cfg     config.Poller

	mu      sync.Mutex
	handles map[string]*handle
	// ledgers hold per-bot dedup state for the process lifetime, so a
	// restarted poller re-pulling from a fresh cursor does not answer
	// already-handled updates again.
	ledgers map[string]*Ledger

	now func() time.Time
}

// handle tracks one running poll loop. cancel signals the loop; done closes
// when the goroutine has fully exited.
type handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a Manager. publisher may be nil.
func NewManager(
	store database.Store,
	dialer messaging.Dialer,
	reply *ReplyService,
	contextSvc *ContextService,
	publisher events.Publisher,
	metrics *bfotel.Metrics,
	cfg config.Poller,
) *Manager {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Manager{
		store:   store,
		dialer:  dialer,
		reply:   reply,
		context: contextSvc,
		events:  publisher,
		metrics: metrics,
		cfg:     cfg,
		handles: make(map[string]*handle),
		ledgers: make(map[string]*Ledger),
		now:     time.Now,
	}
}

// ledgerFor returns the bot's process-lifetime dedup ledger, creating it on
// first use.
func (m *Manager) ledgerFor(botID string) *Ledger {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.ledgers[botID]
	if !ok {
		l = NewLedger(m.cfg.DedupWindow)
		m.ledgers[botID] = l
	}
	return l
}

// Start validates the bot's credential and launches its poll loop. A
// credential the platform rejects fails the start; nothing is left running.
func (m *Manager) Start(ctx context.Context, botID string) error {
	m.mu.Lock()
	if _, exists := m.handles[botID]; exists {
		m.mu.Unlock()
		return fmt.Errorf("bot %s: %w", botID, domain.ErrAlreadyRunning)
	}
	m.mu.Unlock()

	b, err := m.store.GetBot(ctx, botID)
	if err != nil {
		return fmt.Errorf("load bot: %w", err)
	}

	client := m.dialer.Dial(b.Token)
	if err := client.Validate(ctx); err != nil {
		m.publishState(b, events.StateFailed)
		return fmt.Errorf("validate credential for bot %s: %w (%v)", botID, domain.ErrInvalidCredential, err)
	}

	// Restarts and fresh starts both pick up the latest knowledge edits.
	m.context.Invalidate(ctx, botID)

	m.mu.Lock()
	if _, exists := m.handles[botID]; exists {
		m.mu.Unlock()
		return fmt.Errorf("bot %s: %w", botID, domain.ErrAlreadyRunning)
	}
	// The loop lives past the HTTP request that started it.
	runCtx, cancel := context.WithCancel(context.Background())
	h := &handle{cancel: cancel, done: make(chan struct{})}
	m.handles[botID] = h
	m.mu.Unlock()

	go m.run(runCtx, b, client, h)

	m.publishState(b, events.StateStarted)
	slog.Info("bot started", "bot", b.ID, "name", b.Name)
	return nil
}

// run hosts one bot's poll loop until its context is cancelled.
func (m *Manager) run(ctx context.Context, b *bot.Bot, client messaging.Client, h *handle) {
	defer func() {
		m.mu.Lock()
		if m.handles[b.ID] == h {
			delete(m.handles, b.ID)
		}
		m.mu.Unlock()
		close(h.done)

		m.publishState(b, events.StateStopped)
		slog.Info("bot stopped", "bot", b.ID, "name", b.Name)
	}()

	poller := NewPoller(b.ID, client, func(ctx context.Context, env update.Envelope) error {
		return m.reply.Handle(ctx, b, client, env)
	}, m.ledgerFor(b.ID), m.cfg, m.metrics)
	poller.Run(ctx)
}

// Stop signals a bot's poll loop to exit. Stopping a bot that is not running
// is a no-op success. It does not wait for the loop to drain; callers that
// need that use Restart or StopAll.
func (m *Manager) Stop(botID string) error {
	m.mu.Lock()
	h, ok := m.handles[botID]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	h.cancel()
	return nil
}

// Restart stops the bot's loop, waits for it to exit, and starts a fresh one
// against the current bot record.
func (m *Manager) Restart(ctx context.Context, botID string) error {
	m.mu.Lock()
	h, ok := m.handles[botID]
	m.mu.Unlock()
	if ok {
		h.cancel()
		select {
		case <-h.done:
		case <-ctx.Done():
			return fmt.Errorf("restart bot %s: %w", botID, ctx.Err())
		}
	}
	return m.Start(ctx, botID)
}

// StartAll launches every bot marked active. A bot that fails to start is
// logged and skipped; it never blocks the rest of the fleet.
func (m *Manager) StartAll(ctx context.Context) error {
	bots, err := m.store.ListActiveBots(ctx)
	if err != nil {
		return fmt.Errorf("list active bots: %w", err)
	}
	for _, b := range bots {
		if err := m.Start(ctx, b.ID); err != nil {
			slog.Error("bot failed to start", "bot", b.ID, "name", b.Name, "error", err)
		}
	}
	return nil
}

// StopAll signals every running loop and waits for all of them to exit, or
// for ctx to expire.
func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	running := make(map[string]*handle, len(m.handles))
	for id, h := range m.handles {
		running[id] = h
	}
	m.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	for id, h := range running {
		id, h := id, h
		h.cancel()
		g.Go(func() error {
			select {
			case <-h.done:
				return nil
			case <-ctx.Done():
				return fmt.Errorf("bot %s did not stop: %w", id, ctx.Err())
			}
		})
	}
	return g.Wait()
}

// Running returns the ids of the bots with live poll loops, sorted.
func (m *Manager) Running() []string {
	m.mu.Lock()
	ids := make([]string, 0, len(m.handles))
	for id := range m.handles {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	sort.Strings(ids)
	return ids
}

func (m *Manager) publishState(b *bot.Bot, state string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.events.BotState(ctx, events.LifecycleEvent{
		BotID: b.ID,
		Name:  b.Name,
		State: state,
		At:    m.now(),
	}); err != nil {
		slog.Warn("lifecycle event publish failed", "bot", b.ID, "state", state, "error", err)
	}
}
