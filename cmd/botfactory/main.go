package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/botfactory/botfactory/internal/adapter/gemini"
	bfhttp "github.com/botfactory/botfactory/internal/adapter/http"
	bfnats "github.com/botfactory/botfactory/internal/adapter/nats"
	bfotel "github.com/botfactory/botfactory/internal/adapter/otel"
	"github.com/botfactory/botfactory/internal/adapter/postgres"
	"github.com/botfactory/botfactory/internal/adapter/ristretto"
	speechapi "github.com/botfactory/botfactory/internal/adapter/speech"
	"github.com/botfactory/botfactory/internal/adapter/telegram"
	"github.com/botfactory/botfactory/internal/config"
	"github.com/botfactory/botfactory/internal/domain/bot"
	"github.com/botfactory/botfactory/internal/logger"
	"github.com/botfactory/botfactory/internal/port/events"
	"github.com/botfactory/botfactory/internal/port/messaging"
	"github.com/botfactory/botfactory/internal/port/notifier"
	"github.com/botfactory/botfactory/internal/port/speech"
	"github.com/botfactory/botfactory/internal/resilience"
	"github.com/botfactory/botfactory/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"pg_max_conns", cfg.Postgres.MaxConns,
	)

	ctx := context.Background()

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	store := postgres.NewStore(pool, bot.DeriveKey(cfg.Secrets.TokenSecret))

	var publisher events.Publisher = events.Nop{}
	if cfg.NATS.URL != "" {
		queue, err := bfnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = queue.Close() }()
		publisher = queue
		slog.Info("nats connected")
	}

	cache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cache.Close()

	metrics, err := bfotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Collaborators ---

	dialer := telegram.NewDialer(cfg.Telegram.BaseURL, cfg.Telegram.Timeout)
	dialer.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	generator := gemini.NewClient(cfg.Gemini.BaseURL, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout)
	generator.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	var transcriber speech.Transcriber
	if cfg.Speech.URL != "" {
		transcriber = speechapi.NewClient(cfg.Speech.URL, cfg.Speech.Timeout)
	} else {
		slog.Info("speech service not configured, voice messages disabled")
	}

	// --- Services ---

	contextSvc := service.NewContextService(store, cache, cfg.Cache.KnowledgeTTL, cfg.Reply.KnowledgeBudget, cfg.Reply.HistoryDepth)

	notifySvc := service.NewNotificationService(func(client messaging.Client, b *bot.Bot) []notifier.Notifier {
		var targets []string
		if b.AdminChatID != "" {
			targets = append(targets, b.AdminChatID)
		}
		if b.NotifyChannel != "" {
			targets = append(targets, b.NotifyChannel)
		}
		return []notifier.Notifier{telegram.NewNotifier(client, targets...)}
	})

	replySvc := service.NewReplyService(store, generator, transcriber, contextSvc, notifySvc, publisher, metrics, cfg.Reply, cfg.Gemini)
	manager := service.NewManager(store, dialer, replySvc, contextSvc, publisher, metrics, cfg.Poller)

	if err := manager.StartAll(ctx); err != nil {
		return fmt.Errorf("start bots: %w", err)
	}
	slog.Info("active bots started", "running", len(manager.Running()))

	// --- HTTP ---

	r := chi.NewRouter()
	r.Use(bfhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(bfhttp.RequestID)
	r.Use(bfhttp.Logger)
	r.Use(bfhttp.Recoverer)

	bfhttp.MountRoutes(r, bfhttp.NewHandlers(store, manager))

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := manager.StopAll(shutdownCtx); err != nil {
		slog.Warn("bot shutdown incomplete", "error", err)
	}
	return srv.Shutdown(shutdownCtx)
}
