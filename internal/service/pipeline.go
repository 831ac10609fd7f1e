package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	bfotel "github.com/botfactory/botfactory/internal/adapter/otel"
	"github.com/botfactory/botfactory/internal/config"
	"github.com/botfactory/botfactory/internal/domain/access"
	"github.com/botfactory/botfactory/internal/domain/bot"
	"github.com/botfactory/botfactory/internal/domain/conversation"
	"github.com/botfactory/botfactory/internal/domain/enduser"
	"github.com/botfactory/botfactory/internal/domain/update"
	"github.com/botfactory/botfactory/internal/port/ai"
	"github.com/botfactory/botfactory/internal/port/database"
	"github.com/botfactory/botfactory/internal/port/events"
	"github.com/botfactory/botfactory/internal/port/messaging"
	"github.com/botfactory/botfactory/internal/port/notifier"
	"github.com/botfactory/botfactory/internal/port/speech"
)

// ReplyService turns classified inbound events into delivered replies. One
// instance serves all bots; per-bot state travels in the arguments.
type ReplyService struct {
	store   database.Store
	gen     ai.Generator
	stt     speech.Transcriber
	context *ContextService
	notify  *NotificationService
	events  events.Publisher
	metrics *bfotel.Metrics

	replyCfg config.Reply
	genCfg   config.Gemini

	now func() time.Time
}

// NewReplyService wires the pipeline. stt may be nil when voice support is
// not configured; events and metrics may be nil.
func NewReplyService(
	store database.Store,
	gen ai.Generator,
	stt speech.Transcriber,
	contextSvc *ContextService,
	notify *NotificationService,
	publisher events.Publisher,
	metrics *bfotel.Metrics,
	replyCfg config.Reply,
	genCfg config.Gemini,
) *ReplyService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &ReplyService{
		store:    store,
		gen:      gen,
		stt:      stt,
		context:  contextSvc,
		notify:   notify,
		events:   publisher,
		metrics:  metrics,
		replyCfg: replyCfg,
		genCfg:   genCfg,
		now:      time.Now,
	}
}

// Handle dispatches one classified event. The switch is exhaustive over the
// event variants; an unknown variant is a programming error.
func (s *ReplyService) Handle(ctx context.Context, b *bot.Bot, client messaging.Client, env update.Envelope) error {
	u, err := s.trackUser(ctx, b, env)
	if err != nil {
		// The reply must not depend on the contact write; fall back to the
		// stored profile, or an ephemeral one when the store is down entirely.
		slog.Warn("user tracking failed", "bot", b.ID, "error", err)
		u = s.fallbackUser(ctx, b, env)
	}

	switch ev := env.Event.(type) {
	case update.Command:
		return s.handleCommand(ctx, b, client, u, env, ev)
	case update.Callback:
		return s.handleCallback(ctx, b, client, u, env, ev)
	case update.Voice:
		return s.handleVoice(ctx, b, client, u, env, ev)
	case update.Text:
		return s.respond(ctx, b, client, u, env.ChatID, ev.Text, "text")
	default:
		return fmt.Errorf("unhandled event type %T", env.Event)
	}
}

// trackUser records the contact and returns the stored profile, which carries
// the authoritative language and trial anchor.
func (s *ReplyService) trackUser(ctx context.Context, b *bot.Bot, env update.Envelope) (*enduser.EndUser, error) {
	return s.store.UpsertEndUser(ctx, &enduser.EndUser{
		BotID:          b.ID,
		PlatformUserID: strconv.FormatInt(env.Sender.ID, 10),
		Username:       env.Sender.Username,
		FirstName:      env.Sender.FirstName,
		Language:       bot.DefaultLanguage,
	})
}

// fallbackUser serves the stored profile when the upsert failed, or an
// ephemeral default-language profile when the store cannot be read either.
// The ephemeral profile anchors a fresh trial; a transient outage must not
// lock paying users out.
func (s *ReplyService) fallbackUser(ctx context.Context, b *bot.Bot, env update.Envelope) *enduser.EndUser {
	uid := strconv.FormatInt(env.Sender.ID, 10)
	if u, err := s.store.GetEndUser(ctx, b.ID, uid); err == nil {
		return u
	}
	return &enduser.EndUser{
		BotID:            b.ID,
		PlatformUserID:   uid,
		Username:         env.Sender.Username,
		FirstName:        env.Sender.FirstName,
		Language:         bot.DefaultLanguage,
		FirstInteraction: s.now(),
	}
}

// respond runs the full reply pipeline for one question.
func (s *ReplyService) respond(ctx context.Context, b *bot.Bot, client messaging.Client, u *enduser.EndUser, chatID int64, question, source string) error {
	started := s.now()

	decision := access.Allow(u, started)
	if !decision.Allowed {
		if s.metrics != nil {
			s.metrics.AccessDenied.Add(ctx, 1)
		}
		slog.Info("access denied", "bot", b.ID, "user", u.PlatformUserID, "reason", decision.Reason)
		return client.SendText(ctx, chatID, accessDeniedText, nil)
	}

	lang := u.Language
	if !access.LanguageAllowed(b, lang) {
		lang = bot.DefaultLanguage
	}

	// Best-effort status indicator while the model works.
	_ = client.SendChatAction(ctx, chatID, messaging.ActionTyping)

	// Context failures degrade to an uninformed reply, never to silence.
	knowledgeText, err := s.context.Knowledge(ctx, b.ID)
	if err != nil {
		slog.Warn("knowledge load failed", "bot", b.ID, "error", err)
		knowledgeText = ""
	}
	history, err := s.context.History(ctx, b.ID, u.PlatformUserID)
	if err != nil {
		slog.Warn("history load failed", "bot", b.ID, "error", err)
		history = ""
	}

	prompt := BuildPrompt(b.Name, lang, knowledgeText, history, question, s.replyCfg.PromptBudget)

	fallback := false
	reply, err := s.gen.Generate(ctx, prompt, s.genCfg.MaxTokens, s.genCfg.Temperature)
	if err != nil {
		slog.Warn("generation failed, serving fallback", "bot", b.ID, "error", err)
		reply = fallbackText(lang)
		fallback = true
		if s.metrics != nil {
			s.metrics.AIFallbacks.Add(ctx, 1)
		}
	}

	reply = Sanitize(reply, s.replyCfg.MaxLength)
	if reply == "" {
		reply = emptyReplyText
	}

	// The log write is best-effort: a full disk must not mute the bot.
	turn := &conversation.Turn{
		BotID:          b.ID,
		PlatformUserID: u.PlatformUserID,
		Input:          question,
		Output:         reply,
		Language:       lang,
	}
	if err := s.store.CreateTurn(ctx, turn); err != nil {
		slog.Warn("turn persist failed", "bot", b.ID, "error", err)
	}

	if err := client.SendText(ctx, chatID, reply, nil); err != nil {
		return fmt.Errorf("deliver reply: %w", err)
	}

	if decision.OnTrial && decision.DaysRemaining <= 3 {
		_ = client.SendText(ctx, chatID, trialReminderText(decision.DaysRemaining), nil)
	}

	s.suggestProduct(ctx, b, client, chatID, question)

	s.notify.Notify(ctx, client, b, notifier.Notification{
		BotName:  b.Name,
		UserID:   u.PlatformUserID,
		Username: u.Username,
		Message:  question,
		Response: reply,
		Source:   source,
	})

	if err := s.events.ReplySent(ctx, events.ReplyEvent{
		BotID:    b.ID,
		UserID:   u.PlatformUserID,
		Language: lang,
		Source:   source,
		Input:    question,
		Output:   reply,
		Fallback: fallback,
		At:       s.now(),
	}); err != nil {
		slog.Warn("reply event publish failed", "bot", b.ID, "error", err)
	}

	if s.metrics != nil {
		s.metrics.RepliesSent.Add(ctx, 1)
		s.metrics.ReplyDuration.Record(ctx, s.now().Sub(started).Seconds())
	}
	return nil
}

// suggestProduct attaches the best-matching product image, when one scores
// above the threshold. Best-effort.
func (s *ReplyService) suggestProduct(ctx context.Context, b *bot.Bot, client messaging.Client, chatID int64, question string) {
	products, err := s.context.Products(ctx, b.ID)
	if err != nil {
		slog.Warn("product load failed", "bot", b.ID, "error", err)
		return
	}
	suggestion, ok := MatchProduct(products, question, s.replyCfg.MatchThreshold)
	if !ok {
		return
	}
	if err := client.SendMedia(ctx, chatID, suggestion.MediaRef, suggestion.Caption); err != nil {
		slog.Warn("product image send failed", "bot", b.ID, "error", err)
	}
}

// handleVoice resolves and transcribes the audio, then runs the text
// pipeline on the transcript.
func (s *ReplyService) handleVoice(ctx context.Context, b *bot.Bot, client messaging.Client, u *enduser.EndUser, env update.Envelope, ev update.Voice) error {
	if s.stt == nil {
		return client.SendText(ctx, env.ChatID, voiceFailText(u.Language), nil)
	}

	_ = client.SendChatAction(ctx, env.ChatID, messaging.ActionTyping)

	mediaURL, err := client.MediaURL(ctx, ev.FileID)
	if err != nil {
		slog.Warn("voice file resolve failed", "bot", b.ID, "error", err)
		return client.SendText(ctx, env.ChatID, voiceFailText(u.Language), nil)
	}

	transcript, err := s.stt.Transcribe(ctx, mediaURL, u.Language)
	if err != nil {
		slog.Warn("transcription failed", "bot", b.ID, "error", err)
		return client.SendText(ctx, env.ChatID, voiceFailText(u.Language), nil)
	}

	// Echo the transcript so the user can correct a bad hearing.
	_ = client.SendText(ctx, env.ChatID, voiceHeardText(transcript), nil)

	return s.respond(ctx, b, client, u, env.ChatID, transcript, "voice")
}
