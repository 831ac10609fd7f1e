package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/botfactory/botfactory/internal/domain/access"
	"github.com/botfactory/botfactory/internal/domain/bot"
	"github.com/botfactory/botfactory/internal/domain/enduser"
	"github.com/botfactory/botfactory/internal/domain/update"
	"github.com/botfactory/botfactory/internal/port/messaging"
	"github.com/botfactory/botfactory/internal/port/notifier"
)

// Callback payloads.
const (
	callbackLangPrefix      = "lang_"
	callbackLangLocked      = "lang_locked"
	callbackContactOperator = "contact_operator"
)

func (s *ReplyService) handleCommand(ctx context.Context, b *bot.Bot, client messaging.Client, u *enduser.EndUser, env update.Envelope, cmd update.Command) error {
	switch cmd.Name {
	case "start":
		if err := client.SendText(ctx, env.ChatID, welcomeText(b.Name), nil); err != nil {
			return fmt.Errorf("send welcome: %w", err)
		}
		_ = client.SendText(ctx, env.ChatID, contactPromptText, contactKeyboard(b))
		return nil

	case "help":
		return client.SendText(ctx, env.ChatID, helpText, nil)

	case "language":
		return client.SendText(ctx, env.ChatID, languagePrompt(u.Language), languageKeyboard(b))

	case "ping":
		return client.SendText(ctx, env.ChatID, pingText, nil)

	default:
		// Unknown commands are ignored, same as unactionable updates.
		slog.Debug("unknown command", "bot", b.ID, "command", cmd.Name)
		return nil
	}
}

func (s *ReplyService) handleCallback(ctx context.Context, b *bot.Bot, client messaging.Client, u *enduser.EndUser, env update.Envelope, cb update.Callback) error {
	// Acknowledge first so the client stops its loading spinner even when
	// the payload turns out to be stale.
	_ = client.AnswerCallback(ctx, cb.ID)

	switch {
	case cb.Payload == callbackLangLocked:
		return client.SendText(ctx, env.ChatID, languageLockedText, nil)

	case cb.Payload == callbackContactOperator:
		return s.handleOperatorRequest(ctx, b, client, u, env)

	case strings.HasPrefix(cb.Payload, callbackLangPrefix):
		return s.handleLanguageChoice(ctx, b, client, u, env, strings.TrimPrefix(cb.Payload, callbackLangPrefix))

	default:
		slog.Debug("unknown callback", "bot", b.ID, "payload", cb.Payload)
		return nil
	}
}

// handleLanguageChoice applies a language selection, re-checking the owner
// tier so a forged payload cannot unlock a language the keyboard never
// offered.
func (s *ReplyService) handleLanguageChoice(ctx context.Context, b *bot.Bot, client messaging.Client, u *enduser.EndUser, env update.Envelope, lang string) error {
	switch lang {
	case langUz, langRu, langEn:
	default:
		return nil
	}

	if !access.LanguageAllowed(b, lang) {
		return client.SendText(ctx, env.ChatID, languageLockedText, nil)
	}

	if err := s.store.SetEndUserLanguage(ctx, b.ID, u.PlatformUserID, lang); err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	u.Language = lang
	return client.SendText(ctx, env.ChatID, languageChangedText(lang), nil)
}

// handleOperatorRequest acknowledges the user and alerts the bot owner.
func (s *ReplyService) handleOperatorRequest(ctx context.Context, b *bot.Bot, client messaging.Client, u *enduser.EndUser, env update.Envelope) error {
	if err := client.SendText(ctx, env.ChatID, operatorAckText, nil); err != nil {
		return fmt.Errorf("send operator ack: %w", err)
	}

	s.notify.Notify(ctx, client, b, notifier.Notification{
		BotName:  b.Name,
		UserID:   u.PlatformUserID,
		Username: u.Username,
		Message:  "📩 Yangi operator so'rovi",
		Source:   "operator",
	})
	return nil
}

// languageKeyboard offers the unlocked languages and shows locked ones with
// a lock marker, mirroring the owner tier.
func languageKeyboard(b *bot.Bot) *messaging.Keyboard {
	kb := &messaging.Keyboard{}
	kb.Rows = append(kb.Rows, []messaging.Button{
		{Text: "🇺🇿 O'zbek", CallbackData: callbackLangPrefix + langUz},
	})
	if bot.PrivilegedTier(b.OwnerTier) {
		kb.Rows = append(kb.Rows,
			[]messaging.Button{{Text: "🇷🇺 Русский", CallbackData: callbackLangPrefix + langRu}},
			[]messaging.Button{{Text: "🇺🇸 English", CallbackData: callbackLangPrefix + langEn}},
		)
	} else {
		kb.Rows = append(kb.Rows,
			[]messaging.Button{{Text: "🔒 Русский (Starter/Basic/Premium)", CallbackData: callbackLangLocked}},
			[]messaging.Button{{Text: "🔒 English (Starter/Basic/Premium)", CallbackData: callbackLangLocked}},
		)
	}
	return kb
}

// contactKeyboard builds the contact options shown after /start: the owner's
// channel when one is configured, and the operator request button always.
func contactKeyboard(b *bot.Bot) *messaging.Keyboard {
	kb := &messaging.Keyboard{}
	if strings.HasPrefix(b.NotifyChannel, "@") {
		kb.Rows = append(kb.Rows, []messaging.Button{
			{Text: "💬 Telegramda yozish", URL: "https://t.me/" + strings.TrimPrefix(b.NotifyChannel, "@")},
		})
	}
	kb.Rows = append(kb.Rows, []messaging.Button{
		{Text: "👨‍💼 Operator bilan bog'lanish", CallbackData: callbackContactOperator},
	})
	return kb
}
