// Package access decides whether an end user may receive AI-generated
// replies. The decision is derived purely from the subscription window, the
// trial anchor and the owner tier at evaluation time; no cached flag is
// authoritative.
package access

import (
	"time"

	"github.com/botfactory/botfactory/internal/domain/bot"
	"github.com/botfactory/botfactory/internal/domain/enduser"
)

// TrialDays is the grace window granted from the first interaction.
const TrialDays = 14

// ReasonSubscriptionExpired is the denial reason when both the subscription
// and the trial window have lapsed.
const ReasonSubscriptionExpired = "subscription-expired"

// Decision is the outcome of an access evaluation.
type Decision struct {
	Allowed bool
	Reason  string
	// OnTrial is set when access comes from the trial window rather than a
	// paid subscription; DaysRemaining is surfaced to the user.
	OnTrial       bool
	DaysRemaining int
}

// Allow evaluates the access rules in order: active subscription, then the
// 14-day trial window anchored at the first recorded interaction (falling
// back to account creation), then denial.
func Allow(u *enduser.EndUser, now time.Time) Decision {
	if u.SubscriptionActive(now) {
		return Decision{Allowed: true}
	}

	elapsed := int(now.Sub(u.TrialStart()).Hours() / 24)
	if elapsed <= TrialDays {
		remaining := TrialDays - elapsed
		if remaining < 0 {
			remaining = 0
		}
		return Decision{Allowed: true, OnTrial: true, DaysRemaining: remaining}
	}

	return Decision{Reason: ReasonSubscriptionExpired}
}

// LanguageAllowed applies the independent entitlement rule for reply
// languages: the bot's default language is always available; any other
// language requires a privileged owner tier, regardless of the end user's
// own subscription state.
func LanguageAllowed(b *bot.Bot, lang string) bool {
	if lang == bot.DefaultLanguage {
		return true
	}
	return bot.PrivilegedTier(b.OwnerTier)
}
