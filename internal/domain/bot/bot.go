// Package bot defines the tenant bot domain model.
package bot

import (
	"errors"
	"time"
)

// Tier is the subscription tier of the bot's owner. The owner tier gates
// feature availability (extra reply languages), independent of any end-user
// subscription.
type Tier string

const (
	TierFree    Tier = "free"
	TierStarter Tier = "starter"
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
	TierAdmin   Tier = "admin"
)

// PrivilegedTier reports whether t unlocks reply languages beyond the
// bot's default language.
func PrivilegedTier(t Tier) bool {
	switch t {
	case TierStarter, TierBasic, TierPremium, TierAdmin:
		return true
	}
	return false
}

// DefaultLanguage is the language every bot serves regardless of tier.
const DefaultLanguage = "uz"

// Bot represents one tenant's bot bound to a messaging-platform account.
// Token holds the decrypted platform credential in memory only; at rest it
// is stored AES-256-GCM encrypted (see crypto.go).
type Bot struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Token         string    `json:"-"`
	OwnerTier     Tier      `json:"owner_tier"`
	Active        bool      `json:"active"`
	AdminChatID   string    `json:"admin_chat_id,omitempty"`
	NotifyChannel string    `json:"notify_channel,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateRequest holds the fields required to register a new bot.
type CreateRequest struct {
	Name          string `json:"name"`
	Token         string `json:"token"`
	OwnerTier     Tier   `json:"owner_tier"`
	AdminChatID   string `json:"admin_chat_id,omitempty"`
	NotifyChannel string `json:"notify_channel,omitempty"`
}

// Validate checks that a CreateRequest is well-formed.
func (r *CreateRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if len(r.Token) < 20 {
		return errors.New("token is missing or too short")
	}
	if r.OwnerTier == "" {
		r.OwnerTier = TierFree
	}
	switch r.OwnerTier {
	case TierFree, TierStarter, TierBasic, TierPremium, TierAdmin:
	default:
		return errors.New("invalid owner tier: " + string(r.OwnerTier))
	}
	return nil
}
