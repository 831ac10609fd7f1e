// Package http exposes the admin API for managing tenant bots.
package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/botfactory/botfactory/internal/domain/bot"
	"github.com/botfactory/botfactory/internal/port/database"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Runtime is the subset of the bot manager the admin API drives.
type Runtime interface {
	Start(ctx context.Context, botID string) error
	Stop(botID string) error
	Restart(ctx context.Context, botID string) error
	Running() []string
}

// Handlers holds dependencies for all admin API handlers.
type Handlers struct {
	store   database.Store
	runtime Runtime
}

// NewHandlers creates the handler set.
func NewHandlers(store database.Store, runtime Runtime) *Handlers {
	return &Handlers{store: store, runtime: runtime}
}

// ListBots returns all registered bots, running ones flagged.
func (h *Handlers) ListBots(w http.ResponseWriter, r *http.Request) {
	bots, err := h.store.ListBots(r.Context())
	if err != nil {
		writeDomainError(w, err, "failed to list bots")
		return
	}

	running := make(map[string]bool)
	for _, id := range h.runtime.Running() {
		running[id] = true
	}

	type botView struct {
		bot.Bot
		Running bool `json:"running"`
	}
	views := make([]botView, 0, len(bots))
	for _, b := range bots {
		views = append(views, botView{Bot: b, Running: running[b.ID]})
	}
	writeJSON(w, http.StatusOK, views)
}

// CreateBot registers a new bot. The bot starts inactive; activation is a
// separate call so a bad token never takes down registration.
func (h *Handlers) CreateBot(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[bot.CreateRequest](w, r, maxBodyBytes)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.store.CreateBot(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "failed to create bot")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// GetBot returns one bot by id.
func (h *Handlers) GetBot(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	b, err := h.store.GetBot(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "bot not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// DeleteBot stops the bot if running and removes it with its users, turns
// and knowledge (cascade).
func (h *Handlers) DeleteBot(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	_ = h.runtime.Stop(id)

	if err := h.store.DeleteBot(r.Context(), id); err != nil {
		writeDomainError(w, err, "bot not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartBot marks the bot active and launches its polling loop.
func (h *Handlers) StartBot(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")

	if err := h.runtime.Start(r.Context(), id); err != nil {
		writeDomainError(w, err, "bot not found")
		return
	}
	if err := h.store.SetBotActive(r.Context(), id, true); err != nil {
		writeDomainError(w, err, "bot not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

// StopBot marks the bot inactive and signals its polling loop to exit.
// Stopping a bot that is not running still clears the active flag.
func (h *Handlers) StopBot(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")

	if err := h.runtime.Stop(id); err != nil {
		writeDomainError(w, err, "bot not found")
		return
	}
	if err := h.store.SetBotActive(r.Context(), id, false); err != nil {
		writeDomainError(w, err, "bot not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

// RestartBot stops and relaunches the bot's polling loop, re-reading its
// record so credential or tier changes take effect.
func (h *Handlers) RestartBot(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")

	if err := h.runtime.Restart(r.Context(), id); err != nil {
		writeDomainError(w, err, "bot not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "restarted"})
}

// ListTurns returns the recent conversation log for one end user of a bot.
func (h *Handlers) ListTurns(w http.ResponseWriter, r *http.Request) {
	botID := urlParam(r, "id")
	userID := urlParam(r, "userID")

	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	turns, err := h.store.RecentTurns(r.Context(), botID, userID, limit)
	if err != nil {
		writeDomainError(w, err, "failed to list turns")
		return
	}
	writeJSON(w, http.StatusOK, turns)
}

// Health reports process liveness and the number of running bots.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"running": len(h.runtime.Running()),
	})
}
