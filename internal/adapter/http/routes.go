package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all admin API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/healthz", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		r.Get("/bots", h.ListBots)
		r.Post("/bots", h.CreateBot)
		r.Get("/bots/{id}", h.GetBot)
		r.Delete("/bots/{id}", h.DeleteBot)

		r.Post("/bots/{id}/start", h.StartBot)
		r.Post("/bots/{id}/stop", h.StopBot)
		r.Post("/bots/{id}/restart", h.RestartBot)

		r.Get("/bots/{id}/users/{userID}/turns", h.ListTurns)
	})
}
