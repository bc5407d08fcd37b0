package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/vocab-api/internal/api/middleware"
	"github.com/phrazzld/vocab-api/internal/service/review"
)

// RegisterRoutes mounts the review API on r. Every route requires the
// X-User-ID header.
func RegisterRoutes(r chi.Router, svc review.Service, logger *slog.Logger) {
	cards := NewCardHandler(svc, logger)
	sessions := NewSessionHandler(svc, logger)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Route("/cards", func(r chi.Router) {
			r.Post("/", cards.EnrollCard)
			r.Get("/", cards.ListCards)
			r.Get("/queue", cards.PreviewQueue)
			r.Get("/{id}", cards.GetCard)
			r.Post("/{id}/suspend", cards.SuspendCard)
			r.Post("/{id}/unsuspend", cards.UnsuspendCard)
			r.Post("/{id}/reset", cards.ResetCard)
			r.Post("/{id}/postpone", cards.PostponeCard)
		})

		r.Get("/modes", cards.AvailableModes)
		r.Get("/preferences", cards.GetPreferences)
		r.Put("/preferences", cards.UpdatePreferences)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessions.StartSession)
			r.Get("/{id}", sessions.GetSession)
			r.Post("/{id}/reviews", sessions.SubmitReview)
			r.Post("/{id}/skip", sessions.SkipCard)
			r.Post("/{id}/pause", sessions.PauseSession)
			r.Post("/{id}/resume", sessions.ResumeSession)
			r.Post("/{id}/cancel", sessions.CancelSession)
			r.Post("/{id}/complete", sessions.CompleteSession)
			r.Get("/{id}/stats", sessions.SessionStatistics)
		})
	})
}
