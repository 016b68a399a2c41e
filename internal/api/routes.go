// internal/api/routes.go
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the assistant API on r.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Post("/messages", h.PostMessage)
			r.Post("/document", h.PostDocument)
			r.Post("/reset", h.ResetSession)
			r.Get("/letter", h.GetLetter)
			r.Get("/letter.pdf", h.GetLetterPDF)
		})
	})

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", promhttp.Handler())
}
