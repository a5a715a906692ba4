package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter assembles the service's HTTP surface.
func NewRouter(handler *Handler, jobHandler *JobHandler, corsOrigins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handler.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/edges", handler.GetEdges)
		r.Get("/matchups/stats", handler.GetMatchupStats)
		r.Get("/participants/unmatched", handler.GetUnmatchedParticipants)

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/runs", handler.GetJobRuns)
			r.Post("/backfill", jobHandler.TriggerBackfill)
			r.Post("/reconcile", jobHandler.TriggerReconcile)
			r.Post("/odds/sync", jobHandler.TriggerOddsSync)
			r.Post("/participants/sync", jobHandler.TriggerParticipantsSync)
			r.Post("/franchises/backfill", jobHandler.TriggerFranchiseBackfill)
		})
	})

	return r
}
