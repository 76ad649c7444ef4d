package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/deck-analyzer/internal/api/handlers"
	"github.com/ramonehamilton/deck-analyzer/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		deckHandler := handlers.NewDeckHandler(s.service)
		r.Route("/decks", func(r chi.Router) {
			r.Post("/analyze", deckHandler.AnalyzeDeck)
			r.Post("/parse", deckHandler.ParseDeck)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "deck-analyzer-api",
	})
}
