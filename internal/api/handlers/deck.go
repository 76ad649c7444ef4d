// Package handlers implements the REST API request handlers.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ramonehamilton/deck-analyzer/internal/analyzer"
	"github.com/ramonehamilton/deck-analyzer/internal/api/response"
	"github.com/ramonehamilton/deck-analyzer/internal/deck"
)

// AnalyzeService runs a full decklist analysis.
type AnalyzeService interface {
	AnalyzeText(ctx context.Context, text string) (*analyzer.DeckStats, error)
}

// DeckHandler handles deck analysis requests.
type DeckHandler struct {
	service AnalyzeService
}

// NewDeckHandler creates a new deck handler.
func NewDeckHandler(service AnalyzeService) *DeckHandler {
	return &DeckHandler{service: service}
}

// analyzeRequest is the JSON request body for AnalyzeDeck.
type analyzeRequest struct {
	Decklist string `json:"decklist"`
}

// AnalyzeDeck handles POST /api/v1/decks/analyze. The decklist arrives
// either as a JSON body {"decklist": "..."} or as a raw text/plain
// body.
func (h *DeckHandler) AnalyzeDeck(w http.ResponseWriter, r *http.Request) {
	text, err := decklistFromRequest(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	stats, err := h.service.AnalyzeText(r.Context(), text)
	if err != nil {
		if errors.Is(err, deck.ErrEmptyDecklist) {
			response.UnprocessableEntity(w, err)
			return
		}
		response.InternalError(w, err)
		return
	}

	response.Success(w, stats)
}

// ParseDeck handles POST /api/v1/decks/parse: parse only, no lookups.
func (h *DeckHandler) ParseDeck(w http.ResponseWriter, r *http.Request) {
	text, err := decklistFromRequest(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	d, err := deck.ParseText(text)
	if err != nil {
		if errors.Is(err, deck.ErrEmptyDecklist) {
			response.UnprocessableEntity(w, err)
			return
		}
		response.InternalError(w, err)
		return
	}

	response.Success(w, d)
}

func decklistFromRequest(r *http.Request) (string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("read request body: %w", err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("empty request body")
	}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var req analyzeRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return "", fmt.Errorf("decode request body: %w", err)
		}
		if strings.TrimSpace(req.Decklist) == "" {
			return "", fmt.Errorf("decklist field is required")
		}
		return req.Decklist, nil
	}

	return string(body), nil
}
