package analyzer

import (
	"context"
	"fmt"

	"github.com/ramonehamilton/deck-analyzer/internal/deck"
	"github.com/ramonehamilton/deck-analyzer/internal/resolver"
)

// DeckResolver resolves a parsed deck. *resolver.Resolver satisfies
// it; tests substitute stubs.
type DeckResolver interface {
	Resolve(ctx context.Context, d *deck.Deck) (*resolver.ResolvedDeck, error)
}

// Service runs the full pipeline: parse, resolve, aggregate.
type Service struct {
	resolver DeckResolver
	analyzer *Analyzer
}

// NewService creates the analysis service.
func NewService(deckResolver DeckResolver, a *Analyzer) *Service {
	if a == nil {
		a = New(Options{})
	}
	return &Service{resolver: deckResolver, analyzer: a}
}

// AnalyzeText parses decklist text and produces its statistics.
func (s *Service) AnalyzeText(ctx context.Context, text string) (*DeckStats, error) {
	d, err := deck.ParseText(text)
	if err != nil {
		return nil, err
	}
	return s.analyzeDeck(ctx, d)
}

// AnalyzeFile parses a decklist file and produces its statistics.
func (s *Service) AnalyzeFile(ctx context.Context, path string) (*DeckStats, error) {
	d, err := deck.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return s.analyzeDeck(ctx, d)
}

func (s *Service) analyzeDeck(ctx context.Context, d *deck.Deck) (*DeckStats, error) {
	rd, err := s.resolver.Resolve(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("resolve deck: %w", err)
	}
	return s.analyzer.Analyze(rd), nil
}
