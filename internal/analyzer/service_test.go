package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/ramonehamilton/deck-analyzer/internal/deck"
	"github.com/ramonehamilton/deck-analyzer/internal/resolver"
)

type stubResolver struct {
	lastDeck *deck.Deck
	result   *resolver.ResolvedDeck
	err      error
}

func (s *stubResolver) Resolve(_ context.Context, d *deck.Deck) (*resolver.ResolvedDeck, error) {
	s.lastDeck = d
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestServiceAnalyzeText(t *testing.T) {
	stub := &stubResolver{
		result: &resolver.ResolvedDeck{
			Resolved: []resolver.ResolvedEntry{
				resolved(card("Lightning Bolt", 1, []string{"R"}, "Instant", "common", nil), 4),
			},
		},
	}
	service := NewService(stub, nil)

	stats, err := service.AnalyzeText(context.Background(), "4 Lightning Bolt")
	if err != nil {
		t.Fatalf("AnalyzeText() error = %v", err)
	}

	if stub.lastDeck == nil || stub.lastDeck.TotalCards() != 4 {
		t.Error("resolver did not receive the parsed deck")
	}
	if stats.TotalCards != 4 {
		t.Errorf("total cards = %d, want 4", stats.TotalCards)
	}
}

func TestServiceAnalyzeText_EmptyInput(t *testing.T) {
	service := NewService(&stubResolver{}, nil)

	if _, err := service.AnalyzeText(context.Background(), "# nothing here"); !errors.Is(err, deck.ErrEmptyDecklist) {
		t.Errorf("error = %v, want ErrEmptyDecklist", err)
	}
}

func TestServiceAnalyzeText_ResolveError(t *testing.T) {
	wantErr := errors.New("network down")
	service := NewService(&stubResolver{err: wantErr}, nil)

	if _, err := service.AnalyzeText(context.Background(), "4 Lightning Bolt"); !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want wrapped %v", err, wantErr)
	}
}
