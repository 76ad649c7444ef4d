// Package resolver turns parsed deck entries into card records via the
// Scryfall API, with per-run memoization and an optional persistent
// cache.
package resolver

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/ramonehamilton/deck-analyzer/internal/deck"
	"github.com/ramonehamilton/deck-analyzer/internal/scryfall"
	"github.com/ramonehamilton/deck-analyzer/internal/storage"
)

// CardRecord holds the card attributes the aggregator consumes. The
// open-ended Scryfall response is mapped to this fixed shape at the
// resolver boundary and never travels further.
type CardRecord struct {
	Name      string   `json:"name"`
	ManaValue float64  `json:"mana_value"`
	Colors    []string `json:"colors"`
	TypeLine  string   `json:"type_line"`
	Rarity    string   `json:"rarity"`
	PriceUSD  *float64 `json:"price_usd,omitempty"`
}

// ResolvedEntry pairs a resolved card with its requested quantity.
type ResolvedEntry struct {
	Card     *CardRecord `json:"card"`
	Quantity int         `json:"quantity"`
	SetCode  string      `json:"set_code,omitempty"`
}

// MissingEntry records a name that could not be resolved, with its
// requested quantity so totals stay exact.
type MissingEntry struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ResolvedDeck is the resolver output: resolved entries in deck order
// plus the names that resolved to nothing. The two partitions are
// exhaustive and non-overlapping, so
// TotalCards() == sum of the parsed deck's quantities.
type ResolvedDeck struct {
	Name     string          `json:"name,omitempty"`
	Resolved []ResolvedEntry `json:"resolved"`
	Missing  []MissingEntry  `json:"missing"`
}

// TotalCards returns the total requested quantity, resolved plus
// missing.
func (rd *ResolvedDeck) TotalCards() int {
	total := 0
	for _, e := range rd.Resolved {
		total += e.Quantity
	}
	for _, m := range rd.Missing {
		total += m.Quantity
	}
	return total
}

// UniqueCards returns the number of distinct entry names, resolved
// plus missing.
func (rd *ResolvedDeck) UniqueCards() int {
	return len(rd.Resolved) + len(rd.Missing)
}

// CardSource fetches a card by exact name. *scryfall.Client satisfies
// it; tests substitute stubs.
type CardSource interface {
	GetCardByName(ctx context.Context, name string) (*scryfall.Card, error)
}

// CardCache is the optional persistent cache. *storage.DB satisfies
// it.
type CardCache interface {
	GetCard(ctx context.Context, name string) (*storage.CachedCard, error)
	SaveCard(ctx context.Context, card *storage.CachedCard) error
}

// Options configures a Resolver.
type Options struct {
	// Cache enables persistent caching when non-nil.
	Cache CardCache

	// StaleThreshold is how old a persisted record may be before the
	// resolver refetches it. Default: 7 days.
	StaleThreshold time.Duration

	// Verbose logs per-card resolution progress.
	Verbose bool
}

// Resolver resolves deck entries to card records. Each unique name is
// resolved at most once per run regardless of quantity or repetition.
// The memo lives for one Resolve call only, so a Resolver is safe to
// share across concurrent runs.
type Resolver struct {
	source         CardSource
	cache          CardCache
	staleThreshold time.Duration
	verbose        bool
}

// New creates a Resolver backed by source.
func New(source CardSource, opts Options) *Resolver {
	if opts.StaleThreshold == 0 {
		opts.StaleThreshold = 7 * 24 * time.Hour
	}
	return &Resolver{
		source:         source,
		cache:          opts.Cache,
		staleThreshold: opts.StaleThreshold,
		verbose:        opts.Verbose,
	}
}

// Resolve resolves every entry of d, in deck order. Names the source
// cannot find, and names whose lookups exhaust their retries, are
// recorded as missing rather than failing the run. Only context
// cancellation aborts.
func (r *Resolver) Resolve(ctx context.Context, d *deck.Deck) (*ResolvedDeck, error) {
	rd := &ResolvedDeck{
		Name:     d.Name,
		Resolved: make([]ResolvedEntry, 0, len(d.Entries)),
		Missing:  make([]MissingEntry, 0),
	}

	memo := make(map[string]*CardRecord, len(d.Entries))

	for i, entry := range d.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if r.verbose {
			log.Printf("Resolving %d/%d: %s", i+1, len(d.Entries), entry.Name)
		}

		record, err := r.resolveName(ctx, memo, entry.Name)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !scryfall.IsNotFound(err) {
				log.Printf("Lookup failed for %q, treating as missing: %v", entry.Name, err)
			}
			rd.Missing = append(rd.Missing, MissingEntry{Name: entry.Name, Quantity: entry.Quantity})
			continue
		}

		rd.Resolved = append(rd.Resolved, ResolvedEntry{
			Card:     record,
			Quantity: entry.Quantity,
			SetCode:  entry.SetCode,
		})
	}

	return rd, nil
}

// resolveName returns the record for a single name, consulting the
// in-run memo, then the persistent cache, then the source.
func (r *Resolver) resolveName(ctx context.Context, memo map[string]*CardRecord, name string) (*CardRecord, error) {
	if record, ok := memo[name]; ok {
		return record, nil
	}

	if r.cache != nil {
		cached, err := r.cache.GetCard(ctx, name)
		if err != nil {
			log.Printf("Card cache read failed for %q: %v", name, err)
		} else if cached != nil && time.Since(cached.CachedAt) < r.staleThreshold {
			record := recordFromCache(cached)
			memo[name] = record
			return record, nil
		}
	}

	card, err := r.source.GetCardByName(ctx, name)
	if err != nil {
		return nil, err
	}

	record := recordFromCard(card)
	memo[name] = record

	if r.cache != nil {
		// Best effort; the record is already in hand.
		if err := r.cache.SaveCard(ctx, cacheFromRecord(record)); err != nil {
			log.Printf("Card cache write failed for %q: %v", name, err)
		}
	}

	return record, nil
}

// recordFromCard maps a Scryfall card to the fixed record shape. For
// multi-faced cards with no top-level colors the front face stands in,
// so every name yields exactly one representative record.
func recordFromCard(card *scryfall.Card) *CardRecord {
	colors := card.Colors
	if len(colors) == 0 && len(card.CardFaces) > 0 {
		colors = card.CardFaces[0].Colors
	}
	if colors == nil {
		colors = []string{}
	}

	typeLine := card.TypeLine
	if typeLine == "" && len(card.CardFaces) > 0 {
		typeLine = card.CardFaces[0].TypeLine
	}

	return &CardRecord{
		Name:      card.Name,
		ManaValue: card.CMC,
		Colors:    colors,
		TypeLine:  typeLine,
		Rarity:    card.Rarity,
		PriceUSD:  parsePrice(card.Prices.USD),
	}
}

func recordFromCache(cached *storage.CachedCard) *CardRecord {
	colors := cached.Colors
	if colors == nil {
		colors = []string{}
	}
	return &CardRecord{
		Name:      cached.Name,
		ManaValue: cached.ManaValue,
		Colors:    colors,
		TypeLine:  cached.TypeLine,
		Rarity:    cached.Rarity,
		PriceUSD:  cached.PriceUSD,
	}
}

func cacheFromRecord(record *CardRecord) *storage.CachedCard {
	return &storage.CachedCard{
		Name:      record.Name,
		ManaValue: record.ManaValue,
		Colors:    record.Colors,
		TypeLine:  record.TypeLine,
		Rarity:    record.Rarity,
		PriceUSD:  record.PriceUSD,
	}
}

// parsePrice converts Scryfall's string price to a float. Unparseable
// or absent prices are treated as unknown.
func parsePrice(s *string) *float64 {
	if s == nil || *s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil
	}
	return &v
}
