// Package analyzer folds a resolved deck into descriptive statistics.
package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ramonehamilton/deck-analyzer/internal/resolver"
)

// CurveCeiling is the mana value at which curve buckets collapse into
// the "7+" bucket.
const CurveCeiling = 7

// ColorNames maps color symbols to display names.
var ColorNames = map[string]string{
	"W": "White",
	"U": "Blue",
	"B": "Black",
	"R": "Red",
	"G": "Green",
}

// primaryTypes are the card supertypes recognized for the type
// distribution, in match priority order.
var primaryTypes = []string{
	"Land", "Creature", "Planeswalker", "Instant", "Sorcery",
	"Artifact", "Enchantment", "Battle", "Kindred",
}

// PricedCard is one row of the priciest-cards ranking.
type PricedCard struct {
	Name     string  `json:"name"`
	PriceUSD float64 `json:"price_usd"`
	Quantity int     `json:"quantity"`
}

// DeckStats is the statistics bundle derived from a resolved deck. All
// fields are pure functions of the input; every percentage in the
// bundle is computed against TotalCards (resolved plus missing), not
// against the resolved count.
type DeckStats struct {
	DeckName    string `json:"deck_name,omitempty"`
	TotalCards  int    `json:"total_cards"`
	UniqueCards int    `json:"unique_cards"`

	Lands          int     `json:"lands"`
	Nonlands       int     `json:"nonlands"`
	LandPercentage float64 `json:"land_percentage"`

	// ColorCounts is quantity-weighted; colorless cards contribute to
	// no bucket but still count toward totals.
	ColorCounts map[string]int `json:"color_counts"`

	// ManaCurve buckets "0".."6" and "7+", nonland cards only,
	// quantity-weighted.
	ManaCurve map[string]int `json:"mana_curve"`

	// AverageManaValue is over nonland cards only; 0 when the deck has
	// no nonland cards.
	AverageManaValue float64 `json:"average_mana_value"`

	RarityCounts map[string]int `json:"rarity_counts"`
	TypeCounts   map[string]int `json:"type_counts"`
	SetCounts    map[string]int `json:"set_counts,omitempty"`

	TotalValueUSD float64      `json:"total_value_usd"`
	TopPriciest   []PricedCard `json:"top_priciest"`

	MissingCards    []string `json:"missing_cards"`
	CoveragePercent float64  `json:"coverage_percent"`
}

// LandPredicate reports whether a type line describes a land.
type LandPredicate func(typeLine string) bool

// WordLandPredicate matches "Land" as a whole word in the supertype
// segment of the type line (the text before the em dash), so subtype
// text never triggers it.
func WordLandPredicate(typeLine string) bool {
	super, _, _ := strings.Cut(typeLine, "—")
	for _, token := range strings.Fields(super) {
		if token == "Land" {
			return true
		}
	}
	return false
}

// SubstringLandPredicate matches "Land" anywhere in the type line,
// the looser upstream convention.
func SubstringLandPredicate(typeLine string) bool {
	return strings.Contains(typeLine, "Land")
}

// Options configures an Analyzer.
type Options struct {
	// TopPriciest is how many cards the price ranking keeps.
	// Default: 10.
	TopPriciest int

	// IsLand decides land detection. Default: WordLandPredicate.
	IsLand LandPredicate
}

// Analyzer computes DeckStats from resolved decks.
type Analyzer struct {
	topPriciest int
	isLand      LandPredicate
}

// New creates an Analyzer with the given options.
func New(opts Options) *Analyzer {
	if opts.TopPriciest <= 0 {
		opts.TopPriciest = 10
	}
	if opts.IsLand == nil {
		opts.IsLand = WordLandPredicate
	}
	return &Analyzer{
		topPriciest: opts.TopPriciest,
		isLand:      opts.IsLand,
	}
}

// Analyze folds rd into a DeckStats bundle in a single pass. Degenerate
// inputs (no nonland cards, empty color sets) produce zero-valued
// fields, never errors.
func (a *Analyzer) Analyze(rd *resolver.ResolvedDeck) *DeckStats {
	stats := &DeckStats{
		DeckName:     rd.Name,
		TotalCards:   rd.TotalCards(),
		UniqueCards:  rd.UniqueCards(),
		ColorCounts:  make(map[string]int),
		ManaCurve:    make(map[string]int),
		RarityCounts: make(map[string]int),
		TypeCounts:   make(map[string]int),
		SetCounts:    make(map[string]int),
		MissingCards: make([]string, 0, len(rd.Missing)),
		TopPriciest:  []PricedCard{},
	}

	var (
		manaValueSum float64
		priced       []PricedCard
		haveSetCodes bool
	)

	for _, entry := range rd.Resolved {
		card := entry.Card
		qty := entry.Quantity

		if a.isLand(card.TypeLine) {
			stats.Lands += qty
		} else {
			stats.Nonlands += qty
			manaValueSum += card.ManaValue * float64(qty)
			stats.ManaCurve[curveBucket(card.ManaValue)] += qty
		}

		for _, color := range card.Colors {
			stats.ColorCounts[color] += qty
		}

		if card.Rarity != "" {
			stats.RarityCounts[card.Rarity] += qty
		}

		stats.TypeCounts[primaryType(card.TypeLine)] += qty

		if entry.SetCode != "" {
			haveSetCodes = true
			stats.SetCounts[entry.SetCode] += qty
		} else {
			stats.SetCounts["Unknown"] += qty
		}

		if card.PriceUSD != nil {
			stats.TotalValueUSD += *card.PriceUSD * float64(qty)
			priced = append(priced, PricedCard{
				Name:     card.Name,
				PriceUSD: *card.PriceUSD,
				Quantity: qty,
			})
		}
	}

	missingQuantity := 0
	for _, m := range rd.Missing {
		stats.MissingCards = append(stats.MissingCards, m.Name)
		missingQuantity += m.Quantity
	}

	if stats.Nonlands > 0 {
		stats.AverageManaValue = manaValueSum / float64(stats.Nonlands)
	}

	if stats.TotalCards > 0 {
		stats.LandPercentage = float64(stats.Lands) / float64(stats.TotalCards) * 100
		stats.CoveragePercent = float64(stats.TotalCards-missingQuantity) / float64(stats.TotalCards) * 100
	}

	// Price ranking: descending by price, name ascending on ties for a
	// deterministic order.
	sort.Slice(priced, func(i, j int) bool {
		if priced[i].PriceUSD != priced[j].PriceUSD {
			return priced[i].PriceUSD > priced[j].PriceUSD
		}
		return priced[i].Name < priced[j].Name
	})
	if len(priced) > a.topPriciest {
		priced = priced[:a.topPriciest]
	}
	stats.TopPriciest = priced

	// Drop the set breakdown entirely when no line carried a set code;
	// an all-"Unknown" table says nothing.
	if !haveSetCodes {
		stats.SetCounts = nil
	}

	return stats
}

// curveBucket maps a mana value to its curve bucket label.
func curveBucket(manaValue float64) string {
	if manaValue >= CurveCeiling {
		return "7+"
	}
	if manaValue < 0 {
		manaValue = 0
	}
	return fmt.Sprintf("%d", int(manaValue))
}

// CurveBuckets returns the bucket labels in display order.
func CurveBuckets() []string {
	buckets := make([]string, 0, CurveCeiling+1)
	for i := 0; i < CurveCeiling; i++ {
		buckets = append(buckets, fmt.Sprintf("%d", i))
	}
	return append(buckets, "7+")
}

// primaryType extracts the primary card type from a type line:
// "Legendary Creature — Human Noble" yields "Creature", "Basic Land —
// Swamp" yields "Land".
func primaryType(typeLine string) string {
	if typeLine == "" {
		return "Unknown"
	}

	super, _, _ := strings.Cut(typeLine, "—")
	fields := strings.Fields(super)

	for _, want := range primaryTypes {
		for _, field := range fields {
			if field == want {
				return want
			}
		}
	}

	if len(fields) > 0 {
		return fields[len(fields)-1]
	}
	return "Unknown"
}
