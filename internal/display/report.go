// Package display renders deck statistics as a plain-text report.
package display

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ramonehamilton/deck-analyzer/internal/analyzer"
)

const maxBarWidth = 20

// WriteReport writes a formatted report of stats to w.
func WriteReport(w io.Writer, stats *analyzer.DeckStats) {
	title := "Deck Analysis"
	if stats.DeckName != "" {
		title = fmt.Sprintf("Deck Analysis: %s", stats.DeckName)
	}
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("=", len(title)))

	fmt.Fprintf(w, "\nBasic Statistics\n")
	fmt.Fprintf(w, "  Total cards:  %d\n", stats.TotalCards)
	fmt.Fprintf(w, "  Unique cards: %d\n", stats.UniqueCards)
	fmt.Fprintf(w, "  Lands:        %d (%.1f%%)\n", stats.Lands, stats.LandPercentage)
	fmt.Fprintf(w, "  Nonlands:     %d (%.1f%%)\n", stats.Nonlands, percent(stats.Nonlands, stats.TotalCards))

	writeColors(w, stats)
	writeManaCurve(w, stats)
	writeRarity(w, stats)
	writeTypes(w, stats)
	writeSets(w, stats)
	writePrices(w, stats)
	writeMissing(w, stats)

	fmt.Fprintf(w, "\nCoverage: %.1f%% of requested cards resolved\n", stats.CoveragePercent)
}

func writeColors(w io.Writer, stats *analyzer.DeckStats) {
	fmt.Fprintf(w, "\nColor Distribution\n")
	if len(stats.ColorCounts) == 0 {
		fmt.Fprintf(w, "  Colorless deck\n")
		return
	}
	for _, symbol := range sortedKeys(stats.ColorCounts) {
		count := stats.ColorCounts[symbol]
		name := symbol
		if full, ok := analyzer.ColorNames[symbol]; ok {
			name = full
		}
		fmt.Fprintf(w, "  %s (%s): %d cards (%.1f%%)\n", name, symbol, count, percent(count, stats.TotalCards))
	}
}

func writeManaCurve(w io.Writer, stats *analyzer.DeckStats) {
	fmt.Fprintf(w, "\nMana Curve (nonlands only)\n")
	if stats.Nonlands == 0 {
		fmt.Fprintf(w, "  No nonland cards to analyze\n")
		return
	}
	fmt.Fprintf(w, "  Average mana value: %.2f\n", stats.AverageManaValue)
	for _, bucket := range analyzer.CurveBuckets() {
		count := stats.ManaCurve[bucket]
		bar := strings.Repeat("#", minInt(count, maxBarWidth))
		fmt.Fprintf(w, "  %3s: %2d |%s\n", bucket, count, bar)
	}
}

func writeRarity(w io.Writer, stats *analyzer.DeckStats) {
	if len(stats.RarityCounts) == 0 {
		return
	}
	fmt.Fprintf(w, "\nRarity Breakdown\n")
	for _, rarity := range rarityOrder(stats.RarityCounts) {
		count := stats.RarityCounts[rarity]
		fmt.Fprintf(w, "  %-10s %d (%.1f%%)\n", rarity+":", count, percent(count, stats.TotalCards))
	}
}

func writeTypes(w io.Writer, stats *analyzer.DeckStats) {
	if len(stats.TypeCounts) == 0 {
		return
	}
	fmt.Fprintf(w, "\nCard Types\n")
	for _, row := range sortedByCountDesc(stats.TypeCounts) {
		fmt.Fprintf(w, "  %-13s %d (%.1f%%)\n", row.key+":", row.count, percent(row.count, stats.TotalCards))
	}
}

func writeSets(w io.Writer, stats *analyzer.DeckStats) {
	if len(stats.SetCounts) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSet Breakdown\n")
	for _, row := range sortedByCountDesc(stats.SetCounts) {
		fmt.Fprintf(w, "  %-8s %d\n", row.key+":", row.count)
	}
}

func writePrices(w io.Writer, stats *analyzer.DeckStats) {
	if len(stats.TopPriciest) == 0 {
		return
	}
	fmt.Fprintf(w, "\nMost Expensive Cards (total value $%.2f)\n", stats.TotalValueUSD)
	for i, card := range stats.TopPriciest {
		fmt.Fprintf(w, "  %2d. %-32s $%.2f\n", i+1, card.Name, card.PriceUSD)
	}
}

func writeMissing(w io.Writer, stats *analyzer.DeckStats) {
	if len(stats.MissingCards) == 0 {
		return
	}
	fmt.Fprintf(w, "\nMissing Cards\n")
	fmt.Fprintf(w, "  Could not find information for %d cards:\n", len(stats.MissingCards))
	for _, name := range stats.MissingCards {
		fmt.Fprintf(w, "  - %s\n", name)
	}
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// rarityOrder returns present rarities in the conventional order, with
// anything unrecognized appended alphabetically.
func rarityOrder(counts map[string]int) []string {
	conventional := []string{"common", "uncommon", "rare", "mythic", "special", "bonus"}
	seen := make(map[string]bool)
	var order []string
	for _, r := range conventional {
		if _, ok := counts[r]; ok {
			order = append(order, r)
			seen[r] = true
		}
	}
	var rest []string
	for r := range counts {
		if !seen[r] {
			rest = append(rest, r)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

type countRow struct {
	key   string
	count int
}

func sortedByCountDesc(m map[string]int) []countRow {
	rows := make([]countRow, 0, len(m))
	for k, v := range m {
		rows = append(rows, countRow{k, v})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].key < rows[j].key
	})
	return rows
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
