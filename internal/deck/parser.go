// Package deck parses plain-text decklists into ordered card entries.
package deck

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ErrEmptyDecklist is returned when parsing produces no entries at all.
var ErrEmptyDecklist = errors.New("decklist contains no cards")

// Entry is a single card line: a name, how many copies, and the set
// code when the line carried one.
type Entry struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	SetCode  string `json:"set_code,omitempty"`
}

// Deck is an ordered list of entries. Order is first occurrence in the
// input; repeated names merge into the first entry by summing
// quantities.
type Deck struct {
	Name    string   `json:"name,omitempty"`
	Entries []*Entry `json:"entries"`

	byName map[string]*Entry
}

// TotalCards returns the sum of all entry quantities.
func (d *Deck) TotalCards() int {
	total := 0
	for _, e := range d.Entries {
		total += e.Quantity
	}
	return total
}

// UniqueCards returns the number of distinct card names.
func (d *Deck) UniqueCards() int {
	return len(d.Entries)
}

// Names returns all card names in deck order.
func (d *Deck) Names() []string {
	names := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		names[i] = e.Name
	}
	return names
}

// String renders the deck in canonical "quantity name" form, one entry
// per line. Parsing the result yields an equivalent deck.
func (d *Deck) String() string {
	var b strings.Builder
	for _, e := range d.Entries {
		fmt.Fprintf(&b, "%d %s\n", e.Quantity, e.Name)
	}
	return b.String()
}

func (d *Deck) add(name string, quantity int, setCode string) {
	if existing, ok := d.byName[name]; ok {
		existing.Quantity += quantity
		if existing.SetCode == "" {
			existing.SetCode = setCode
		}
		return
	}
	entry := &Entry{Name: name, Quantity: quantity, SetCode: setCode}
	d.byName[name] = entry
	d.Entries = append(d.Entries, entry)
}

var (
	// "4 Lightning Bolt (M21) 123 *F*" or "4 Lightning Bolt (M21)"
	setLineRegex = regexp.MustCompile(`^(\d+)[xX]?\s+(.+?)\s+\(([A-Za-z0-9]{2,6})\)(?:\s+[0-9A-Za-z★†]+)?(?:\s+\*[A-Z]*\*)?$`)
	// "4 Lightning Bolt" or "4x Lightning Bolt"
	quantityLineRegex = regexp.MustCompile(`^(\d+)[xX]?\s+(.+)$`)
	// Section headers and the Arena "Deck" header are skipped, not parsed.
	sectionHeaderRegex = regexp.MustCompile(`(?i)^(deck|sideboard|maybeboard|commanders?|companion)\s*:?$`)
)

// ParseText parses decklist text into a Deck.
//
// Recognized line shapes, in priority order:
//
//	4 Lightning Bolt (M21) 123
//	4 Lightning Bolt
//	4x Lightning Bolt
//	Lightning Bolt
//
// Blank lines, comment lines (# or //), and section headers are
// skipped. A line whose leading token is zero or not a valid quantity
// is taken as a bare card name with quantity 1; per-line parsing never
// fails. ErrEmptyDecklist is returned only when the whole input yields
// no entries.
func ParseText(input string) (*Deck, error) {
	d := &Deck{byName: make(map[string]*Entry)}

	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if shouldIgnoreLine(line) {
			continue
		}

		name, quantity, setCode := parseLine(line)
		d.add(name, quantity, setCode)
	}

	if len(d.Entries) == 0 {
		return nil, ErrEmptyDecklist
	}

	return d, nil
}

// ParseFile reads and parses a decklist file. The deck name is derived
// from the file stem: underscores and hyphens become spaces and each
// word is capitalized.
func ParseFile(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read decklist: %w", err)
	}

	d, err := ParseText(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	d.Name = deckNameFromPath(path)
	return d, nil
}

// parseLine extracts (name, quantity, setCode) from a single non-empty
// line. Falls back to a bare name with quantity 1 when no leading
// quantity parses.
func parseLine(line string) (name string, quantity int, setCode string) {
	if matches := setLineRegex.FindStringSubmatch(line); matches != nil {
		if q, err := strconv.Atoi(matches[1]); err == nil && q > 0 {
			return strings.TrimSpace(matches[2]), q, strings.ToUpper(matches[3])
		}
	}

	if matches := quantityLineRegex.FindStringSubmatch(line); matches != nil {
		if q, err := strconv.Atoi(matches[1]); err == nil && q > 0 {
			return strings.TrimSpace(matches[2]), q, ""
		}
	}

	return line, 1, ""
}

func shouldIgnoreLine(line string) bool {
	if line == "" {
		return true
	}
	if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
		return true
	}
	return sectionHeaderRegex.MatchString(line)
}

func deckNameFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)

	words := strings.Fields(stem)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
