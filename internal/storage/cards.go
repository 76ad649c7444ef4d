package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// CachedCard is a card record persisted in the local cache. Colors are
// stored as a comma-joined string of color symbols.
type CachedCard struct {
	Name      string
	ManaValue float64
	Colors    []string
	TypeLine  string
	Rarity    string
	PriceUSD  *float64
	CachedAt  time.Time
}

// SaveCard inserts or updates a card in the cache.
func (db *DB) SaveCard(ctx context.Context, card *CachedCard) error {
	query := `
		INSERT INTO cards (
			name, mana_value, colors, type_line, rarity, price_usd, cached_at
		) VALUES (
			?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP
		)
		ON CONFLICT(name) DO UPDATE SET
			mana_value = excluded.mana_value,
			colors = excluded.colors,
			type_line = excluded.type_line,
			rarity = excluded.rarity,
			price_usd = excluded.price_usd,
			cached_at = CURRENT_TIMESTAMP
	`

	_, err := db.conn.ExecContext(ctx, query,
		card.Name, card.ManaValue, strings.Join(card.Colors, ","),
		card.TypeLine, card.Rarity, card.PriceUSD,
	)
	if err != nil {
		return fmt.Errorf("save card %q: %w", card.Name, err)
	}

	return nil
}

// GetCard retrieves a cached card by name. Returns (nil, nil) on a
// cache miss.
func (db *DB) GetCard(ctx context.Context, name string) (*CachedCard, error) {
	query := `
		SELECT name, mana_value, colors, type_line, rarity, price_usd, cached_at
		FROM cards
		WHERE name = ?
	`

	var (
		card   CachedCard
		colors string
	)
	err := db.conn.QueryRowContext(ctx, query, name).Scan(
		&card.Name, &card.ManaValue, &colors, &card.TypeLine,
		&card.Rarity, &card.PriceUSD, &card.CachedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get card %q: %w", name, err)
	}

	if colors != "" {
		card.Colors = strings.Split(colors, ",")
	}

	return &card, nil
}

// PruneStale deletes cards cached before the given cutoff and returns
// how many rows were removed.
func (db *DB) PruneStale(ctx context.Context, cutoff time.Time) (int64, error) {
	// cached_at is written by CURRENT_TIMESTAMP, so the cutoff must use
	// the same "YYYY-MM-DD HH:MM:SS" UTC text form to compare correctly.
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM cards WHERE cached_at < ?`, cutoff.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, fmt.Errorf("prune stale cards: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune stale cards: %w", err)
	}
	return n, nil
}

// CountCards returns the number of cached cards.
func (db *DB) CountCards(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}
