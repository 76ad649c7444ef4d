package storage

import (
	"context"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(DefaultConfig(":memory:"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSaveAndGetCard(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	price := 1.50
	card := &CachedCard{
		Name:      "Lightning Bolt",
		ManaValue: 1,
		Colors:    []string{"R"},
		TypeLine:  "Instant",
		Rarity:    "common",
		PriceUSD:  &price,
	}

	if err := db.SaveCard(ctx, card); err != nil {
		t.Fatalf("SaveCard() error = %v", err)
	}

	got, err := db.GetCard(ctx, "Lightning Bolt")
	if err != nil {
		t.Fatalf("GetCard() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetCard() = nil, want cached card")
	}

	if got.Name != card.Name {
		t.Errorf("name = %q, want %q", got.Name, card.Name)
	}
	if got.ManaValue != card.ManaValue {
		t.Errorf("mana value = %v, want %v", got.ManaValue, card.ManaValue)
	}
	if len(got.Colors) != 1 || got.Colors[0] != "R" {
		t.Errorf("colors = %v, want [R]", got.Colors)
	}
	if got.TypeLine != card.TypeLine {
		t.Errorf("type line = %q, want %q", got.TypeLine, card.TypeLine)
	}
	if got.Rarity != card.Rarity {
		t.Errorf("rarity = %q, want %q", got.Rarity, card.Rarity)
	}
	if got.PriceUSD == nil || *got.PriceUSD != price {
		t.Errorf("price = %v, want %v", got.PriceUSD, price)
	}
	if got.CachedAt.IsZero() {
		t.Error("cached_at not set")
	}
}

func TestGetCard_Miss(t *testing.T) {
	db := openTestDB(t)

	got, err := db.GetCard(context.Background(), "Nonexistent Card")
	if err != nil {
		t.Fatalf("GetCard() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetCard() = %+v, want nil on miss", got)
	}
}

func TestSaveCard_Upsert(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.SaveCard(ctx, &CachedCard{Name: "Sol Ring", ManaValue: 1, TypeLine: "Artifact", Rarity: "uncommon"}); err != nil {
		t.Fatalf("first SaveCard() error = %v", err)
	}

	newPrice := 2.25
	if err := db.SaveCard(ctx, &CachedCard{Name: "Sol Ring", ManaValue: 1, TypeLine: "Artifact", Rarity: "uncommon", PriceUSD: &newPrice}); err != nil {
		t.Fatalf("second SaveCard() error = %v", err)
	}

	n, err := db.CountCards(ctx)
	if err != nil {
		t.Fatalf("CountCards() error = %v", err)
	}
	if n != 1 {
		t.Errorf("card count = %d, want 1 after upsert", n)
	}

	got, err := db.GetCard(ctx, "Sol Ring")
	if err != nil {
		t.Fatalf("GetCard() error = %v", err)
	}
	if got.PriceUSD == nil || *got.PriceUSD != newPrice {
		t.Errorf("price after upsert = %v, want %v", got.PriceUSD, newPrice)
	}
}

func TestSaveCard_NoColors(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.SaveCard(ctx, &CachedCard{Name: "Wastes", TypeLine: "Basic Land", Rarity: "common"}); err != nil {
		t.Fatalf("SaveCard() error = %v", err)
	}

	got, err := db.GetCard(ctx, "Wastes")
	if err != nil {
		t.Fatalf("GetCard() error = %v", err)
	}
	if len(got.Colors) != 0 {
		t.Errorf("colors = %v, want empty for colorless card", got.Colors)
	}
}

func TestPruneStale(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.SaveCard(ctx, &CachedCard{Name: "Fresh Card", TypeLine: "Instant", Rarity: "common"}); err != nil {
		t.Fatalf("SaveCard() error = %v", err)
	}

	// A cutoff in the past must keep the fresh row.
	n, err := db.PruneStale(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("PruneStale() error = %v", err)
	}
	if n != 0 {
		t.Errorf("pruned = %d, want 0 with past cutoff", n)
	}

	// A cutoff in the future removes it.
	n, err = db.PruneStale(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("PruneStale() error = %v", err)
	}
	if n != 1 {
		t.Errorf("pruned = %d, want 1 with future cutoff", n)
	}

	count, err := db.CountCards(ctx)
	if err != nil {
		t.Fatalf("CountCards() error = %v", err)
	}
	if count != 0 {
		t.Errorf("card count = %d, want 0 after prune", count)
	}
}
