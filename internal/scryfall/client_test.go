package scryfall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testClient(baseURL string, maxRetries int) *Client {
	return NewClient(&Config{
		BaseURL:    baseURL,
		MaxRetries: maxRetries,
		// Effectively unlimited so tests are not throttled.
		Limiter: rate.NewLimiter(rate.Inf, 1),
	})
}

func TestGetCardByName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cards/named" {
			t.Errorf("path = %q, want /cards/named", r.URL.Path)
		}
		if got := r.URL.Query().Get("exact"); got != "Lightning Bolt" {
			t.Errorf("exact = %q, want %q", got, "Lightning Bolt")
		}
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("request missing User-Agent header")
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "abc-123",
			"name": "Lightning Bolt",
			"cmc": 1,
			"type_line": "Instant",
			"colors": ["R"],
			"set": "m21",
			"rarity": "common",
			"prices": {"usd": "1.50"}
		}`))
	}))
	defer server.Close()

	client := testClient(server.URL, 0)

	card, err := client.GetCardByName(context.Background(), "Lightning Bolt")
	if err != nil {
		t.Fatalf("GetCardByName() error = %v", err)
	}

	if card.Name != "Lightning Bolt" {
		t.Errorf("name = %q, want %q", card.Name, "Lightning Bolt")
	}
	if card.CMC != 1 {
		t.Errorf("cmc = %v, want 1", card.CMC)
	}
	if card.TypeLine != "Instant" {
		t.Errorf("type line = %q, want Instant", card.TypeLine)
	}
	if len(card.Colors) != 1 || card.Colors[0] != "R" {
		t.Errorf("colors = %v, want [R]", card.Colors)
	}
	if card.Prices.USD == nil || *card.Prices.USD != "1.50" {
		t.Errorf("price = %v, want 1.50", card.Prices.USD)
	}
}

func TestGetCardByName_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"object":"error","code":"not_found","status":404,"details":"No card found"}`))
	}))
	defer server.Close()

	client := testClient(server.URL, 0)

	_, err := client.GetCardByName(context.Background(), "Not A Real Card")
	if err == nil {
		t.Fatal("GetCardByName() should error on 404")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true even through wrapping", err)
	}
}

func TestGetCardByName_RetriesOn429(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"name": "Shock", "cmc": 1, "type_line": "Instant"}`))
	}))
	defer server.Close()

	client := testClient(server.URL, 3)

	card, err := client.GetCardByName(context.Background(), "Shock")
	if err != nil {
		t.Fatalf("GetCardByName() error = %v", err)
	}
	if card.Name != "Shock" {
		t.Errorf("name = %q, want Shock", card.Name)
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Errorf("attempts = %d, want 2 (one 429, one success)", got)
	}
}

func TestGetCardByName_RetriesExhausted(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := testClient(server.URL, 2)

	if _, err := client.GetCardByName(context.Background(), "Shock"); err == nil {
		t.Fatal("GetCardByName() should error once retries are exhausted")
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("attempts = %d, want 3 (initial plus two retries)", got)
	}
}

func TestGetCardByName_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"object":"error","code":"bad_request","status":400,"details":"Invalid query"}`))
	}))
	defer server.Close()

	client := testClient(server.URL, 0)

	_, err := client.GetCardByName(context.Background(), "???")
	if err == nil {
		t.Fatal("GetCardByName() should surface API errors")
	}
	if IsNotFound(err) {
		t.Error("a 400 must not be classified as not-found")
	}
}

func TestClient_RateLimiting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name": "Shock", "cmc": 1, "type_line": "Instant"}`))
	}))
	defer server.Close()

	// 1 request per 50ms: three requests need at least 100ms.
	client := NewClient(&Config{
		BaseURL: server.URL,
		Limiter: rate.NewLimiter(rate.Every(50*time.Millisecond), 1),
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.GetCardByName(context.Background(), "Shock"); err != nil {
			t.Fatalf("GetCardByName() error = %v", err)
		}
	}

	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("three requests took %v, want at least 100ms under the rate limit", elapsed)
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := testClient(server.URL, 0)
	if _, err := client.GetCardByName(ctx, "Shock"); err == nil {
		t.Fatal("GetCardByName() should fail under a cancelled context")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(nil)

	if client.baseURL != defaultBaseURL {
		t.Errorf("base URL = %q, want %q", client.baseURL, defaultBaseURL)
	}
	if client.maxRetries != 3 {
		t.Errorf("max retries = %d, want 3", client.maxRetries)
	}
	if client.rateLimiter == nil {
		t.Fatal("rate limiter not set")
	}
	// The default ceiling is 5 requests per second.
	if got := client.rateLimiter.Limit(); got != rate.Every(200*time.Millisecond) {
		t.Errorf("rate limit = %v, want %v", got, rate.Every(200*time.Millisecond))
	}
}
