// Command deck-server exposes decklist analysis as a REST API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/ramonehamilton/deck-analyzer/internal/analyzer"
	"github.com/ramonehamilton/deck-analyzer/internal/api"
	"github.com/ramonehamilton/deck-analyzer/internal/config"
	"github.com/ramonehamilton/deck-analyzer/internal/resolver"
	"github.com/ramonehamilton/deck-analyzer/internal/scryfall"
	"github.com/ramonehamilton/deck-analyzer/internal/storage"
)

var (
	port      = flag.Int("port", 0, "API server port (default from config)")
	cacheFlag = flag.Bool("cache", false, "Enable the persistent card cache")
)

func main() {
	flag.Parse()

	fmt.Println("Deck Analyzer - REST API Server")
	fmt.Println("===============================")
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *cacheFlag {
		cfg.Cache.Enabled = true
	}

	timeout, err := cfg.GetScryfallTimeout()
	if err != nil {
		log.Fatalf("Invalid scryfall timeout: %v", err)
	}

	interval := time.Second / time.Duration(cfg.Scryfall.RequestsPerSecond)
	client := scryfall.NewClient(&scryfall.Config{
		UserAgent:  cfg.Scryfall.UserAgent,
		Timeout:    timeout,
		MaxRetries: cfg.Scryfall.MaxRetries,
		Limiter:    rate.NewLimiter(rate.Every(interval), 1),
	})

	opts := resolver.Options{}
	if cfg.Cache.Enabled {
		cachePath := cfg.Cache.Path
		if cachePath == "" {
			cachePath, err = config.DefaultCachePath()
			if err != nil {
				log.Fatalf("Failed to resolve cache path: %v", err)
			}
		}

		dbCfg := storage.DefaultConfig(cachePath)
		dbCfg.AutoMigrate = true
		db, err := storage.Open(dbCfg)
		if err != nil {
			log.Fatalf("Failed to open card cache: %v", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("Error closing card cache: %v", err)
			}
		}()

		ttl, err := cfg.GetCacheTTL()
		if err != nil {
			log.Fatalf("Invalid cache TTL: %v", err)
		}

		opts.Cache = db
		opts.StaleThreshold = ttl
		fmt.Printf("Card cache: %s\n", cachePath)
	}

	landPredicate := analyzer.WordLandPredicate
	if cfg.Analysis.LandMatch == "substring" {
		landPredicate = analyzer.SubstringLandPredicate
	}

	service := analyzer.NewService(
		resolver.New(client, opts),
		analyzer.New(analyzer.Options{
			TopPriciest: cfg.Analysis.TopPriciest,
			IsLand:      landPredicate,
		}),
	)

	server := api.NewServer(&api.Config{Port: cfg.Server.Port}, service)
	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	fmt.Printf("Listening on port %d\n", server.Port())

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
