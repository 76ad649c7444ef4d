// Command deck-analyzer analyzes a Magic: The Gathering decklist file
// and prints descriptive statistics, optionally rendering interactive
// charts or re-running when the file changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/deck-analyzer/internal/analyzer"
	"github.com/ramonehamilton/deck-analyzer/internal/charts"
	"github.com/ramonehamilton/deck-analyzer/internal/config"
	"github.com/ramonehamilton/deck-analyzer/internal/display"
	"github.com/ramonehamilton/deck-analyzer/internal/resolver"
	"github.com/ramonehamilton/deck-analyzer/internal/scryfall"
	"github.com/ramonehamilton/deck-analyzer/internal/storage"
)

var (
	renderCharts = flag.Bool("charts", false, "Render interactive HTML charts")
	chartsDir    = flag.String("charts-dir", "", "Directory for chart output (default from config)")
	openBrowser  = flag.Bool("open", false, "Open rendered charts in the default browser")
	watchMode    = flag.Bool("watch", false, "Re-run the analysis whenever the decklist file changes")
	topPriciest  = flag.Int("top", 0, "Number of cards in the price ranking (default from config)")
	cacheFlag    = flag.Bool("cache", false, "Enable the persistent card cache")
	verbose      = flag.Bool("verbose", false, "Show per-card resolution progress")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <decklist-file>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Supported decklist line formats:\n")
	fmt.Fprintf(os.Stderr, "  4 Lightning Bolt (M21) 123\n")
	fmt.Fprintf(os.Stderr, "  4 Lightning Bolt\n")
	fmt.Fprintf(os.Stderr, "  4x Lightning Bolt\n")
	fmt.Fprintf(os.Stderr, "  Lightning Bolt          (quantity 1)\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	decklistPath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if *topPriciest > 0 {
		cfg.Analysis.TopPriciest = *topPriciest
	}
	if *cacheFlag {
		cfg.Cache.Enabled = true
	}
	if *chartsDir != "" {
		cfg.Charts.OutputDir = *chartsDir
	}
	if *openBrowser {
		cfg.Charts.OpenBrowser = true
	}

	service, cleanup, err := buildService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer cleanup()

	ctx := context.Background()

	if err := runAnalysis(ctx, service, cfg, decklistPath); err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	if *watchMode {
		if err := watchAndRerun(ctx, service, cfg, decklistPath); err != nil {
			log.Fatalf("Watch failed: %v", err)
		}
	}
}

// buildService wires the Scryfall client, optional cache, resolver and
// aggregator into an analysis service.
func buildService(cfg *config.Config) (*analyzer.Service, func(), error) {
	timeout, err := cfg.GetScryfallTimeout()
	if err != nil {
		return nil, nil, err
	}

	interval := time.Second / time.Duration(cfg.Scryfall.RequestsPerSecond)
	client := scryfall.NewClient(&scryfall.Config{
		UserAgent:  cfg.Scryfall.UserAgent,
		Timeout:    timeout,
		MaxRetries: cfg.Scryfall.MaxRetries,
		Limiter:    rate.NewLimiter(rate.Every(interval), 1),
	})

	opts := resolver.Options{Verbose: *verbose}
	cleanup := func() {}

	if cfg.Cache.Enabled {
		cachePath := cfg.Cache.Path
		if cachePath == "" {
			cachePath, err = config.DefaultCachePath()
			if err != nil {
				return nil, nil, err
			}
		}

		dbCfg := storage.DefaultConfig(cachePath)
		dbCfg.AutoMigrate = true
		db, err := storage.Open(dbCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open card cache: %w", err)
		}

		ttl, err := cfg.GetCacheTTL()
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		opts.Cache = db
		opts.StaleThreshold = ttl
		cleanup = func() {
			if err := db.Close(); err != nil {
				log.Printf("Error closing card cache: %v", err)
			}
		}
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

	return service, cleanup, nil
}

// runAnalysis analyzes one decklist file and renders the configured
// outputs.
func runAnalysis(ctx context.Context, service *analyzer.Service, cfg *config.Config, path string) error {
	fmt.Printf("Analyzing decklist: %s\n", path)

	stats, err := service.AnalyzeFile(ctx, path)
	if err != nil {
		return err
	}

	display.WriteReport(os.Stdout, stats)

	if *renderCharts {
		chartCfg := charts.DefaultChartConfig()
		chartCfg.Theme = cfg.Charts.Theme
		chartCfg.Width = cfg.Charts.Width
		chartCfg.Height = cfg.Charts.Height

		written, err := charts.WriteDeckCharts(stats, chartCfg, cfg.Charts.OutputDir)
		if err != nil {
			return fmt.Errorf("render charts: %w", err)
		}

		for _, p := range written {
			fmt.Printf("Chart written: %s\n", p)
			if cfg.Charts.OpenBrowser {
				if err := charts.OpenInBrowser(p); err != nil {
					log.Printf("Failed to open %s: %v", p, err)
				}
			}
		}
	}

	return nil
}

// watchAndRerun blocks, re-running the analysis whenever the decklist
// file is written. Events are debounced since editors emit several
// writes per save.
func watchAndRerun(ctx context.Context, service *analyzer.Service, cfg *config.Config, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch decklist file: %w", err)
	}

	fmt.Printf("\nWatching %s for changes (Ctrl-C to stop)...\n", path)

	var debounce *time.Timer
	rerun := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				// Some editors save by rename; re-arm the watch on the
				// new file.
				if event.Op&(fsnotify.Rename|fsnotify.Remove) != 0 {
					time.Sleep(100 * time.Millisecond)
					_ = watcher.Add(path)
				} else {
					continue
				}
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(250*time.Millisecond, func() {
				select {
				case rerun <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)

		case <-rerun:
			if err := runAnalysis(ctx, service, cfg, path); err != nil {
				log.Printf("Re-analysis failed: %v", err)
			}
			fmt.Printf("\nWatching %s for changes (Ctrl-C to stop)...\n", path)
		}
	}
}
