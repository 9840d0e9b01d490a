package main

import (
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"jobprofit/internal/config"
	"jobprofit/internal/log"
	"jobprofit/internal/slicecache"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	tech := flag.String("tech", "", "only purge slices for this tech")
	year := flag.Int("year", 0, "only purge slices for this year")
	month := flag.Int("month", 0, "only purge slices for this month (1-12, requires -year)")
	dry := flag.Bool("dry", false, "list matching slices without deleting")
	flag.Parse()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	if *month != 0 && (*month < 1 || *month > 12) {
		logger.Error("Invalid -month, must be 1-12", "month", *month)
		os.Exit(1)
	}
	if *month != 0 && *year == 0 {
		logger.Error("-month requires -year")
		os.Exit(1)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, cleanup, err := newStore(cfg)
	if err != nil {
		logger.Error("Failed to initialize slice store", "backend", cfg.CacheBackend, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	keys, err := store.Keys()
	if err != nil {
		logger.Error("Failed to list cached slices", "error", err)
		os.Exit(1)
	}

	matched, deleted := 0, 0
	for _, key := range keys {
		if !matches(key, *tech, *year, time.Month(*month)) {
			continue
		}
		matched++

		if *dry {
			logger.Info("Would delete slice", "key", key.String())
			continue
		}
		if err := store.Delete(key); err != nil {
			logger.Error("Failed to delete slice", "key", key.String(), "error", err)
			continue
		}
		deleted++
		logger.Info("Deleted slice", "key", key.String())
	}

	logger.Info("Purge finished",
		"cached", len(keys),
		"matched", matched,
		"deleted", deleted,
		"dry_run", *dry)
}

func matches(key slicecache.Key, tech string, year int, month time.Month) bool {
	if tech != "" && key.Tech != tech {
		return false
	}
	if year != 0 && key.Year != year {
		return false
	}
	if month != 0 && key.Month != month {
		return false
	}
	return true
}

func newStore(cfg *config.Config) (slicecache.Store, func(), error) {
	switch cfg.CacheBackend {
	case "sqlite":
		store, err := slicecache.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case "memory":
		return slicecache.NewMemoryStore(1024, cfg.CacheTTL), func() {}, nil
	default:
		store, err := slicecache.NewFSStore(cfg.CacheDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}
