package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"jobprofit/internal/config"
	"jobprofit/internal/events"
	"jobprofit/internal/jobber"
	"jobprofit/internal/log"
	"jobprofit/internal/pace"
	"jobprofit/internal/report"
	"jobprofit/internal/slicecache"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	tech := flag.String("tech", "", "tech short name (e.g. \"wes\") or full name")
	year := flag.Int("year", time.Now().Year(), "report year")
	refresh := flag.Bool("refresh", false, "bypass cached month slices")
	items := flag.Bool("items", false, "include per-line debug items in the output")
	flag.Parse()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	if *tech == "" {
		logger.Error("Missing required -tech flag")
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := newStore(cfg)
	if err != nil {
		logger.Error("Failed to initialize slice store", "backend", cfg.CacheBackend, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	client, err := jobber.NewClient(ctx, jobberConfig(cfg), logger)
	if err != nil {
		logger.Error("Failed to initialize API client", "error", err)
		os.Exit(1)
	}

	var publisher report.Publisher
	if cfg.AMQPURL != "" {
		p, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP publisher", "error", err)
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
	}

	sliceCache := slicecache.New(store, cfg.CacheTTL, logger)
	calc := report.NewCalculator(report.NewRateTable(cfg.LeadRates, cfg.SupportRate, cfg.OverheadRate))
	months := report.NewMonthBuilder(client, sliceCache, calc, report.MonthBuilderConfig{
		DateField: cfg.InvoiceDateField,
		Roster:    cfg.TechRoster,
	}, logger)
	years := report.NewYearBuilder(months, pace.NewFixedDelay(cfg.MonthDelay), publisher, logger)
	service := report.NewReportService(years)

	rep, err := service.YearReport(ctx, *tech, *year, report.BuildOptions{
		ForceRefresh: *refresh,
		IncludeItems: *items,
	})
	if err != nil {
		logger.Error("Report build failed", "tech", *tech, "year", *year, "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		logger.Error("Failed to encode report", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
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

func jobberConfig(cfg *config.Config) jobber.Config {
	return jobber.Config{
		URL:                cfg.JobberAPIURL,
		AccessToken:        cfg.JobberAccessToken,
		TokenFile:          cfg.JobberTokenFile,
		GraphQLVersion:     cfg.JobberGraphQLVersion,
		DateField:          cfg.InvoiceDateField,
		InvoicePageSize:    cfg.InvoicePageSize,
		LineItemPageSize:   cfg.LineItemPageSize,
		InvoicePageLimit:   cfg.InvoicePageLimit,
		TimesheetPageSize:  cfg.TimesheetPageSize,
		TimesheetPageLimit: cfg.TimesheetPageLimit,
		InvoicePacer:       pace.NewFixedDelay(cfg.InvoicePageDelay),
		TimesheetPacer:     pace.NewFixedDelay(cfg.TimesheetPageDelay),
	}
}
