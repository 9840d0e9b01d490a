package main

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"

	"jobprofit/internal/config"
	"jobprofit/internal/events"
	"jobprofit/internal/export/sheets"
	"jobprofit/internal/jobber"
	"jobprofit/internal/log"
	"jobprofit/internal/pace"
	"jobprofit/internal/report"
	"jobprofit/internal/slicecache"
	"jobprofit/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting jobprofit-refresh")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if len(cfg.TechRoster) == 0 {
		logger.Error("Empty tech roster, nothing to refresh (set TECH_ROSTER)")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	var exporter worker.Exporter
	if cfg.GoogleSpreadsheetID != "" {
		e, err := sheets.NewExporter(ctx, sheets.Config{
			SpreadsheetID: cfg.GoogleSpreadsheetID,
			SheetName:     cfg.GoogleSheetName,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = e
		logger.Info("Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	sliceCache := slicecache.New(store, cfg.CacheTTL, logger)
	calc := report.NewCalculator(report.NewRateTable(cfg.LeadRates, cfg.SupportRate, cfg.OverheadRate))
	months := report.NewMonthBuilder(client, sliceCache, calc, report.MonthBuilderConfig{
		DateField: cfg.InvoiceDateField,
		Roster:    cfg.TechRoster,
	}, logger)
	years := report.NewYearBuilder(months, pace.NewFixedDelay(cfg.MonthDelay), publisher, logger)
	service := report.NewReportService(years)

	techs := make([]string, 0, len(cfg.TechRoster))
	for short := range cfg.TechRoster {
		techs = append(techs, short)
	}
	sort.Strings(techs)

	refreshWorker := worker.NewRefreshWorker(service, exporter, techs,
		pace.NewFixedDelay(cfg.TechDelay), logger)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	if err := refreshWorker.Run(ctx); err != nil {
		logger.Error("Roster refresh failed", "error", err)
		os.Exit(1)
	}

	logger.Info("jobprofit-refresh finished")
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
