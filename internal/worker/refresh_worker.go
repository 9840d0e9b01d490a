package worker

import (
	"context"
	"fmt"
	"time"

	"jobprofit/internal/core"
	"jobprofit/internal/log"
	"jobprofit/internal/pace"
	"jobprofit/internal/report"
)

// ReportBuilder is the slice of the report service the worker needs.
type ReportBuilder interface {
	YearReport(ctx context.Context, tech string, year int, opts report.BuildOptions) (core.Report, error)
}

// Exporter pushes a finished report somewhere external. nil disables export.
type Exporter interface {
	Export(ctx context.Context, report core.Report) error
}

// RefreshWorker walks the tech roster and force-rebuilds each tech's
// current-year report. The long inter-tech delay keeps a full roster
// refresh inside the API's rate budget.
type RefreshWorker struct {
	reports   ReportBuilder
	exporter  Exporter
	techs     []string
	techPacer pace.Pacer
	logger    *log.Logger
	now       func() time.Time
}

func NewRefreshWorker(reports ReportBuilder, exporter Exporter, techs []string, techPacer pace.Pacer, logger *log.Logger) *RefreshWorker {
	return &RefreshWorker{
		reports:   reports,
		exporter:  exporter,
		techs:     techs,
		techPacer: techPacer,
		logger:    logger.WithComponent("refresh_worker"),
		now:       time.Now,
	}
}

// Run refreshes every tech once. Per-tech failures are logged and counted;
// only cancellation aborts the pass.
func (w *RefreshWorker) Run(ctx context.Context) error {
	year := w.now().Year()
	w.logger.InfoContext(ctx, "Starting roster refresh", "techs", len(w.techs), "year", year)

	failed := 0
	for i, tech := range w.techs {
		rep, err := w.reports.YearReport(ctx, tech, year, report.BuildOptions{ForceRefresh: true})
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("refresh roster: %w", ctx.Err())
			}
			w.logger.ErrorContext(ctx, "Tech refresh failed", "tech", tech, "error", err)
			failed++
		} else {
			w.logger.InfoContext(ctx, "Tech refreshed",
				"tech", tech,
				"successful_months", rep.Meta.SuccessfulMonths,
				"error_months", rep.Meta.ErrorMonths)
			w.export(ctx, rep)
		}

		if i < len(w.techs)-1 && w.techPacer != nil {
			if err := w.techPacer.Wait(ctx); err != nil {
				return fmt.Errorf("pace techs: %w", err)
			}
		}
	}

	w.logger.InfoContext(ctx, "Roster refresh finished",
		"techs", len(w.techs),
		"failed", failed)
	if failed == len(w.techs) && failed > 0 {
		return fmt.Errorf("all %d techs failed to refresh", failed)
	}
	return nil
}

func (w *RefreshWorker) export(ctx context.Context, rep core.Report) {
	if w.exporter == nil {
		return
	}
	if err := w.exporter.Export(ctx, rep); err != nil {
		w.logger.WarnContext(ctx, "Report export failed", "tech", rep.Tech, "error", err)
	}
}
