package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"jobprofit/internal/core"
	"jobprofit/internal/log"
	"jobprofit/internal/pace"
	"jobprofit/internal/report"
)

type fakeReports struct {
	calls     []string
	failTechs map[string]bool
	lastOpts  report.BuildOptions
}

func (f *fakeReports) YearReport(ctx context.Context, tech string, year int, opts report.BuildOptions) (core.Report, error) {
	f.calls = append(f.calls, tech)
	f.lastOpts = opts
	if f.failTechs[tech] {
		return core.Report{}, errors.New("throttled")
	}
	return core.Report{Tech: tech, Meta: core.ReportMeta{Year: year}}, nil
}

type fakeExporter struct {
	exported []string
	err      error
}

func (f *fakeExporter) Export(ctx context.Context, rep core.Report) error {
	f.exported = append(f.exported, rep.Tech)
	return f.err
}

func testLogger() *log.Logger {
	return log.New(log.Config{
		Component: "test",
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})
}

func TestRunRefreshesWholeRoster(t *testing.T) {
	reports := &fakeReports{}
	exporter := &fakeExporter{}
	w := NewRefreshWorker(reports, exporter, []string{"alice", "bob"}, nil, testLogger())

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(reports.calls) != 2 {
		t.Errorf("built %d reports, want 2", len(reports.calls))
	}
	if !reports.lastOpts.ForceRefresh {
		t.Error("refresh pass must force refresh")
	}
	if len(exporter.exported) != 2 {
		t.Errorf("exported %d reports, want 2", len(exporter.exported))
	}
}

func TestRunContinuesPastFailedTech(t *testing.T) {
	reports := &fakeReports{failTechs: map[string]bool{"alice": true}}
	exporter := &fakeExporter{}
	w := NewRefreshWorker(reports, exporter, []string{"alice", "bob"}, nil, testLogger())

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(reports.calls) != 2 {
		t.Errorf("built %d reports, want 2", len(reports.calls))
	}
	if len(exporter.exported) != 1 || exporter.exported[0] != "bob" {
		t.Errorf("exported = %v, want [bob]", exporter.exported)
	}
}

func TestRunAllFailedReturnsError(t *testing.T) {
	reports := &fakeReports{failTechs: map[string]bool{"alice": true, "bob": true}}
	w := NewRefreshWorker(reports, nil, []string{"alice", "bob"}, nil, testLogger())

	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error when every tech fails")
	}
}

func TestRunHonorsCancellationDuringPacing(t *testing.T) {
	reports := &fakeReports{}
	w := NewRefreshWorker(reports, nil, []string{"alice", "bob"},
		pace.NewFixedDelay(time.Minute), testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := w.Run(ctx); err == nil {
		t.Fatal("expected cancellation error")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("cancellation took too long")
	}
	if len(reports.calls) != 1 {
		t.Errorf("built %d reports before cancellation, want 1", len(reports.calls))
	}
}
