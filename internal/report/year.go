package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"jobprofit/internal/core"
	"jobprofit/internal/log"
	"jobprofit/internal/pace"
	"jobprofit/internal/slicecache"
)

// Publisher receives notifications about freshly computed data. A nil
// Publisher disables events; publish failures never fail a report.
type Publisher interface {
	PublishSliceRefreshed(ctx context.Context, tech, month string, year int) error
	PublishReportReady(ctx context.Context, report core.Report) error
}

// YearBuilder assembles a tech's year-to-date report month by month. A
// failed month degrades to an errored zero slice; the remaining months
// still build.
type YearBuilder struct {
	months     *MonthBuilder
	monthPacer pace.Pacer
	events     Publisher
	logger     *log.Logger
	now        func() time.Time
}

func NewYearBuilder(months *MonthBuilder, monthPacer pace.Pacer, events Publisher, logger *log.Logger) *YearBuilder {
	return &YearBuilder{
		months:     months,
		monthPacer: monthPacer,
		events:     events,
		logger:     logger.WithComponent("year_builder"),
		now:        time.Now,
	}
}

// BuildYear builds January through the last relevant month of the year:
// the current month for the current year, December for past years.
func (y *YearBuilder) BuildYear(ctx context.Context, tech string, year int, opts BuildOptions) (core.Report, error) {
	now := y.now()
	lastMonth := time.December
	if year == now.Year() {
		lastMonth = now.Month()
	}
	if year > now.Year() {
		return core.Report{}, fmt.Errorf("year %d is in the future", year)
	}

	var slices []core.MonthSlice
	for month := time.January; month <= lastMonth; month++ {
		slice, fromCache, err := y.months.BuildMonth(ctx, tech, year, month, opts)
		if err != nil {
			if ctx.Err() != nil {
				return core.Report{}, fmt.Errorf("build year for %s: %w", tech, ctx.Err())
			}
			y.logger.ErrorContext(ctx, "Month failed, recording errored slice",
				"tech", tech,
				"month", core.MonthCode(year, month),
				"error", err)
			slice = erroredSlice(year, month, err)
		}
		slices = append(slices, slice)

		if !fromCache && !slice.Error {
			y.publishSlice(ctx, tech, slice.Month, year)
		}

		// Cached months cost no API points, so only remote fetches pace.
		if !fromCache && month != lastMonth && y.monthPacer != nil {
			if err := y.monthPacer.Wait(ctx); err != nil {
				return core.Report{}, fmt.Errorf("pace months: %w", err)
			}
		}
	}

	report := core.Report{
		Tech:        tech,
		Summary:     summarize(year, slices),
		MonthlyData: slices,
		Meta: core.ReportMeta{
			Year:             year,
			RefreshRequested: opts.ForceRefresh,
			CacheTTL:         y.months.cache.TTL().String(),
			SuccessfulMonths: len(slices) - countErrored(slices),
			ErrorMonths:      countErrored(slices),
			TotalMonths:      len(slices),
			SchemaVersion:    slicecache.SchemaVersion,
		},
	}

	y.publishReport(ctx, report)
	return report, nil
}

func erroredSlice(year int, month time.Month, err error) core.MonthSlice {
	return core.MonthSlice{
		Month:        core.MonthCode(year, month),
		MonthName:    core.MonthName(month),
		Error:        true,
		ErrorMessage: err.Error(),
	}
}

func countErrored(slices []core.MonthSlice) int {
	n := 0
	for _, s := range slices {
		if s.Error {
			n++
		}
	}
	return n
}

func summarize(year int, slices []core.MonthSlice) core.YearSummary {
	var invoiced, worked, revenue, profit float64
	for _, s := range slices {
		invoiced += s.InvoicedHours
		worked += s.WorkedHours
		revenue += s.Revenue
		profit += s.Profit
	}

	var avgMargin, avgUtilization, avgHourlyRate float64
	if revenue > 0 {
		avgMargin = core.Round1(profit / revenue * 100)
	}
	if worked > 0 {
		avgUtilization = core.Round1(invoiced / worked * 100)
	}
	if invoiced > 0 {
		avgHourlyRate = core.Round2(revenue / invoiced)
	}

	errored := countErrored(slices)
	label := fmt.Sprintf("Year to Date %d (%d months)", year, len(slices))
	if errored > 0 {
		label = fmt.Sprintf("Year to Date %d (REAL DATA - %d/%d months successful)",
			year, len(slices)-errored, len(slices))
	}

	return core.YearSummary{
		PeriodLabel:        label,
		TotalInvoicedHours: core.Round1(invoiced),
		TotalWorkedHours:   core.Round1(worked),
		TotalRevenue:       core.RoundDollars(revenue),
		TotalProfit:        core.RoundDollars(profit),
		AvgProfitMargin:    avgMargin,
		AvgUtilization:     avgUtilization,
		AvgHourlyRate:      avgHourlyRate,
	}
}

func (y *YearBuilder) publishSlice(ctx context.Context, tech, month string, year int) {
	if y.events == nil {
		return
	}
	if err := y.events.PublishSliceRefreshed(ctx, tech, month, year); err != nil {
		y.logger.WarnContext(ctx, "Slice event publish failed", "tech", tech, "month", month, "error", err)
	}
}

func (y *YearBuilder) publishReport(ctx context.Context, report core.Report) {
	if y.events == nil {
		return
	}
	if err := y.events.PublishReportReady(ctx, report); err != nil {
		y.logger.WarnContext(ctx, "Report event publish failed", "tech", report.Tech, "error", err)
	}
}

// ReportService collapses concurrent requests for the same (tech, year)
// into a single build.
type ReportService struct {
	years *YearBuilder
	group singleflight.Group
}

func NewReportService(years *YearBuilder) *ReportService {
	return &ReportService{years: years}
}

func (s *ReportService) YearReport(ctx context.Context, tech string, year int, opts BuildOptions) (core.Report, error) {
	key := fmt.Sprintf("%s:%d:%v", tech, year, opts.ForceRefresh)
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.years.BuildYear(ctx, tech, year, opts)
	})
	if err != nil {
		return core.Report{}, err
	}
	return v.(core.Report), nil
}
