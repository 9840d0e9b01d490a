package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobprofit/internal/core"
	"jobprofit/internal/jobber"
	"jobprofit/internal/log"
	"jobprofit/internal/slicecache"
)

// Fetcher is the slice of the API client the builder needs.
type Fetcher interface {
	FetchInvoices(ctx context.Context, start, end time.Time) ([]jobber.Invoice, error)
	FetchTimesheets(ctx context.Context, start, end time.Time) ([]jobber.Timesheet, error)
}

// BuildOptions control one report build.
type BuildOptions struct {
	// ForceRefresh bypasses the cache for every month.
	ForceRefresh bool
	// IncludeItems attaches the per-line debug payload to returned
	// slices. It is never persisted.
	IncludeItems bool
}

// MonthBuilder computes one tech's slice for one calendar month, serving
// from cache when the slice is still fresh.
type MonthBuilder struct {
	fetcher   Fetcher
	cache     *slicecache.Cache
	calc      *Calculator
	dateField string
	roster    map[string]string
	logger    *log.Logger
	now       func() time.Time
}

type MonthBuilderConfig struct {
	DateField string
	Roster    map[string]string // short name -> timesheet full name
}

func NewMonthBuilder(fetcher Fetcher, cache *slicecache.Cache, calc *Calculator, config MonthBuilderConfig, logger *log.Logger) *MonthBuilder {
	return &MonthBuilder{
		fetcher:   fetcher,
		cache:     cache,
		calc:      calc,
		dateField: config.DateField,
		roster:    config.Roster,
		logger:    logger.WithComponent("month_builder"),
		now:       time.Now,
	}
}

func (b *MonthBuilder) fullName(tech string) string {
	if full, ok := b.roster[strings.ToLower(tech)]; ok {
		return full
	}
	return tech
}

// BuildMonth returns the tech's slice for the month, and whether it was
// served from cache. Remote failures return an error; the caller decides
// how to degrade.
func (b *MonthBuilder) BuildMonth(ctx context.Context, tech string, year int, month time.Month, opts BuildOptions) (core.MonthSlice, bool, error) {
	key := slicecache.Key{Tech: tech, Year: year, Month: month}
	if slice, hit := b.cache.Lookup(key, opts.ForceRefresh); hit {
		b.logger.InfoContext(ctx, "Serving month from cache", "tech", tech, "month", slice.Month)
		return slice, true, nil
	}

	now := b.now()
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := core.MonthEnd(start, now)

	b.logger.InfoContext(ctx, "Building month from API",
		"tech", tech,
		"month", core.MonthCode(year, month),
		"force_refresh", opts.ForceRefresh)

	timesheets, err := b.fetcher.FetchTimesheets(ctx, start, end)
	if err != nil {
		return core.MonthSlice{}, false, fmt.Errorf("fetch timesheets for %s: %w", core.MonthCode(year, month), err)
	}
	invoices, err := b.fetcher.FetchInvoices(ctx, start, end)
	if err != nil {
		return core.MonthSlice{}, false, fmt.Errorf("fetch invoices for %s: %w", core.MonthCode(year, month), err)
	}

	var lineRecords []core.LineItemRecord
	for _, inv := range invoices {
		lineRecords = append(lineRecords, AttributeInvoice(inv, b.dateField)...)
	}
	tsRecords := AttributeTimesheets(timesheets)

	slice := b.aggregate(tech, year, month, lineRecords, tsRecords, opts.IncludeItems)
	b.cache.Save(key, slice)

	b.logger.InfoContext(ctx, "Month built",
		"tech", tech,
		"month", slice.Month,
		"revenue", slice.Revenue,
		"worked_hours", slice.WorkedHours)
	return slice, false, nil
}

func (b *MonthBuilder) aggregate(tech string, year int, month time.Month, lineRecords []core.LineItemRecord, tsRecords []core.TimesheetRecord, includeItems bool) core.MonthSlice {
	fullName := b.fullName(tech)
	items := TechLineItems(lineRecords, tech, fullName)

	var revenue, invoicedHours float64
	for _, item := range items {
		revenue += item.AdjustedQuantity * item.UnitPrice
		invoicedHours += item.AdjustedQuantity
	}
	workedHours := TechWorkedHours(tsRecords, fullName)

	var utilization float64
	if workedHours > 0 {
		utilization = core.Round1(invoicedHours / workedHours * 100)
	}

	revenue = core.Round2(revenue)
	totalCost, profit, margin := b.calc.Compute(revenue, workedHours, fullName, tech)

	var hourlyRate float64
	if invoicedHours > 0 {
		hourlyRate = core.Round2(revenue / invoicedHours)
	}

	slice := core.MonthSlice{
		Month:         core.MonthCode(year, month),
		MonthName:     core.MonthName(month),
		InvoicedHours: core.Round1(invoicedHours),
		WorkedHours:   core.Round1(workedHours),
		Utilization:   utilization,
		Revenue:       revenue,
		TotalCost:     totalCost,
		Profit:        profit,
		ProfitMargin:  margin,
		HourlyRate:    hourlyRate,
	}
	if includeItems {
		slice.InvoiceItems = items
	}
	return slice
}
