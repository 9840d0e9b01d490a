package core

import (
	"strings"
	"time"
)

// UnknownName is the sentinel substituted for any missing or blank
// customer or tech name. Records are never dropped for missing names.
const UnknownName = "Unknown"

type (
	// Attribution identifies which techs an invoice's revenue belongs to.
	// It is either a single tech (split factor 1.0) or an even split
	// between two distinct techs (split factor 0.5 each).
	Attribution struct {
		primary   string
		secondary string
	}

	// LineItemRecord is one attributed billing line. An invoice with a
	// split attribution emits two records per line, one per tech, each
	// carrying half of the adjusted quantity.
	LineItemRecord struct {
		InvoiceNumber string  `json:"invoiceNumber"`
		Date          string  `json:"date"` // YYYY-MM-DD effective date
		Customer      string  `json:"customer"`
		LeadTech      string  `json:"leadTech"`
		LeadTech2     string  `json:"leadTech2"`
		Year          int     `json:"isoYear"`
		Week          int     `json:"isoWeek"`
		YearWeek      string  `json:"isoYearWeek"`
		Description   string  `json:"description"`
		Quantity      float64 `json:"quantity"`
		// AdjustedQuantity is the raw quantity after the excavation
		// multiplier and the split factor have been applied.
		AdjustedQuantity float64 `json:"adjustedQuantity"`
		UnitPrice        float64 `json:"unitPrice"`
		LineTotal        float64 `json:"lineTotal"`
		PrimaryJob       bool    `json:"isPrimaryJob"`
		InvoiceTotal     float64 `json:"invoiceTotal"`
		PaymentsTotal    float64 `json:"paymentsTotal"`

		// Per-invoice rollups. Present only on the first record emitted
		// for each invoice; zero with HasRollups=false everywhere else.
		HasRollups               bool    `json:"hasRollups,omitempty"`
		InvoicedExclPrimaryJob   float64 `json:"invoicedExclPrimaryJob,omitempty"`
		TotalQuantityInvoiced    float64 `json:"totalQuantityInvoiced,omitempty"`
		TotalQuantityExclPrimary float64 `json:"totalQuantityInvoicedExclPrimaryJob,omitempty"`
	}

	// TimesheetRecord is one clocked time entry for a tech.
	TimesheetRecord struct {
		Tech     string    `json:"tech"` // "First Last"
		StartAt  time.Time `json:"startAt"`
		Hours    float64   `json:"hours"`
		Year     int       `json:"isoYear"`
		Week     int       `json:"isoWeek"`
		YearWeek string    `json:"isoYearWeek"`
	}

	// MonthSlice is one calendar month's aggregated result for one tech.
	// Once computed for a past month it is reused verbatim from cache, so
	// the rounding applied here is part of the contract.
	MonthSlice struct {
		Month         string  `json:"month"` // YYYY-MM
		MonthName     string  `json:"monthName"`
		InvoicedHours float64 `json:"invoicedHours"`
		WorkedHours   float64 `json:"workedHours"`
		Utilization   float64 `json:"utilization"`
		Revenue       float64 `json:"revenue"`
		TotalCost     float64 `json:"totalCost"`
		Profit        float64 `json:"profit"`
		ProfitMargin  float64 `json:"profitMargin"`
		// HourlyRate is the realized rate (revenue / invoiced hours),
		// not a configured billable rate.
		HourlyRate   float64 `json:"hourlyRate"`
		Error        bool    `json:"error,omitempty"`
		ErrorMessage string  `json:"errorMessage,omitempty"`

		// InvoiceItems is a debug payload, attached on request only and
		// always stripped before the slice is persisted.
		InvoiceItems []LineItemRecord `json:"invoiceItems,omitempty"`
	}

	// YearSummary aggregates a tech's month slices for one year.
	YearSummary struct {
		PeriodLabel        string  `json:"periodLabel"`
		TotalInvoicedHours float64 `json:"totalInvoicedHours"`
		TotalWorkedHours   float64 `json:"totalWorkedHours"`
		TotalRevenue       float64 `json:"totalRevenue"`
		TotalProfit        float64 `json:"totalProfit"`
		AvgProfitMargin    float64 `json:"avgProfitMargin"`
		AvgUtilization     float64 `json:"avgUtilization"`
		AvgHourlyRate      float64 `json:"avgHourlyRate"`
	}

	// Report is the full year-to-date report envelope for one tech.
	Report struct {
		Tech        string       `json:"tech"`
		Summary     YearSummary  `json:"summary"`
		MonthlyData []MonthSlice `json:"monthlyData"`
		Meta        ReportMeta   `json:"meta"`
	}

	ReportMeta struct {
		Year             int    `json:"year"`
		RefreshRequested bool   `json:"refreshRequested"`
		CacheTTL         string `json:"cacheTTL"`
		SuccessfulMonths int    `json:"successfulMonths"`
		ErrorMonths      int    `json:"errorMonths"`
		TotalMonths      int    `json:"totalMonths"`
		SchemaVersion    int    `json:"schemaVersion"`
	}
)

// NewAttribution derives the attribution from the two lead-tech custom
// fields. Two-tech mode is active only when both names are present and
// differ case-insensitively; otherwise everything goes to the first tech
// (defaulting to UnknownName when blank).
func NewAttribution(lead1, lead2 string) Attribution {
	lead1 = strings.TrimSpace(lead1)
	lead2 = strings.TrimSpace(lead2)
	if lead1 == "" {
		lead1 = UnknownName
	}
	if lead2 != "" && !strings.EqualFold(lead1, lead2) {
		return Attribution{primary: lead1, secondary: lead2}
	}
	return Attribution{primary: lead1}
}

// IsSplit reports whether two techs share this attribution.
func (a Attribution) IsSplit() bool { return a.secondary != "" }

// Recipients returns the attributed tech names, one or two entries.
func (a Attribution) Recipients() []string {
	if a.IsSplit() {
		return []string{a.primary, a.secondary}
	}
	return []string{a.primary}
}

// SplitFactor is the fraction of each line's adjusted quantity that every
// recipient receives: 1.0 for a single tech, 0.5 for a split.
func (a Attribution) SplitFactor() float64 {
	if a.IsSplit() {
		return 0.5
	}
	return 1.0
}

// Primary returns the first tech name, never blank.
func (a Attribution) Primary() string { return a.primary }

// Secondary returns the second tech name, or "" for a single attribution.
func (a Attribution) Secondary() string { return a.secondary }

// CustomerName derives the display name for an invoice's customer:
// company name when non-blank, else "first last" trimmed, else Unknown.
func CustomerName(company, first, last string) string {
	if c := strings.TrimSpace(company); c != "" {
		return c
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{first, last} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return UnknownName
}
