package report

import (
	"strings"

	"jobprofit/internal/core"
	"jobprofit/internal/jobber"
)

// Reserved line-item categories with special handling during attribution.
const (
	primaryJobCategory = "Job Details"
	cardFeeName        = "Credit Card Service Fee"
	excavationName     = "Excavation"

	// Excavation is billed as day units but consumes a full crew-day of
	// capacity, so its quantity counts 8x toward invoiced hours.
	excavationMultiplier = 8.0
)

// Custom-field labels that carry the revenue attribution on each invoice.
const (
	leadTechLabel  = "Lead Tech"
	leadTech2Label = "Lead Tech 2"
)

// AttributeInvoice expands one invoice into attributed line-item records.
// Split attributions emit two records per line, each carrying half the
// adjusted quantity. Per-invoice rollups land on the first record only.
// A sent-date policy skips invoices that were never sent.
func AttributeInvoice(inv jobber.Invoice, dateField string) []core.LineItemRecord {
	date, ok := inv.EffectiveDate(dateField)
	if !ok {
		return nil
	}

	attr := core.NewAttribution(
		customFieldValue(inv.CustomFields, leadTechLabel),
		customFieldValue(inv.CustomFields, leadTech2Label),
	)
	customer := core.CustomerName(inv.Client.CompanyName, inv.Client.FirstName, inv.Client.LastName)
	year, week := core.WeekOf(date)

	var records []core.LineItemRecord
	var nonPrimaryTotal, totalQty, qtyExclPrimary float64

	for _, li := range inv.LineItems.Nodes {
		lineTotal := li.Quantity * li.UnitPrice
		isPrimary := li.Category() == primaryJobCategory
		isCardFee := li.Description == cardFeeName || li.Name == cardFeeName

		adjustedQty := li.Quantity
		if li.Description == excavationName || li.Name == excavationName {
			adjustedQty = li.Quantity * excavationMultiplier
		}

		totalQty += li.Quantity
		if !isPrimary && !isCardFee {
			nonPrimaryTotal += lineTotal
			qtyExclPrimary += adjustedQty
		}

		for _, tech := range attr.Recipients() {
			records = append(records, core.LineItemRecord{
				InvoiceNumber:    inv.InvoiceNumber,
				Date:             date.Format("2006-01-02"),
				Customer:         customer,
				LeadTech:         tech,
				LeadTech2:        attr.Secondary(),
				Year:             year,
				Week:             week,
				YearWeek:         core.YearWeek(date),
				Description:      li.Description,
				Quantity:         li.Quantity,
				AdjustedQuantity: adjustedQty * attr.SplitFactor(),
				UnitPrice:        li.UnitPrice,
				LineTotal:        lineTotal,
				PrimaryJob:       isPrimary,
				InvoiceTotal:     inv.Amounts.Total,
				PaymentsTotal:    inv.Amounts.PaymentsTotal,
			})
		}
	}

	if len(records) > 0 {
		records[0].HasRollups = true
		records[0].InvoicedExclPrimaryJob = nonPrimaryTotal
		records[0].TotalQuantityInvoiced = totalQty
		records[0].TotalQuantityExclPrimary = qtyExclPrimary
	}
	return records
}

func customFieldValue(fields []jobber.CustomField, label string) string {
	for _, f := range fields {
		if f.Label == label {
			return f.Value()
		}
	}
	return ""
}

// AttributeTimesheets converts raw time entries into per-tech hour records.
// Entries are never dropped for missing user data; names degrade to
// Unknown and durations to zero.
func AttributeTimesheets(entries []jobber.Timesheet) []core.TimesheetRecord {
	records := make([]core.TimesheetRecord, 0, len(entries))
	for _, e := range entries {
		first, last := core.UnknownName, core.UnknownName
		if e.User != nil {
			if f := strings.TrimSpace(e.User.Name.FirstName); f != "" {
				first = f
			}
			if l := strings.TrimSpace(e.User.Name.LastName); l != "" {
				last = l
			}
		}

		year, week := core.WeekOf(e.StartAt)
		records = append(records, core.TimesheetRecord{
			Tech:     first + " " + last,
			StartAt:  e.StartAt,
			Hours:    e.FinalDuration / 3600,
			Year:     year,
			Week:     week,
			YearWeek: core.YearWeek(e.StartAt),
		})
	}
	return records
}

// TechWorkedHours sums the hours of every entry whose tech name contains
// the target full name, case-insensitively. Substring matching tolerates
// middle names and suffixes in the time-tracking system.
func TechWorkedHours(records []core.TimesheetRecord, fullName string) float64 {
	target := strings.ToLower(fullName)
	var hours float64
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Tech), target) {
			hours += r.Hours
		}
	}
	return hours
}

// TechLineItems selects the revenue-bearing records attributed to a tech:
// non-primary-job lines whose lead matches the short or full name exactly.
func TechLineItems(records []core.LineItemRecord, shortName, fullName string) []core.LineItemRecord {
	var out []core.LineItemRecord
	for _, r := range records {
		if r.PrimaryJob {
			continue
		}
		if r.LeadTech == shortName || r.LeadTech == fullName {
			out = append(out, r)
		}
	}
	return out
}
