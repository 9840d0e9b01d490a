package jobber

import "time"

// PageInfo is the cursor marker returned with every connection.
type PageInfo struct {
	EndCursor   string `json:"endCursor"`
	HasNextPage bool   `json:"hasNextPage"`
}

// CustomField is one labelled custom field on an invoice. Dropdown and
// free-text variants surface through different value fields; at most one
// is populated.
type CustomField struct {
	Label         string `json:"label"`
	ValueText     string `json:"valueText"`
	ValueDropdown string `json:"valueDropdown"`
}

// Value returns whichever variant carries the field's value.
func (f CustomField) Value() string {
	if f.ValueDropdown != "" {
		return f.ValueDropdown
	}
	return f.ValueText
}

type ClientName struct {
	CompanyName string `json:"companyName"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
}

type LinkedProductOrService struct {
	Category string `json:"category"`
}

type LineItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`

	LinkedProductOrService *LinkedProductOrService `json:"linkedProductOrService"`
}

// Category returns the linked product/service category, or "" when the
// line has no linked product.
func (li LineItem) Category() string {
	if li.LinkedProductOrService == nil {
		return ""
	}
	return li.LinkedProductOrService.Category
}

type InvoiceAmounts struct {
	Total         float64 `json:"total"`
	PaymentsTotal float64 `json:"paymentsTotal"`
}

// Invoice is one invoice node with its first page of line items inlined.
type Invoice struct {
	ID            string     `json:"id"`
	InvoiceNumber string     `json:"invoiceNumber"`
	CreatedAt     time.Time  `json:"createdAt"`
	SentAt        *time.Time `json:"sentAt"`

	Client       ClientName     `json:"client"`
	Amounts      InvoiceAmounts `json:"amounts"`
	CustomFields []CustomField  `json:"customFields"`

	LineItems struct {
		Nodes    []LineItem `json:"nodes"`
		PageInfo PageInfo   `json:"pageInfo"`
	} `json:"lineItems"`
}

// EffectiveDate is the date the configured policy buckets this invoice
// under. ok is false for a sent-date policy on a never-sent invoice; such
// invoices are skipped entirely.
func (inv Invoice) EffectiveDate(dateField string) (time.Time, bool) {
	if dateField == "sentAt" {
		if inv.SentAt == nil {
			return time.Time{}, false
		}
		return *inv.SentAt, true
	}
	return inv.CreatedAt, true
}

type PersonName struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type TimesheetUser struct {
	Name PersonName `json:"name"`
}

// Timesheet is one clocked time entry. FinalDuration is in seconds.
type Timesheet struct {
	ID            string         `json:"id"`
	StartAt       time.Time      `json:"startAt"`
	FinalDuration float64        `json:"finalDuration"`
	User          *TimesheetUser `json:"user"`
}

type invoicesData struct {
	Invoices struct {
		Nodes    []Invoice `json:"nodes"`
		PageInfo PageInfo  `json:"pageInfo"`
	} `json:"invoices"`
}

type timesheetsData struct {
	TimeSheetEntries struct {
		Nodes    []Timesheet `json:"nodes"`
		PageInfo PageInfo    `json:"pageInfo"`
	} `json:"timeSheetEntries"`
}
