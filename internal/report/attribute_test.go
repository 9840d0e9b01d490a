package report

import (
	"math"
	"testing"
	"time"

	"jobprofit/internal/core"
	"jobprofit/internal/jobber"
)

func testInvoice(number string, lead1, lead2 string, lines ...jobber.LineItem) jobber.Invoice {
	inv := jobber.Invoice{
		ID:            "id-" + number,
		InvoiceNumber: number,
		CreatedAt:     time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
		Client: jobber.ClientName{
			FirstName: "Jane",
			LastName:  "Doe",
		},
		Amounts: jobber.InvoiceAmounts{Total: 1000, PaymentsTotal: 1000},
	}
	if lead1 != "" {
		inv.CustomFields = append(inv.CustomFields, jobber.CustomField{Label: "Lead Tech", ValueDropdown: lead1})
	}
	if lead2 != "" {
		inv.CustomFields = append(inv.CustomFields, jobber.CustomField{Label: "Lead Tech 2", ValueText: lead2})
	}
	inv.LineItems.Nodes = lines
	return inv
}

func serviceLine(desc string, qty, unitPrice float64) jobber.LineItem {
	return jobber.LineItem{
		Name:        desc,
		Description: desc,
		Quantity:    qty,
		UnitPrice:   unitPrice,
		LinkedProductOrService: &jobber.LinkedProductOrService{
			Category: "Service",
		},
	}
}

func primaryJobLine() jobber.LineItem {
	return jobber.LineItem{
		Name:        "Job Details",
		Description: "Full job writeup",
		Quantity:    1,
		UnitPrice:   0,
		LinkedProductOrService: &jobber.LinkedProductOrService{
			Category: "Job Details",
		},
	}
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestAttributeInvoiceSingleTech(t *testing.T) {
	inv := testInvoice("1001", "Alice Smith", "",
		serviceLine("Water heater install", 4, 150))

	records := AttributeInvoice(inv, "createdAt")
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	r := records[0]
	if r.LeadTech != "Alice Smith" {
		t.Errorf("LeadTech = %q", r.LeadTech)
	}
	if !approx(r.AdjustedQuantity, 4) {
		t.Errorf("AdjustedQuantity = %v, want 4", r.AdjustedQuantity)
	}
	if !approx(r.LineTotal, 600) {
		t.Errorf("LineTotal = %v, want 600", r.LineTotal)
	}
	if r.Date != "2025-03-03" {
		t.Errorf("Date = %q", r.Date)
	}
	if r.Customer != "Jane Doe" {
		t.Errorf("Customer = %q", r.Customer)
	}
}

func TestAttributeInvoiceSplit(t *testing.T) {
	inv := testInvoice("1002", "Alice Smith", "Bob Jones",
		serviceLine("Repipe", 6, 200))

	records := AttributeInvoice(inv, "createdAt")
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	if records[0].LeadTech != "Alice Smith" || records[1].LeadTech != "Bob Jones" {
		t.Errorf("recipients = %q, %q", records[0].LeadTech, records[1].LeadTech)
	}
	for _, r := range records {
		if !approx(r.AdjustedQuantity, 3) {
			t.Errorf("AdjustedQuantity = %v, want 3 (half of 6)", r.AdjustedQuantity)
		}
		if !approx(r.Quantity, 6) {
			t.Errorf("Quantity = %v, want raw 6", r.Quantity)
		}
	}
}

func TestAttributeInvoiceExcavationMultiplier(t *testing.T) {
	inv := testInvoice("1003", "Alice Smith", "Bob Jones",
		jobber.LineItem{Name: "Excavation", Description: "Excavation", Quantity: 2, UnitPrice: 800})

	records := AttributeInvoice(inv, "createdAt")
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	// 2 days * 8 = 16 adjusted, halved per recipient.
	for _, r := range records {
		if !approx(r.AdjustedQuantity, 8) {
			t.Errorf("AdjustedQuantity = %v, want 8", r.AdjustedQuantity)
		}
	}
	if !approx(records[0].TotalQuantityExclPrimary, 16) {
		t.Errorf("rollup qty = %v, want unsplit 16", records[0].TotalQuantityExclPrimary)
	}
}

func TestAttributeInvoiceRollups(t *testing.T) {
	inv := testInvoice("1004", "Alice Smith", "",
		primaryJobLine(),
		serviceLine("Camera inspection", 2, 250),
		jobber.LineItem{Name: "Credit Card Service Fee", Description: "Credit Card Service Fee", Quantity: 1, UnitPrice: 15})

	records := AttributeInvoice(inv, "createdAt")
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	first := records[0]
	if !first.HasRollups {
		t.Fatal("first record should carry rollups")
	}
	// Primary job and card fee excluded from the non-primary total.
	if !approx(first.InvoicedExclPrimaryJob, 500) {
		t.Errorf("InvoicedExclPrimaryJob = %v, want 500", first.InvoicedExclPrimaryJob)
	}
	if !approx(first.TotalQuantityInvoiced, 4) {
		t.Errorf("TotalQuantityInvoiced = %v, want 4", first.TotalQuantityInvoiced)
	}
	if !approx(first.TotalQuantityExclPrimary, 2) {
		t.Errorf("TotalQuantityExclPrimary = %v, want 2", first.TotalQuantityExclPrimary)
	}
	for i, r := range records[1:] {
		if r.HasRollups {
			t.Errorf("record %d should not carry rollups", i+1)
		}
	}
	if !records[0].PrimaryJob {
		t.Error("primary job line not flagged")
	}
}

func TestAttributeInvoiceSentPolicySkipsUnsent(t *testing.T) {
	inv := testInvoice("1005", "Alice Smith", "", serviceLine("Repair", 1, 100))

	if records := AttributeInvoice(inv, "sentAt"); records != nil {
		t.Errorf("unsent invoice under sent policy produced %d records", len(records))
	}

	sent := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	inv.SentAt = &sent
	records := AttributeInvoice(inv, "sentAt")
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Date != "2025-03-05" {
		t.Errorf("Date = %q, want sent date", records[0].Date)
	}
}

func TestAttributeInvoiceMissingLeadDefaultsUnknown(t *testing.T) {
	inv := testInvoice("1006", "", "", serviceLine("Repair", 1, 100))

	records := AttributeInvoice(inv, "createdAt")
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].LeadTech != core.UnknownName {
		t.Errorf("LeadTech = %q, want %q", records[0].LeadTech, core.UnknownName)
	}
}

func TestAttributeTimesheets(t *testing.T) {
	entries := []jobber.Timesheet{
		{
			StartAt:       time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC),
			FinalDuration: 28800,
			User: &jobber.TimesheetUser{Name: jobber.PersonName{FirstName: "Alice", LastName: "Smith"}},
		},
		{
			StartAt:       time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC),
			FinalDuration: 3600,
		},
	}

	records := AttributeTimesheets(entries)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Tech != "Alice Smith" || !approx(records[0].Hours, 8) {
		t.Errorf("record 0 = %+v", records[0])
	}
	if records[1].Tech != "Unknown Unknown" || !approx(records[1].Hours, 1) {
		t.Errorf("record 1 = %+v", records[1])
	}
}

func TestTechWorkedHoursSubstringMatch(t *testing.T) {
	records := []core.TimesheetRecord{
		{Tech: "Alice Marie Smith", Hours: 8},
		{Tech: "alice smith", Hours: 2},
		{Tech: "Bob Jones", Hours: 5},
	}

	if got := TechWorkedHours(records, "Alice Smith"); !approx(got, 2) {
		t.Errorf("worked hours = %v, want 2 (exact full-name containment only)", got)
	}
	if got := TechWorkedHours(records, "Smith"); !approx(got, 10) {
		t.Errorf("worked hours for partial = %v, want 10", got)
	}
}

func TestTechLineItemsMatching(t *testing.T) {
	records := []core.LineItemRecord{
		{LeadTech: "alice", AdjustedQuantity: 1},
		{LeadTech: "Alice Smith", AdjustedQuantity: 2},
		{LeadTech: "Alice Smith", AdjustedQuantity: 3, PrimaryJob: true},
		{LeadTech: "Bob Jones", AdjustedQuantity: 4},
	}

	got := TechLineItems(records, "alice", "Alice Smith")
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	if !approx(got[0].AdjustedQuantity+got[1].AdjustedQuantity, 3) {
		t.Errorf("selected quantities = %v, %v", got[0].AdjustedQuantity, got[1].AdjustedQuantity)
	}
}
