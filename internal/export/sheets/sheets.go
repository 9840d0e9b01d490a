package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"jobprofit/internal/core"
	"jobprofit/internal/log"
)

// Exporter writes year reports to a Google Sheets spreadsheet, one
// year-prefixed tab per year. Authentication is a service account.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	logger        *log.Logger
}

type Config struct {
	SpreadsheetID string
	SheetName     string
}

func NewExporter(ctx context.Context, config Config, logger *log.Logger) (*Exporter, error) {
	if strings.TrimSpace(config.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	sheetBase := strings.TrimSpace(config.SheetName)
	if sheetBase == "" {
		sheetBase = "Profitability"
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: config.SpreadsheetID,
		sheetBase:     sheetBase,
		logger:        logger.WithComponent("sheets_export"),
	}, nil
}

// newSheetsService builds a Sheets service from service account
// credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	return gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

// Export appends the report's rows for its tech: the year summary first,
// then one row per month. Earlier rows for the same tech are not rewritten;
// the sheet is an append-only export log.
func (e *Exporter) Export(ctx context.Context, report core.Report) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	sheetName := fmt.Sprintf("%d %s", report.Meta.Year, e.sheetBase)
	rows := reportRows(report)

	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := e.svc.Spreadsheets.Values.Get(e.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get sheet dimensions for %s: %w", sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	if nextRow == 1 {
		rows = append([][]any{headerRow()}, rows...)
	}

	dataRange := fmt.Sprintf("%s!A%d", sheetName, nextRow)
	vr := &gsheet.ValueRange{Values: rows}
	_, err = e.svc.Spreadsheets.Values.Update(e.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update sheet %s: %w", sheetName, err)
	}

	e.logger.InfoContext(ctx, "Exported report to sheet",
		"tech", report.Tech,
		"sheet", sheetName,
		"rows", len(rows))
	return nil
}

func headerRow() []any {
	return []any{
		"Tech", "Period", "Invoiced Hours", "Worked Hours", "Utilization %",
		"Revenue", "Total Cost", "Profit", "Margin %", "Hourly Rate", "Status",
	}
}

func reportRows(report core.Report) [][]any {
	rows := [][]any{{
		report.Tech,
		report.Summary.PeriodLabel,
		report.Summary.TotalInvoicedHours,
		report.Summary.TotalWorkedHours,
		report.Summary.AvgUtilization,
		report.Summary.TotalRevenue,
		"",
		report.Summary.TotalProfit,
		report.Summary.AvgProfitMargin,
		report.Summary.AvgHourlyRate,
		fmt.Sprintf("%d/%d months", report.Meta.SuccessfulMonths, report.Meta.TotalMonths),
	}}

	for _, m := range report.MonthlyData {
		status := "ok"
		if m.Error {
			status = "error: " + m.ErrorMessage
		}
		rows = append(rows, []any{
			report.Tech,
			m.Month,
			m.InvoicedHours,
			m.WorkedHours,
			m.Utilization,
			m.Revenue,
			m.TotalCost,
			m.Profit,
			m.ProfitMargin,
			m.HourlyRate,
			status,
		})
	}
	return rows
}
