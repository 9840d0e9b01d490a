package jobber

import (
	"context"
	"fmt"
	"time"
)

// The filter field name is spliced into the document because GraphQL input
// object keys cannot be variables. It is restricted to the two validated
// date-field policies.
const invoicesQueryTmpl = `
query InvoicesWindow($cursor: String, $first: Int!, $lineItems: Int!, $start: ISO8601DateTime!, $end: ISO8601DateTime!) {
  invoices(first: $first, after: $cursor, filter: { %s: { after: $start, before: $end } }) {
    nodes {
      id
      invoiceNumber
      createdAt
      sentAt
      client {
        companyName
        firstName
        lastName
      }
      amounts {
        total
        paymentsTotal
      }
      customFields {
        __typename
        ... on CustomFieldText {
          label
          valueText
        }
        ... on CustomFieldDropdown {
          label
          valueDropdown
        }
      }
      lineItems(first: $lineItems) {
        nodes {
          name
          description
          quantity
          unitPrice
          linkedProductOrService {
            category
          }
        }
        pageInfo {
          endCursor
          hasNextPage
        }
      }
    }
    pageInfo {
      endCursor
      hasNextPage
    }
  }
}`

const timesheetsQuery = `
query TimesheetsWindow($cursor: String, $first: Int!, $start: ISO8601DateTime!, $end: ISO8601DateTime!) {
  timeSheetEntries(first: $first, after: $cursor, filter: { startAt: { after: $start, before: $end } }) {
    nodes {
      id
      startAt
      finalDuration
      user {
        name {
          firstName
          lastName
        }
      }
    }
    pageInfo {
      endCursor
      hasNextPage
    }
  }
}`

// FetchInvoices pages through every invoice whose effective date falls in
// [start, end], pacing between pages. A failed page abandons the whole
// window; the caller records the month as errored.
func (c *Client) FetchInvoices(ctx context.Context, start, end time.Time) ([]Invoice, error) {
	query := fmt.Sprintf(invoicesQueryTmpl, c.config.DateField)

	var all []Invoice
	cursor := ""
	for page := 1; ; page++ {
		vars := map[string]any{
			"first":     c.config.InvoicePageSize,
			"lineItems": c.config.LineItemPageSize,
			"start":     start.Format(time.RFC3339),
			"end":       end.Format(time.RFC3339),
		}
		if cursor != "" {
			vars["cursor"] = cursor
		}

		var data invoicesData
		if err := c.query(ctx, query, vars, &data); err != nil {
			return nil, fmt.Errorf("fetch invoices page %d: %w", page, err)
		}

		all = append(all, data.Invoices.Nodes...)
		c.logger.InfoContext(ctx, "Fetched invoice page",
			"page", page,
			"page_invoices", len(data.Invoices.Nodes),
			"total_invoices", len(all))

		if !data.Invoices.PageInfo.HasNextPage {
			break
		}
		if c.config.InvoicePageLimit > 0 && page >= c.config.InvoicePageLimit {
			c.logger.WarnContext(ctx, "Invoice page limit reached, result truncated",
				"limit", c.config.InvoicePageLimit)
			break
		}
		cursor = data.Invoices.PageInfo.EndCursor

		if c.config.InvoicePacer != nil {
			if err := c.config.InvoicePacer.Wait(ctx); err != nil {
				return nil, fmt.Errorf("pace invoice pages: %w", err)
			}
		}
	}
	return all, nil
}

// FetchTimesheets pages through every time entry starting in [start, end].
// The page ceiling bounds worst-case API spend; hitting it truncates the
// result with a warning rather than failing.
func (c *Client) FetchTimesheets(ctx context.Context, start, end time.Time) ([]Timesheet, error) {
	var all []Timesheet
	cursor := ""
	for page := 1; ; page++ {
		vars := map[string]any{
			"first": c.config.TimesheetPageSize,
			"start": start.Format(time.RFC3339),
			"end":   end.Format(time.RFC3339),
		}
		if cursor != "" {
			vars["cursor"] = cursor
		}

		var data timesheetsData
		if err := c.query(ctx, timesheetsQuery, vars, &data); err != nil {
			return nil, fmt.Errorf("fetch timesheets page %d: %w", page, err)
		}

		all = append(all, data.TimeSheetEntries.Nodes...)
		c.logger.InfoContext(ctx, "Fetched timesheet page",
			"page", page,
			"page_entries", len(data.TimeSheetEntries.Nodes),
			"total_entries", len(all))

		if !data.TimeSheetEntries.PageInfo.HasNextPage {
			break
		}
		if page >= c.config.TimesheetPageLimit {
			c.logger.WarnContext(ctx, "Timesheet page ceiling reached, result truncated",
				"ceiling", c.config.TimesheetPageLimit)
			break
		}
		cursor = data.TimeSheetEntries.PageInfo.EndCursor

		if c.config.TimesheetPacer != nil {
			if err := c.config.TimesheetPacer.Wait(ctx); err != nil {
				return nil, fmt.Errorf("pace timesheet pages: %w", err)
			}
		}
	}
	return all, nil
}
