package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Invoice date-field policies. "sentAt" counts only issued invoices and
// skips drafts with no sent timestamp; "createdAt" counts everything.
const (
	DateFieldCreated = "createdAt"
	DateFieldSent    = "sentAt"
)

type Config struct {
	// Jobber API
	JobberAPIURL         string
	JobberAccessToken    string
	JobberTokenFile      string
	JobberGraphQLVersion string
	InvoiceDateField     string

	// Pagination and rate budget. The provider restores a fixed number of
	// rate-limit points per second, so every page and every month fetch is
	// separated by a cooperative delay.
	InvoicePageSize    int
	LineItemPageSize   int
	InvoicePageLimit   int // 0 = unbounded
	TimesheetPageSize  int
	TimesheetPageLimit int
	InvoicePageDelay   time.Duration
	TimesheetPageDelay time.Duration
	MonthDelay         time.Duration
	TechDelay          time.Duration

	// Cost model
	SupportRate  float64
	OverheadRate float64
	LeadRates    map[string]float64 // display name -> hourly lead rate
	TechRoster   map[string]string  // short name -> timesheet full name

	// Slice cache
	CacheBackend string // fs | sqlite | memory
	CacheDir     string
	SQLiteDBPath string
	CacheTTL     time.Duration

	// AMQP (optional; empty URL disables event publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export (optional; empty ID disables export)
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

func Load() *Config {
	cfg := &Config{
		JobberAPIURL:         getEnv("JOBBER_API_URL", "https://api.getjobber.com/api/graphql"),
		JobberAccessToken:    getEnv("JOBBER_ACCESS_TOKEN", ""),
		JobberTokenFile:      getEnv("JOBBER_TOKEN_FILE", ""),
		JobberGraphQLVersion: getEnv("JOBBER_GRAPHQL_VERSION", "2025-01-20"),
		InvoiceDateField:     getEnv("INVOICE_DATE_FIELD", DateFieldCreated),

		InvoicePageSize:    getEnvInt("INVOICE_PAGE_SIZE", 20),
		LineItemPageSize:   getEnvInt("INVOICE_LINEITEM_PAGE_SIZE", 50),
		InvoicePageLimit:   getEnvInt("INVOICE_PAGE_LIMIT", 0),
		TimesheetPageSize:  getEnvInt("TIMESHEET_PAGE_SIZE", 20),
		TimesheetPageLimit: getEnvInt("TIMESHEET_PAGE_LIMIT", 15),
		InvoicePageDelay:   getEnvDuration("INVOICE_PAGE_DELAY", 400*time.Millisecond),
		TimesheetPageDelay: getEnvDuration("TIMESHEET_PAGE_DELAY", 500*time.Millisecond),
		MonthDelay:         getEnvDuration("MONTH_DELAY", 2*time.Second),
		TechDelay:          getEnvDuration("TECH_DELAY", 45*time.Second),

		SupportRate:  getEnvFloat("SUPPORT_TECH_RATE", 16.70),
		OverheadRate: getEnvFloat("FIXED_OVERHEAD_RATE", 18.07),
		LeadRates:    getEnvFloatMap("LEAD_TECH_RATES"),
		TechRoster:   getEnvStringMap("TECH_ROSTER"),

		CacheBackend: getEnv("CACHE_BACKEND", "fs"),
		CacheDir:     getEnv("CACHE_DIR", "./cache/reports"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/jobprofit.db"),
		CacheTTL:     getEnvDuration("MONTH_CACHE_TTL", 6*time.Hour),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "jobprofit"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "report_events"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Profitability"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if c.InvoiceDateField != DateFieldCreated && c.InvoiceDateField != DateFieldSent {
		errs = append(errs, fmt.Sprintf("invalid invoice date field '%s': must be '%s' or '%s'",
			c.InvoiceDateField, DateFieldCreated, DateFieldSent))
	}

	if c.InvoicePageSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid invoice page size %d: must be at least 1", c.InvoicePageSize))
	}
	if c.LineItemPageSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid line item page size %d: must be at least 1", c.LineItemPageSize))
	}
	if c.InvoicePageLimit < 0 {
		errs = append(errs, fmt.Sprintf("invalid invoice page limit %d: must be 0 (unbounded) or positive", c.InvoicePageLimit))
	}
	if c.TimesheetPageSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid timesheet page size %d: must be at least 1", c.TimesheetPageSize))
	}
	if c.TimesheetPageLimit < 1 {
		errs = append(errs, fmt.Sprintf("invalid timesheet page limit %d: must be at least 1", c.TimesheetPageLimit))
	}
	for name, d := range map[string]time.Duration{
		"invoice page delay":   c.InvoicePageDelay,
		"timesheet page delay": c.TimesheetPageDelay,
		"month delay":          c.MonthDelay,
		"tech delay":           c.TechDelay,
	} {
		if d < 0 {
			errs = append(errs, fmt.Sprintf("invalid %s %v: must not be negative", name, d))
		}
	}

	if c.SupportRate < 0 {
		errs = append(errs, fmt.Sprintf("invalid support tech rate %.2f: must not be negative", c.SupportRate))
	}
	if c.OverheadRate < 0 {
		errs = append(errs, fmt.Sprintf("invalid fixed overhead rate %.2f: must not be negative", c.OverheadRate))
	}
	for tech, rate := range c.LeadRates {
		if rate < 0 {
			errs = append(errs, fmt.Sprintf("invalid lead rate %.2f for tech '%s': must not be negative", rate, tech))
		}
	}

	switch c.CacheBackend {
	case "fs":
		if c.CacheDir == "" {
			errs = append(errs, "cache directory cannot be empty when using fs backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case "memory":
	default:
		errs = append(errs, fmt.Sprintf("invalid cache backend '%s': must be one of [fs sqlite memory]", c.CacheBackend))
	}

	if c.CacheTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid month cache TTL %v: must be at least 1 minute", c.CacheTTL))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleSheetName == "" {
		errs = append(errs, "Google sheet name cannot be empty when a spreadsheet ID is provided")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

// FullName resolves a tech's short name to the timesheet full name,
// falling back to the name as given when the roster has no entry.
func (c *Config) FullName(tech string) string {
	if full, ok := c.TechRoster[strings.ToLower(tech)]; ok {
		return full
	}
	return tech
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvFloatMap parses "Name=12.5,Other=7.25" into a map. Malformed
// entries are skipped rather than failing the load.
func getEnvFloatMap(key string) map[string]float64 {
	out := make(map[string]float64)
	for name, raw := range splitPairs(os.Getenv(key)) {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			out[name] = f
		}
	}
	return out
}

// getEnvStringMap parses "wes=Wes Transier,lorin=Lorin S" into a map with
// lowercased keys.
func getEnvStringMap(key string) map[string]string {
	out := make(map[string]string)
	for name, raw := range splitPairs(os.Getenv(key)) {
		out[strings.ToLower(name)] = raw
	}
	return out
}

func splitPairs(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}
