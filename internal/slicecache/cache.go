package slicecache

import (
	"fmt"
	"time"

	"jobprofit/internal/core"
	"jobprofit/internal/log"
)

// SchemaVersion tags every persisted slice. Entries written by an older
// aggregation pipeline are rebuilt rather than served.
const SchemaVersion = 3

// Key identifies one tech's slice for one calendar month.
type Key struct {
	Tech  string
	Year  int
	Month time.Month
}

func (k Key) String() string {
	return fmt.Sprintf("%s-%d-%02d", k.Tech, k.Year, int(k.Month))
}

// Meta is the envelope persisted alongside every slice.
type Meta struct {
	SavedAt       time.Time     `json:"savedAt"`
	TTL           time.Duration `json:"ttl"`
	SchemaVersion int           `json:"schemaVersion"`
}

// Entry is the persisted form of a month slice.
type Entry struct {
	Meta  Meta            `json:"meta"`
	Month core.MonthSlice `json:"month"`
}

// Store persists entries. Implementations: filesystem, sqlite, memory.
type Store interface {
	Get(key Key) (Entry, bool, error)
	Put(key Key, entry Entry) error
	Delete(key Key) error
	Keys() ([]Key, error)
}

// Fresh decides whether a cached entry may serve a request. Past months
// never expire once written by the current schema; the in-progress month
// is fresh only within its TTL.
func Fresh(meta Meta, currentMonth, forceRefresh bool, now time.Time) bool {
	if forceRefresh {
		return false
	}
	if meta.SchemaVersion != SchemaVersion {
		return false
	}
	if !currentMonth {
		return true
	}
	return now.Sub(meta.SavedAt) < meta.TTL
}

// Cache wraps a Store with the freshness policy and the degrade-on-error
// posture: read and write failures are logged and treated as misses, never
// surfaced to the report path.
type Cache struct {
	store  Store
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time
}

func New(store Store, ttl time.Duration, logger *log.Logger) *Cache {
	return &Cache{
		store:  store,
		ttl:    ttl,
		logger: logger.WithComponent("slicecache"),
		now:    time.Now,
	}
}

// Lookup returns the cached slice for key when present and fresh.
func (c *Cache) Lookup(key Key, forceRefresh bool) (core.MonthSlice, bool) {
	entry, found, err := c.store.Get(key)
	if err != nil {
		c.logger.Warn("Cache read failed, treating as miss", "key", key.String(), "error", err)
		return core.MonthSlice{}, false
	}
	if !found {
		return core.MonthSlice{}, false
	}

	now := c.now()
	currentMonth := key.Year == now.Year() && key.Month == now.Month()
	if !Fresh(entry.Meta, currentMonth, forceRefresh, now) {
		return core.MonthSlice{}, false
	}
	return entry.Month, true
}

// Save persists a freshly computed slice. The debug line-item payload is
// stripped first. Failures are logged and swallowed.
func (c *Cache) Save(key Key, slice core.MonthSlice) {
	slice.InvoiceItems = nil
	entry := Entry{
		Meta: Meta{
			SavedAt:       c.now(),
			TTL:           c.ttl,
			SchemaVersion: SchemaVersion,
		},
		Month: slice,
	}
	if err := c.store.Put(key, entry); err != nil {
		c.logger.Warn("Cache write failed, continuing without caching",
			"key", key.String(), "error", err)
	}
}

// TTL returns the configured freshness window for the current month.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
