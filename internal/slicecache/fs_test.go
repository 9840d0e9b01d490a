package slicecache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"jobprofit/internal/core"
)

func TestFSStoreRoundtrip(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	key := Key{Tech: "Alice Smith", Year: 2025, Month: time.March}
	entry := Entry{
		Meta:  Meta{SavedAt: time.Now().UTC(), TTL: 6 * time.Hour, SchemaVersion: SchemaVersion},
		Month: core.MonthSlice{Month: "2025-03", Revenue: 1234.56},
	}

	if err := store.Put(key, entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, found, err := store.Get(key)
	if err != nil || !found {
		t.Fatalf("Get = (%v, %v)", found, err)
	}
	if got.Month.Revenue != 1234.56 || got.Month.Month != "2025-03" {
		t.Errorf("roundtrip slice = %+v", got.Month)
	}
}

func TestFSStoreSanitizesFilename(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFSStore(dir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	key := Key{Tech: "Alice O'Brien / Sr.", Year: 2025, Month: time.January}
	if err := store.Put(key, Entry{}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	want := filepath.Join(dir, "Alice_O_Brien___Sr_-2025-01.json")
	if _, err := os.Stat(want); err != nil {
		names, _ := filepath.Glob(filepath.Join(dir, "*"))
		t.Errorf("expected %s, found %v", want, names)
	}
}

func TestFSStoreMissAndDelete(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	key := Key{Tech: "Nobody", Year: 2025, Month: time.June}
	if _, found, err := store.Get(key); err != nil || found {
		t.Errorf("Get missing = (%v, %v), want miss without error", found, err)
	}
	if err := store.Delete(key); err != nil {
		t.Errorf("Delete missing should not error: %v", err)
	}
}

func TestFSStoreKeys(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	keys := []Key{
		{Tech: "Alice_Smith", Year: 2025, Month: time.January},
		{Tech: "Bob-Jones", Year: 2024, Month: time.December},
	}
	for _, key := range keys {
		if err := store.Put(key, Entry{}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	got, err := store.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d keys, want 2", len(got))
	}

	found := make(map[string]bool)
	for _, k := range got {
		found[k.String()] = true
	}
	for _, k := range keys {
		if !found[k.String()] {
			t.Errorf("key %s missing from listing", k.String())
		}
	}
}
