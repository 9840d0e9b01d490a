package slicecache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// FSStore keeps one JSON file per slice under a flat directory, named
// "{tech}-{year}-{month}.json" with unsafe tech-name characters replaced
// by underscores.
type FSStore struct {
	dir string
}

func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

func (s *FSStore) path(key Key) string {
	tech := unsafeFilenameChars.ReplaceAllString(key.Tech, "_")
	return filepath.Join(s.dir, fmt.Sprintf("%s-%d-%02d.json", tech, key.Year, int(key.Month)))
}

func (s *FSStore) Get(key Key) (Entry, bool, error) {
	raw, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read slice file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode slice file: %w", err)
	}
	return entry, true, nil
}

func (s *FSStore) Put(key Key, entry Entry) error {
	raw, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("encode slice: %w", err)
	}
	if err := os.WriteFile(s.path(key), raw, 0644); err != nil {
		return fmt.Errorf("write slice file: %w", err)
	}
	return nil
}

func (s *FSStore) Delete(key Key) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete slice file: %w", err)
	}
	return nil
}

func (s *FSStore) Keys() ([]Key, error) {
	names, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list slice files: %w", err)
	}

	var keys []Key
	for _, name := range names {
		key, ok := parseFilename(filepath.Base(name))
		if !ok {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// parseFilename splits "{tech}-{year}-{month}.json" from the right, since
// a sanitized tech name may itself contain dashes.
func parseFilename(name string) (Key, bool) {
	name = strings.TrimSuffix(name, ".json")
	parts := strings.Split(name, "-")
	if len(parts) < 3 {
		return Key{}, false
	}

	month, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || month < 1 || month > 12 {
		return Key{}, false
	}
	year, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil || year < 2000 {
		return Key{}, false
	}
	tech := strings.Join(parts[:len(parts)-2], "-")
	if tech == "" {
		return Key{}, false
	}
	return Key{Tech: tech, Year: year, Month: time.Month(month)}, true
}
