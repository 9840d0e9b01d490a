package slicecache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists slices in a single-table SQLite database. The
// entry envelope is stored as a JSON payload column; tech, year and month
// are first-class columns so purge filters can run in SQL.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := runMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("migrate slice database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open slice database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping slice database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key Key) (Entry, bool, error) {
	var payload string
	err := s.db.QueryRow(
		`SELECT payload FROM month_slices WHERE tech = ? AND year = ? AND month = ?`,
		key.Tech, key.Year, int(key.Month),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("query slice: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode slice payload: %w", err)
	}
	return entry, true, nil
}

func (s *SQLiteStore) Put(key Key, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode slice payload: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO month_slices (tech, year, month, payload, saved_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(tech, year, month) DO UPDATE SET
		   payload = excluded.payload,
		   saved_at = excluded.saved_at`,
		key.Tech, key.Year, int(key.Month), string(payload), entry.Meta.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert slice: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(key Key) error {
	_, err := s.db.Exec(
		`DELETE FROM month_slices WHERE tech = ? AND year = ? AND month = ?`,
		key.Tech, key.Year, int(key.Month),
	)
	if err != nil {
		return fmt.Errorf("delete slice: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Keys() ([]Key, error) {
	rows, err := s.db.Query(`SELECT tech, year, month FROM month_slices ORDER BY tech, year, month`)
	if err != nil {
		return nil, fmt.Errorf("list slices: %w", err)
	}
	defer rows.Close()

	var keys []Key
	for rows.Next() {
		var tech string
		var year, month int
		if err := rows.Scan(&tech, &year, &month); err != nil {
			return nil, fmt.Errorf("scan slice key: %w", err)
		}
		keys = append(keys, Key{Tech: tech, Year: year, Month: time.Month(month)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slice keys: %w", err)
	}
	return keys, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
