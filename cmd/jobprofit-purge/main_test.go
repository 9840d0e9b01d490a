package main

import (
	"testing"
	"time"

	"jobprofit/internal/slicecache"
)

func TestMatches(t *testing.T) {
	key := slicecache.Key{Tech: "alice", Year: 2025, Month: time.March}

	tests := []struct {
		name  string
		tech  string
		year  int
		month time.Month
		want  bool
	}{
		{"no filters", "", 0, 0, true},
		{"tech match", "alice", 0, 0, true},
		{"tech mismatch", "bob", 0, 0, false},
		{"year match", "", 2025, 0, true},
		{"year mismatch", "", 2024, 0, false},
		{"full match", "alice", 2025, time.March, true},
		{"month mismatch", "alice", 2025, time.April, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matches(key, tt.tech, tt.year, tt.month); got != tt.want {
				t.Errorf("matches = %v, want %v", got, tt.want)
			}
		})
	}
}
