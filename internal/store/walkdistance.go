package store

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// WalkDistances is the WalkingStatic agency's pre-baked pedestrian data:
// a table of precomputed durations between catalog stops, loaded once
// and read-only thereafter.
type WalkDistances struct {
	durations map[string]map[string]int // fromStop -> toStop -> seconds
}

// LoadWalkDistances reads every precomputed (from, to, duration_seconds)
// row from Postgres.
func LoadWalkDistances(ctx context.Context, pool *pgxpool.Pool) (*WalkDistances, error) {
	rows, err := pool.Query(ctx, `SELECT from_stop, to_stop, duration_seconds FROM walk_distance`)
	if err != nil {
		return nil, fmt.Errorf("store: query walk distances: %w", err)
	}
	defer rows.Close()

	w := &WalkDistances{durations: make(map[string]map[string]int)}
	for rows.Next() {
		var from, to string
		var seconds int
		if err := rows.Scan(&from, &to, &seconds); err != nil {
			log.Printf("store: skipping malformed walk_distance row: %v", err)
			continue
		}
		w.set(from, to, seconds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: read walk distances: %w", err)
	}

	return w, nil
}

func (w *WalkDistances) set(from, to string, seconds int) {
	if w.durations[from] == nil {
		w.durations[from] = make(map[string]int)
	}
	w.durations[from][to] = seconds
}

// Seconds returns the precomputed walking duration between two catalog
// stops, symmetric regardless of which direction it was stored in.
func (w *WalkDistances) Seconds(from, to string) (int, bool) {
	if m, ok := w.durations[from]; ok {
		if s, ok := m[to]; ok {
			return s, true
		}
	}
	if m, ok := w.durations[to]; ok {
		if s, ok := m[from]; ok {
			return s, true
		}
	}
	return 0, false
}

// WalkDistanceEntry is one precomputed pedestrian leg, used by
// NewWalkDistancesForTest to build fixtures without Postgres.
type WalkDistanceEntry struct {
	From    string
	To      string
	Seconds int
}

// NewWalkDistancesForTest builds a WalkDistances directly from a slice of
// entries, bypassing Postgres, for agency unit tests.
func NewWalkDistancesForTest(entries []WalkDistanceEntry) *WalkDistances {
	w := &WalkDistances{durations: make(map[string]map[string]int)}
	for _, e := range entries {
		w.set(e.From, e.To, e.Seconds)
	}
	return w
}
