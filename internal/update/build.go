// Package update keeps the predictor's tables in step with published
// league statistics.
package update

import (
	"fmt"
	"time"

	"scottish-predictor/internal/catalog"
	"scottish-predictor/internal/config"
	"scottish-predictor/internal/ingest"
	"scottish-predictor/internal/predictor"
	"scottish-predictor/internal/stats"
)

// BuildTables turns a stats document into prediction tables. Leagues the
// document covers take their team stats from the published table; teams it
// omits, leagues it lacks and every head-to-head record come from g.
func BuildTables(cat *catalog.Catalog, g *stats.Generator, f ingest.StatsFile, builtAt time.Time) (*predictor.Tables, error) {
	if err := ingest.ValidateFile(f); err != nil {
		return nil, err
	}

	teams, matchups := g.GenerateAll(cat)

	for _, key := range f.Keys() {
		l, ok := cat.LeagueByKey(key)
		if !ok {
			return nil, fmt.Errorf("league key %q is not in the catalog", key)
		}
		rows, _ := f.Rows(key)
		resolved, err := ingest.Resolve(cat, l.Name, rows)
		if err != nil {
			return nil, fmt.Errorf("league %s: %w", key, err)
		}
		published, err := stats.FromTable(l, resolved)
		if err != nil {
			return nil, fmt.Errorf("league %s: %w", key, err)
		}
		for name, s := range published {
			teams[l.Name][name] = s
		}
	}

	t := predictor.NewTables(cat, teams, matchups, f.Version, builtAt)
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("built tables for %s: %w", f.Version, err)
	}
	return t, nil
}

// SnapshotGenerator returns the generator BuildTables should fill f with.
// It depends only on f, so a stored document always rebuilds the same
// head-to-head records. fallback dates the season when f's lastUpdated
// does not parse.
func SnapshotGenerator(f ingest.StatsFile, fallback time.Time) *stats.Generator {
	published, err := time.Parse(time.DateOnly, f.LastUpdated)
	if err != nil {
		published = fallback
	}
	return stats.NewSeededGenerator(config.SnapshotSeed, stats.SeasonStart(published))
}

func teamCount(f ingest.StatsFile) int {
	n := 0
	for _, ld := range f.Leagues {
		n += len(ld.Teams)
	}
	return n
}
