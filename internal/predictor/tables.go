package predictor

import (
	"errors"
	"fmt"
	"time"

	"scottish-predictor/internal/catalog"
	"scottish-predictor/internal/model"
	"scottish-predictor/internal/stats"
)

// SyntheticVersion labels tables built purely by the generator.
const SyntheticVersion = "synthetic"

// Tables is an immutable snapshot of everything a prediction reads. A
// refresh builds a new Tables and swaps it in whole.
type Tables struct {
	catalog  *catalog.Catalog
	teams    stats.TeamTable
	matchups stats.MatchupTable
	version  string
	builtAt  time.Time
}

// NewTables wraps pre-built tables. The maps must not be modified after
// the call.
func NewTables(cat *catalog.Catalog, teams stats.TeamTable, matchups stats.MatchupTable, version string, builtAt time.Time) *Tables {
	return &Tables{
		catalog:  cat,
		teams:    teams,
		matchups: matchups,
		version:  version,
		builtAt:  builtAt,
	}
}

// Generate builds synthetic tables for the whole catalog.
func Generate(cat *catalog.Catalog, g *stats.Generator, builtAt time.Time) *Tables {
	teams, matchups := g.GenerateAll(cat)
	return NewTables(cat, teams, matchups, SyntheticVersion, builtAt)
}

func (t *Tables) Catalog() *catalog.Catalog { return t.catalog }
func (t *Tables) Version() string           { return t.version }
func (t *Tables) BuiltAt() time.Time        { return t.builtAt }

// Team looks up a team's stats.
func (t *Tables) Team(league, team string) (model.TeamStats, bool) {
	s, ok := t.teams[league][team]
	return s, ok
}

// Matchup looks up the record for a home/away pairing.
func (t *Tables) Matchup(league, home, away string) (model.LeagueStats, bool) {
	ls, ok := t.matchups[league][home][away]
	return ls, ok
}

// Validate checks that every catalog team has valid stats and every ordered
// pair of distinct teams has a matchup whose results add up.
func (t *Tables) Validate() error {
	if t.catalog == nil {
		return errors.New("tables have no catalog")
	}
	var errs []error
	for _, name := range t.catalog.LeagueNames() {
		l, _ := t.catalog.League(name)
		for _, home := range l.Teams {
			s, ok := t.Team(name, home)
			if !ok {
				errs = append(errs, fmt.Errorf("%s: no stats for %s", name, home))
				continue
			}
			if err := s.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %s: %w", name, home, err))
			}
			for _, away := range l.Teams {
				if home == away {
					continue
				}
				ls, ok := t.Matchup(name, home, away)
				if !ok {
					errs = append(errs, fmt.Errorf("%s: no matchup %s v %s", name, home, away))
					continue
				}
				h := ls.HeadToHead
				if h.HomeWins+h.Draws+h.AwayWins != h.TotalMatches {
					errs = append(errs, fmt.Errorf("%s: %s v %s: results sum to %d of %d",
						name, home, away, h.HomeWins+h.Draws+h.AwayWins, h.TotalMatches))
				}
			}
		}
	}
	return errors.Join(errs...)
}
