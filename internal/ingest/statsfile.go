package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"
)

// StatsFile is the published stats document consumed by the update check.
type StatsFile struct {
	Version     string                `json:"version"`
	LastUpdated string                `json:"lastUpdated"`
	Leagues     map[string]LeagueData `json:"leagues"` // keyed by league key, e.g. "league1"
}

// LeagueData holds one league's teams keyed by display name.
type LeagueData struct {
	Teams map[string]TeamEntry `json:"teams"`
}

// TeamEntry is one team's table position, counts and form.
type TeamEntry struct {
	Position int         `json:"position"`
	Stats    TeamCounts  `json:"stats"`
	Form     FormEntry   `json:"form"`
	Home     *VenueSplit `json:"home,omitempty"`
	Away     *VenueSplit `json:"away,omitempty"`
}

// TeamCounts are the season totals.
type TeamCounts struct {
	Played       int `json:"played"`
	Wins         int `json:"wins"`
	Draws        int `json:"draws"`
	Losses       int `json:"losses"`
	GoalsFor     int `json:"goalsFor"`
	GoalsAgainst int `json:"goalsAgainst"`
	CleanSheets  int `json:"cleanSheets"`
}

// FormEntry lists recent results as "W", "D" or "L", oldest first.
type FormEntry struct {
	Last5 []string `json:"last5"`
}

// VersionFor returns the stats version label for a publication date.
func VersionFor(t time.Time) string {
	return "1.0." + t.Format(time.DateOnly)
}

// NewStatsFile assembles a stats document from parsed table rows.
func NewStatsFile(now time.Time, rowsByKey map[string][]TableRow) StatsFile {
	f := StatsFile{
		Version:     VersionFor(now),
		LastUpdated: now.Format(time.DateOnly),
		Leagues:     make(map[string]LeagueData, len(rowsByKey)),
	}
	for key, rows := range rowsByKey {
		teams := make(map[string]TeamEntry, len(rows))
		for _, r := range rows {
			teams[r.Team] = TeamEntry{
				Position: r.Position,
				Stats: TeamCounts{
					Played:       r.Played,
					Wins:         r.Won,
					Draws:        r.Drawn,
					Losses:       r.Lost,
					GoalsFor:     r.GoalsFor,
					GoalsAgainst: r.GoalsAgainst,
					CleanSheets:  r.CleanSheets,
				},
				Form: FormEntry{Last5: lastN(formLetters(r.Form), 5)},
				Home: r.Home,
				Away: r.Away,
			}
		}
		f.Leagues[key] = LeagueData{Teams: teams}
	}
	return f
}

// Keys lists the league keys present, sorted.
func (f StatsFile) Keys() []string {
	return slices.Sorted(maps.Keys(f.Leagues))
}

// Rows returns the league's teams as table rows ordered by position.
func (f StatsFile) Rows(key string) ([]TableRow, bool) {
	ld, ok := f.Leagues[key]
	if !ok {
		return nil, false
	}
	rows := make([]TableRow, 0, len(ld.Teams))
	for name, e := range ld.Teams {
		rows = append(rows, TableRow{
			Position:     e.Position,
			Team:         name,
			Played:       e.Stats.Played,
			Won:          e.Stats.Wins,
			Drawn:        e.Stats.Draws,
			Lost:         e.Stats.Losses,
			GoalsFor:     e.Stats.GoalsFor,
			GoalsAgainst: e.Stats.GoalsAgainst,
			CleanSheets:  e.Stats.CleanSheets,
			Form:         strings.Join(e.Form.Last5, ""),
			Home:         e.Home,
			Away:         e.Away,
		})
	}
	slices.SortFunc(rows, func(a, b TableRow) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		return strings.Compare(a.Team, b.Team)
	})
	return rows, true
}

// DecodeStatsFile reads a stats document. Unknown fields are rejected so
// schema drift surfaces as an error instead of silently zeroed counts.
func DecodeStatsFile(r io.Reader) (StatsFile, error) {
	var f StatsFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return StatsFile{}, fmt.Errorf("decode stats file: %w", err)
	}
	if f.Version == "" {
		return StatsFile{}, fmt.Errorf("decode stats file: missing version")
	}
	return f, nil
}

// EncodeStatsFile writes f as indented JSON.
func EncodeStatsFile(w io.Writer, f StatsFile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode stats file: %w", err)
	}
	return nil
}

func lastN(s []string, n int) []string {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
