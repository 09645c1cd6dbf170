package ingest

import (
	"errors"
	"fmt"
	"slices"
)

// MaxGoalsPerGame flags implausible scoring rates.
const MaxGoalsPerGame = 4.0

// ValidationError describes one problem with one table row.
type ValidationError struct {
	Position int
	Team     string
	Problem  string
}

func (e *ValidationError) Error() string {
	if e.Team == "" {
		return fmt.Sprintf("position %d: %s", e.Position, e.Problem)
	}
	return fmt.Sprintf("%s (position %d): %s", e.Team, e.Position, e.Problem)
}

// Validate checks a league table and returns every violation found, joined.
// A nil error means the rows are safe to feed the predictor.
func Validate(rows []TableRow) error {
	var errs []error
	add := func(r TableRow, format string, args ...any) {
		errs = append(errs, &ValidationError{
			Position: r.Position,
			Team:     r.Team,
			Problem:  fmt.Sprintf(format, args...),
		})
	}

	if len(rows) == 0 {
		return errors.New("empty table")
	}

	seen := make(map[int]string, len(rows))
	teams := make(map[string]bool, len(rows))
	for _, r := range rows {
		if r.Team == "" {
			add(r, "empty team name")
		} else if teams[r.Team] {
			add(r, "team listed twice")
		}
		teams[r.Team] = true

		if other, dup := seen[r.Position]; dup {
			add(r, "duplicate position, also held by %s", other)
		}
		seen[r.Position] = r.Team

		if r.Played < 0 || r.Won < 0 || r.Drawn < 0 || r.Lost < 0 ||
			r.GoalsFor < 0 || r.GoalsAgainst < 0 || r.CleanSheets < 0 {
			add(r, "negative count")
			continue
		}
		if r.Played == 0 {
			add(r, "no matches played")
			continue
		}
		if r.Played != r.Won+r.Drawn+r.Lost {
			add(r, "played %d does not match W/D/L total %d", r.Played, r.Won+r.Drawn+r.Lost)
		}
		if r.CleanSheets > r.Played {
			add(r, "clean sheets %d exceed games played %d", r.CleanSheets, r.Played)
		}
		if rate := float64(r.GoalsFor) / float64(r.Played); rate > MaxGoalsPerGame {
			add(r, "unusually high scoring rate %.2f", rate)
		}
		if _, err := ParseForm(r.Form); err != nil {
			add(r, "%v", err)
		}
		if r.Home != nil && r.Away != nil {
			validateSplits(r, add)
		}
	}

	positions := make([]int, 0, len(seen))
	for p := range seen {
		positions = append(positions, p)
	}
	slices.Sort(positions)
	for i, p := range positions {
		if p != i+1 {
			errs = append(errs, fmt.Errorf("positions are not contiguous from 1: found %d at rank %d", p, i+1))
			break
		}
	}

	return errors.Join(errs...)
}

func validateSplits(r TableRow, add func(TableRow, string, ...any)) {
	h, a := r.Home, r.Away
	if h.Won+a.Won != r.Won || h.Drawn+a.Drawn != r.Drawn || h.Lost+a.Lost != r.Lost {
		add(r, "home/away results do not sum to the overall record")
	}
	if h.GoalsFor+a.GoalsFor != r.GoalsFor || h.GoalsAgainst+a.GoalsAgainst != r.GoalsAgainst {
		add(r, "home/away goals do not sum to the overall totals")
	}
}

// ValidateFile validates every league in a stats document.
func ValidateFile(f StatsFile) error {
	var errs []error
	for _, key := range f.Keys() {
		rows, _ := f.Rows(key)
		if err := Validate(rows); err != nil {
			errs = append(errs, fmt.Errorf("league %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
