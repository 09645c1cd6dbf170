// Package predictor turns team and matchup statistics into a single match
// prediction.
package predictor

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync/atomic"

	"scottish-predictor/internal/analysis"
	"scottish-predictor/internal/mathutil"
	"scottish-predictor/internal/model"
)

// Predictor answers predictions from the current Tables. It is safe for
// concurrent use; Swap replaces the tables atomically.
type Predictor struct {
	tables atomic.Pointer[Tables]
	method analysis.Method
	seed   *uint64
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithMethod selects the outcome probability calculation.
func WithMethod(m analysis.Method) Option {
	return func(p *Predictor) { p.method = m }
}

// WithSeed makes every Predict call draw from a fresh source seeded with
// seed, so identical requests against the same tables give identical
// results.
func WithSeed(seed uint64) Option {
	return func(p *Predictor) { p.seed = &seed }
}

// New creates a Predictor over t. The default method is the Poisson grid.
func New(t *Tables, opts ...Option) (*Predictor, error) {
	if t == nil {
		return nil, errors.New("predictor needs tables")
	}
	p := &Predictor{method: analysis.MethodPoisson}
	for _, opt := range opts {
		opt(p)
	}
	p.tables.Store(t)
	return p, nil
}

// Swap installs t for all subsequent predictions. Calls already running
// finish against the tables they started with.
func (p *Predictor) Swap(t *Tables) error {
	if t == nil {
		return errors.New("cannot swap in nil tables")
	}
	old := p.tables.Swap(t)
	slog.Info("Prediction tables swapped", "from", old.Version(), "to", t.Version())
	return nil
}

// Tables returns the current snapshot.
func (p *Predictor) Tables() *Tables {
	return p.tables.Load()
}

// Method reports the configured probability method.
func (p *Predictor) Method() analysis.Method {
	return p.method
}

// Leagues lists league names in catalog order.
func (p *Predictor) Leagues() []string {
	return p.tables.Load().Catalog().LeagueNames()
}

// Teams lists a league's roster in table order.
func (p *Predictor) Teams(league string) ([]string, error) {
	l, ok := p.tables.Load().Catalog().League(league)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLeague, league)
	}
	return l.Teams, nil
}

// Predict forecasts homeTeam v awayTeam in league. Home and away may be the
// same team; that fixture has no history and is predicted from the two
// identical stat lines.
func (p *Predictor) Predict(homeTeam, awayTeam, league string) (model.PredictionResult, error) {
	t := p.tables.Load()

	l, ok := t.Catalog().League(league)
	if !ok {
		return model.PredictionResult{}, fmt.Errorf("%w: %q", ErrInvalidLeague, league)
	}

	homeStats, err := lookupTeam(t, l, homeTeam)
	if err != nil {
		return model.PredictionResult{}, err
	}
	awayStats, err := lookupTeam(t, l, awayTeam)
	if err != nil {
		return model.PredictionResult{}, err
	}

	matchup, ok := t.Matchup(league, homeTeam, awayTeam)
	if !ok {
		if homeTeam != awayTeam {
			return model.PredictionResult{}, fmt.Errorf("%w: %s v %s in %s", ErrMissingHistory, homeTeam, awayTeam, league)
		}
		matchup = sameTeamMatchup(t, league, homeTeam)
	}

	if homeStats.Matches <= 0 {
		return model.PredictionResult{}, fmt.Errorf("%w: %q has no matches", ErrDegenerateInput, homeTeam)
	}
	if awayStats.Matches <= 0 {
		return model.PredictionResult{}, fmt.Errorf("%w: %q has no matches", ErrDegenerateInput, awayTeam)
	}

	homeXg, err := analysis.ExpectedGoals(homeStats, awayStats, true)
	if err != nil {
		return model.PredictionResult{}, fmt.Errorf("%s: %w", homeTeam, err)
	}
	awayXg, err := analysis.ExpectedGoals(awayStats, homeStats, false)
	if err != nil {
		return model.PredictionResult{}, fmt.Errorf("%s: %w", awayTeam, err)
	}

	// Each side's score is held down by the opponent's clean-sheet record.
	r := p.newRand()
	homeGoals := analysis.SimulateScore(r, homeXg, awayStats.CleanSheetRate())
	awayGoals := analysis.SimulateScore(r, awayXg, homeStats.CleanSheetRate())

	probs := p.method.Probabilities(homeXg, awayXg, matchup.HeadToHead)

	slog.Debug("Prediction",
		"league", league,
		"home", homeTeam,
		"away", awayTeam,
		"home_xg", homeXg,
		"away_xg", awayXg,
		"method", p.method)

	return model.PredictionResult{
		HomeGoals:   homeGoals,
		AwayGoals:   awayGoals,
		HomeXg:      mathutil.Round(homeXg, 2),
		AwayXg:      mathutil.Round(awayXg, 2),
		HomeWinProb: probs.HomeWin,
		DrawProb:    probs.Draw,
		AwayWinProb: probs.AwayWin,
		HomeForm:    analysis.FormFactor(homeStats.Form),
		AwayForm:    analysis.FormFactor(awayStats.Form),
		HomeStats:   cloneTeamStats(homeStats),
		AwayStats:   cloneTeamStats(awayStats),
		LeagueStats: cloneLeagueStats(matchup),
		Method:      string(p.method),
	}, nil
}

func lookupTeam(t *Tables, l model.League, team string) (model.TeamStats, error) {
	if !l.HasTeam(team) {
		return model.TeamStats{}, fmt.Errorf("%w: %q is not in %s", ErrInvalidTeam, team, l.Name)
	}
	s, ok := t.Team(l.Name, team)
	if !ok {
		return model.TeamStats{}, fmt.Errorf("%w: no stats for %q", ErrInvalidTeam, team)
	}
	return s, nil
}

func sameTeamMatchup(t *Tables, league, team string) model.LeagueStats {
	v := t.Catalog().Venue(team)
	return model.LeagueStats{
		League:   league,
		HomeTeam: team,
		AwayTeam: team,
		VenueStats: model.VenueStats{
			VenueName:        v.Name,
			Capacity:         v.Capacity,
			AtmosphereEffect: v.Atmosphere,
		},
	}
}

func (p *Predictor) newRand() *rand.Rand {
	if p.seed != nil {
		return rand.New(rand.NewPCG(*p.seed, *p.seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Results share no slices with the tables.
func cloneTeamStats(s model.TeamStats) model.TeamStats {
	s.Form = slices.Clone(s.Form)
	return s
}

func cloneLeagueStats(ls model.LeagueStats) model.LeagueStats {
	ls.HeadToHead.RecentMatches = slices.Clone(ls.HeadToHead.RecentMatches)
	return ls
}
