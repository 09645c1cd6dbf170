package predictor

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scottish-predictor/internal/analysis"
	"scottish-predictor/internal/catalog"
	"scottish-predictor/internal/model"
	"scottish-predictor/internal/stats"
)

var builtAt = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

// fixedTables returns generated tables with Celtic and Dundee United pinned
// to known stat lines.
func fixedTables(t *testing.T) *Tables {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	teams, matchups := stats.NewSeededGenerator(1, 2023).GenerateAll(cat)

	W, D, L := model.FormWin, model.FormDraw, model.FormLoss
	teams["Premiership"]["Celtic"] = model.TeamStats{
		League: "Premiership", Strength: 1.0, Matches: 20,
		Wins: 15, Draws: 3, Losses: 2, GoalsScored: 50, GoalsConceded: 12, CleanSheets: 9,
		Form: []int{W, W, W, D, W},
	}
	teams["Premiership"]["Dundee United"] = model.TeamStats{
		League: "Premiership", Strength: 0.3, Matches: 20,
		Wins: 4, Draws: 5, Losses: 11, GoalsScored: 18, GoalsConceded: 35, CleanSheets: 3,
		Form: []int{L, D, L, W, L},
	}

	return NewTables(cat, teams, matchups, "test", builtAt)
}

func newPredictor(t *testing.T, opts ...Option) *Predictor {
	t.Helper()
	p, err := New(fixedTables(t), opts...)
	require.NoError(t, err)
	return p
}

func TestPredictStrongHomeSide(t *testing.T) {
	p := newPredictor(t, WithSeed(11))

	res, err := p.Predict("Celtic", "Dundee United", "Premiership")
	require.NoError(t, err)

	assert.Greater(t, res.HomeXg, res.AwayXg)
	assert.Greater(t, res.HomeWinProb, res.AwayWinProb)
	assert.InDelta(t, 100, res.HomeWinProb+res.DrawProb+res.AwayWinProb, 0.1)
	assert.Equal(t, string(analysis.MethodPoisson), res.Method)

	assert.Equal(t, "Celtic", res.LeagueStats.HomeTeam)
	assert.Equal(t, "Dundee United", res.LeagueStats.AwayTeam)
	assert.Equal(t, 1.0, res.HomeStats.Strength)
	assert.Equal(t, 0.3, res.AwayStats.Strength)
	assert.Equal(t, analysis.MaxFormFactor, res.HomeForm)

	// 1.4 * 2.5 * (1 - defence(DU)) * 1.2
	duDefense := 0.15*0.3 + (1-1.75/3)*0.7
	assert.InDelta(t, 1.4*2.5*(1-duDefense)*1.2, res.HomeXg, 0.005)

	assert.True(t, res.HomeGoals >= 0 && res.HomeGoals <= analysis.MaxSimulatedGoals)
	assert.True(t, res.AwayGoals >= 0 && res.AwayGoals <= analysis.MaxSimulatedGoals)
}

func TestPredictRatioMethod(t *testing.T) {
	p := newPredictor(t, WithMethod(analysis.MethodRatio), WithSeed(3))

	res, err := p.Predict("Celtic", "Dundee United", "Premiership")
	require.NoError(t, err)

	assert.Equal(t, analysis.RatioDrawProb, res.DrawProb)
	assert.Greater(t, res.HomeWinProb, res.AwayWinProb)
	assert.Equal(t, string(analysis.MethodRatio), res.Method)
	assert.Equal(t, analysis.MethodRatio, p.Method())
}

func TestPredictSameTeam(t *testing.T) {
	p := newPredictor(t, WithSeed(5))

	res, err := p.Predict("Celtic", "Celtic", "Premiership")
	require.NoError(t, err)

	assert.Equal(t, 0, res.LeagueStats.HeadToHead.TotalMatches)
	assert.Equal(t, "Celtic Park", res.LeagueStats.VenueStats.VenueName)
	assert.Equal(t, res.HomeStats, res.AwayStats)
	// Same inputs, only the home/away base differs.
	assert.InDelta(t, res.HomeXg/analysis.HomeBaseGoals, res.AwayXg/analysis.AwayBaseGoals, 0.01)
	assert.InDelta(t, 100, res.HomeWinProb+res.DrawProb+res.AwayWinProb, 0.1)
}

func TestPredictErrors(t *testing.T) {
	tables := fixedTables(t)

	// Drop one matchup and zero one team to reach the later checks.
	delete(tables.matchups["Premiership"]["Rangers"], "Hearts")
	noGames := tables.teams["Championship"]["Falkirk"]
	noGames.Matches, noGames.Wins, noGames.Draws, noGames.Losses = 0, 0, 0, 0
	tables.teams["Championship"]["Falkirk"] = noGames

	p, err := New(tables)
	require.NoError(t, err)

	champ, _ := tables.Catalog().League("Championship")
	opponent := champ.Teams[len(champ.Teams)-1]

	tests := []struct {
		name           string
		home, away, lg string
		want           error
	}{
		{"Unknown league", "Celtic", "Rangers", "Serie A", ErrInvalidLeague},
		{"Unknown away team", "Celtic", "Nonexistent FC", "Premiership", ErrInvalidTeam},
		{"Unknown home team", "Nonexistent FC", "Celtic", "Premiership", ErrInvalidTeam},
		{"Team in another league", "Celtic", "Falkirk", "Premiership", ErrInvalidTeam},
		{"Missing matchup", "Rangers", "Hearts", "Premiership", ErrMissingHistory},
		{"No matches played", "Falkirk", opponent, "Championship", ErrDegenerateInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Predict(tt.home, tt.away, tt.lg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, model.PredictionResult{}, res)
		})
	}

	assert.True(t, errors.Is(ErrDegenerateInput, analysis.ErrDegenerateInput))
}

func TestPredictIdempotentWithSeed(t *testing.T) {
	p := newPredictor(t, WithSeed(99))

	first, err := p.Predict("Hearts", "Aberdeen", "Premiership")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := p.Predict("Hearts", "Aberdeen", "Premiership")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPredictResultDoesNotAliasTables(t *testing.T) {
	p := newPredictor(t, WithSeed(1))

	res, err := p.Predict("Celtic", "Dundee United", "Premiership")
	require.NoError(t, err)
	res.HomeStats.Form[0] = 99
	res.LeagueStats.HeadToHead.RecentMatches[0].HomeScore = 99

	again, err := p.Predict("Celtic", "Dundee United", "Premiership")
	require.NoError(t, err)
	assert.Equal(t, model.FormWin, again.HomeStats.Form[0])
	assert.NotEqual(t, 99, again.LeagueStats.HeadToHead.RecentMatches[0].HomeScore)
}

func TestPredictEveryFixture(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	for _, method := range []analysis.Method{analysis.MethodPoisson, analysis.MethodRatio} {
		p, err := New(Generate(cat, stats.NewSeededGenerator(7, 2023), builtAt), WithMethod(method))
		require.NoError(t, err)

		for _, league := range p.Leagues() {
			teams, err := p.Teams(league)
			require.NoError(t, err)
			for _, home := range teams {
				for _, away := range teams {
					res, err := p.Predict(home, away, league)
					require.NoError(t, err, "%s v %s", home, away)

					assert.True(t, res.HomeXg >= 0 && res.HomeXg <= analysis.MaxHomeXg)
					assert.True(t, res.AwayXg >= 0 && res.AwayXg <= analysis.MaxAwayXg)
					assert.True(t, res.HomeGoals >= 0 && res.HomeGoals <= analysis.MaxSimulatedGoals)
					assert.True(t, res.AwayGoals >= 0 && res.AwayGoals <= analysis.MaxSimulatedGoals)
					if method == analysis.MethodPoisson {
						assert.InDelta(t, 100, res.HomeWinProb+res.DrawProb+res.AwayWinProb, 0.1)
					}
					assert.False(t, math.IsNaN(res.HomeWinProb))
				}
			}
		}
	}
}

func TestSwap(t *testing.T) {
	p := newPredictor(t, WithSeed(2))
	assert.Equal(t, "test", p.Tables().Version())

	cat := p.Tables().Catalog()
	next := Generate(cat, stats.NewSeededGenerator(8, 2023), builtAt.Add(time.Hour))
	require.NoError(t, p.Swap(next))
	assert.Equal(t, SyntheticVersion, p.Tables().Version())
	assert.Equal(t, builtAt.Add(time.Hour), p.Tables().BuiltAt())

	assert.Error(t, p.Swap(nil))
	assert.Same(t, next, p.Tables())
}

func TestSwapDuringPredictions(t *testing.T) {
	p := newPredictor(t)
	cat := p.Tables().Catalog()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_, err := p.Predict("Rangers", "Celtic", "Premiership")
				assert.NoError(t, err)
			}
		}()
	}
	for i := uint64(0); i < 20; i++ {
		require.NoError(t, p.Swap(Generate(cat, stats.NewSeededGenerator(i, 2023), builtAt)))
	}
	wg.Wait()
}

func TestTeamsAndLeagues(t *testing.T) {
	p := newPredictor(t)

	assert.Equal(t, []string{"Premiership", "Championship", "League One", "League Two"}, p.Leagues())

	teams, err := p.Teams("Premiership")
	require.NoError(t, err)
	assert.Len(t, teams, 12)
	assert.Equal(t, "Celtic", teams[0])

	_, err = p.Teams("Bundesliga")
	assert.True(t, errors.Is(err, ErrInvalidLeague))
}

func TestNewRequiresTables(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestTablesValidate(t *testing.T) {
	tables := fixedTables(t)
	require.NoError(t, tables.Validate())

	bad := tables.teams["Premiership"]["Motherwell"]
	bad.Wins++
	tables.teams["Premiership"]["Motherwell"] = bad
	delete(tables.matchups["League Two"], "East Fife")

	err := tables.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Motherwell")
	assert.Contains(t, err.Error(), "East Fife")
}

func TestTablesValidateShortForm(t *testing.T) {
	tables := fixedTables(t)

	short := tables.teams["Premiership"]["Hibernian"]
	short.Form = short.Form[:3]
	tables.teams["Premiership"]["Hibernian"] = short

	err := tables.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Hibernian")
	assert.Contains(t, err.Error(), "form has 3 results")
}
