// Package stats builds the per-team and per-matchup tables the predictor
// reads, either synthetically or from ingested league tables.
package stats

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"scottish-predictor/internal/catalog"
	"scottish-predictor/internal/mathutil"
	"scottish-predictor/internal/model"
)

// Generation ranges. Upper bounds are exclusive.
const (
	MinMatches = 15
	MaxMatches = 21

	MinH2HMatches = 8
	MaxH2HMatches = 16

	RecentMatchCount = 5
)

// TeamTable maps league -> team -> stats.
type TeamTable map[string]map[string]model.TeamStats

// MatchupTable maps league -> home team -> away team -> matchup record.
type MatchupTable map[string]map[string]map[string]model.LeagueStats

// Generator produces plausible statistics when real data is unavailable.
// It is not safe for concurrent use.
type Generator struct {
	rand   *rand.Rand
	season int
}

// NewGenerator returns a generator drawing from r. Recent-match dates fall
// in the given season year.
func NewGenerator(r *rand.Rand, season int) *Generator {
	return &Generator{rand: r, season: season}
}

// NewSeededGenerator is NewGenerator with a PCG source.
func NewSeededGenerator(seed uint64, season int) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed)), season)
}

// SeasonStart returns the year the season in progress at t began. Scottish
// seasons start in July.
func SeasonStart(t time.Time) int {
	if t.Month() >= time.July {
		return t.Year()
	}
	return t.Year() - 1
}

// Strength is the table-position strength of the team at tableIndex in a
// league of teamCount, scaled by the league and team modifiers and capped
// at 1.0.
func Strength(l model.League, team string, tableIndex, teamCount int) float64 {
	position := float64(teamCount-tableIndex) / float64(teamCount)
	return math.Min(1.0, position*l.StrengthModifier*l.TeamModifier(team))
}

// TeamStats generates stats for every team in l.
func (g *Generator) TeamStats(l model.League) map[string]model.TeamStats {
	out := make(map[string]model.TeamStats, len(l.Teams))
	for i, team := range l.Teams {
		out[team] = g.teamStats(l, team, Strength(l, team, i, len(l.Teams)))
	}
	return out
}

func (g *Generator) teamStats(l model.League, team string, strength float64) model.TeamStats {
	matches := MinMatches + g.rand.IntN(MaxMatches-MinMatches)
	winRatio := strength * (0.8 + g.rand.Float64()*0.4)

	wins := roundInt(float64(matches) * winRatio * 0.5)
	draws := roundInt(float64(matches) * 0.25)
	if wins+draws > matches {
		wins = matches - draws
	}
	losses := matches - wins - draws

	return model.TeamStats{
		League:        l.Name,
		Strength:      strength,
		Matches:       matches,
		Wins:          wins,
		Draws:         draws,
		Losses:        losses,
		GoalsScored:   roundInt(l.AvgGoals * strength * float64(matches)),
		GoalsConceded: roundInt(l.AvgGoals * (1 - strength) * float64(matches)),
		CleanSheets:   roundInt(float64(matches) * strength * 0.3),
		Form:          g.form(strength),
	}
}

// form draws FormLength results: a win with probability strength*0.7, a
// draw with a flat 0.2 and a loss otherwise. The branches are not a
// normalised win/draw/loss model, so weak sides lose far more often than
// their generated record implies. This is a known statistical quirk.
func (g *Generator) form(strength float64) []int {
	form := make([]int, model.FormLength)
	for i := range form {
		chance := g.rand.Float64()
		switch {
		case chance < strength*0.7:
			form[i] = model.FormWin
		case chance < strength*0.7+0.2:
			form[i] = model.FormDraw
		default:
			form[i] = model.FormLoss
		}
	}
	return form
}

// LeagueStats generates a matchup record for every ordered pair of distinct
// teams in l.
func (g *Generator) LeagueStats(cat *catalog.Catalog, l model.League) map[string]map[string]model.LeagueStats {
	out := make(map[string]map[string]model.LeagueStats, len(l.Teams))
	for _, home := range l.Teams {
		out[home] = make(map[string]model.LeagueStats, len(l.Teams)-1)
		for _, away := range l.Teams {
			if home == away {
				continue
			}
			out[home][away] = g.matchup(cat.Venue(home), l.Name, home, away)
		}
	}
	return out
}

func (g *Generator) matchup(venue catalog.Venue, league, home, away string) model.LeagueStats {
	total := MinH2HMatches + g.rand.IntN(MaxH2HMatches-MinH2HMatches)
	homeWins := g.rand.IntN(total + 1)
	awayWins := g.rand.IntN(total - homeWins + 1)
	draws := total - homeWins - awayWins

	homeGoals := homeWins + g.rand.IntN(homeWins*2+1)
	awayGoals := awayWins + g.rand.IntN(awayWins*2+1)

	recent := make([]model.MatchResult, RecentMatchCount)
	for i := range recent {
		recent[i] = model.MatchResult{
			HomeScore:  g.rand.IntN(4),
			AwayScore:  g.rand.IntN(3),
			Date:       fmt.Sprintf("%d-%02d-%02d", g.season, 1+g.rand.IntN(12), 1+g.rand.IntN(28)),
			Attendance: g.attendance(venue.Prestige),
		}
	}

	var homeCleanSheets, awayCleanSheets int
	for _, m := range recent {
		if m.AwayScore == 0 {
			homeCleanSheets++
		}
		if m.HomeScore == 0 {
			awayCleanSheets++
		}
	}

	t := float64(total)
	h2h := model.HeadToHeadStats{
		TotalMatches:  total,
		HomeWins:      homeWins,
		Draws:         draws,
		AwayWins:      awayWins,
		HomeGoals:     homeGoals,
		AwayGoals:     awayGoals,
		RecentMatches: recent,
		HomeTeamRecord: model.TeamRecord{
			Wins:                 homeWins,
			Draws:                draws,
			Losses:               awayWins,
			GoalsScored:          homeGoals,
			GoalsConceded:        awayGoals,
			CleanSheets:          homeCleanSheets,
			WinPercentage:        float64(homeWins) / t * 100,
			AverageGoalsScored:   float64(homeGoals) / t,
			AverageGoalsConceded: float64(awayGoals) / t,
		},
		AwayTeamRecord: model.TeamRecord{
			Wins:                 awayWins,
			Draws:                draws,
			Losses:               homeWins,
			GoalsScored:          awayGoals,
			GoalsConceded:        homeGoals,
			CleanSheets:          awayCleanSheets,
			WinPercentage:        float64(awayWins) / t * 100,
			AverageGoalsScored:   float64(awayGoals) / t,
			AverageGoalsConceded: float64(homeGoals) / t,
		},
	}

	return model.LeagueStats{
		League:     league,
		HomeTeam:   home,
		AwayTeam:   away,
		HeadToHead: h2h,
		VenueStats: model.VenueStats{
			VenueName:            venue.Name,
			Capacity:             venue.Capacity,
			AverageAttendance:    g.attendance(venue.Prestige),
			HomeWinRate:          float64(homeWins) / t,
			AverageGoalsScored:   float64(homeGoals) / t,
			AverageGoalsConceded: float64(awayGoals) / t,
			AtmosphereEffect:     venue.Atmosphere,
		},
	}
}

// attendance draws a crowd from the range for the club's prestige tier.
func (g *Generator) attendance(p catalog.Prestige) int {
	lo, hi := AttendanceRange(p)
	return lo + g.rand.IntN(hi-lo)
}

// AttendanceRange is the [lo, hi) crowd range for a prestige tier.
func AttendanceRange(p catalog.Prestige) (lo, hi int) {
	switch p {
	case catalog.PrestigeTop:
		return 45000, 60000
	case catalog.PrestigeMid:
		return 15000, 25000
	default:
		return 5000, 15000
	}
}

// GenerateAll builds team and matchup tables for every league in cat.
func (g *Generator) GenerateAll(cat *catalog.Catalog) (TeamTable, MatchupTable) {
	teams := make(TeamTable)
	matchups := make(MatchupTable)
	for _, name := range cat.LeagueNames() {
		l, _ := cat.League(name)
		teams[name] = g.TeamStats(l)
	}
	for _, name := range cat.LeagueNames() {
		l, _ := cat.League(name)
		matchups[name] = g.LeagueStats(cat, l)
	}
	return teams, matchups
}

func roundInt(v float64) int {
	return int(mathutil.Round(v, 0))
}
