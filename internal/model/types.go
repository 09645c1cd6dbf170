package model

import "fmt"

// Form result codes, stored oldest to newest.
const (
	FormLoss = 0
	FormDraw = 1
	FormWin  = 3
)

// FormLength is the number of recent results kept per team.
const FormLength = 5

// League is a static catalog entry for one division.
type League struct {
	Name             string             `json:"name" yaml:"name"`
	Teams            []string           `json:"teams" yaml:"teams"` // table order, top first
	AvgGoals         float64            `json:"avgGoals" yaml:"avg_goals"`
	MaxHome          int                `json:"maxHome" yaml:"max_home"`
	MaxAway          int                `json:"maxAway" yaml:"max_away"`
	StrengthModifier float64            `json:"strengthModifier" yaml:"strength_modifier"`
	HomeAdvantage    float64            `json:"homeAdvantage" yaml:"home_advantage"`
	TeamModifiers    map[string]float64 `json:"teamModifiers,omitempty" yaml:"team_modifiers"`
}

// TeamModifier returns the per-team strength modifier, 1.0 when unset.
func (l League) TeamModifier(team string) float64 {
	if m, ok := l.TeamModifiers[team]; ok {
		return m
	}
	return 1.0
}

// TableIndex returns the zero-based table position of team, or -1.
func (l League) TableIndex(team string) int {
	for i, t := range l.Teams {
		if t == team {
			return i
		}
	}
	return -1
}

// HasTeam reports whether team is on the league roster.
func (l League) HasTeam(team string) bool {
	return l.TableIndex(team) >= 0
}

// TeamStats is the per-team aggregate the prediction engine works from.
type TeamStats struct {
	League        string  `json:"league"`
	Strength      float64 `json:"strength"`
	Matches       int     `json:"matches"`
	Wins          int     `json:"wins"`
	Draws         int     `json:"draws"`
	Losses        int     `json:"losses"`
	GoalsScored   int     `json:"goalsScored"`
	GoalsConceded int     `json:"goalsConceded"`
	CleanSheets   int     `json:"cleanSheets"`
	Form          []int   `json:"form"` // oldest first
}

// CleanSheetRate is cleanSheets/matches. Callers must check Matches > 0.
func (s TeamStats) CleanSheetRate() float64 {
	return float64(s.CleanSheets) / float64(s.Matches)
}

// GoalsPerMatch is goalsScored/matches. Callers must check Matches > 0.
func (s TeamStats) GoalsPerMatch() float64 {
	return float64(s.GoalsScored) / float64(s.Matches)
}

// ConcededPerMatch is goalsConceded/matches. Callers must check Matches > 0.
func (s TeamStats) ConcededPerMatch() float64 {
	return float64(s.GoalsConceded) / float64(s.Matches)
}

// Validate checks that the record is internally consistent.
func (s TeamStats) Validate() error {
	if s.Matches < 0 || s.Wins < 0 || s.Draws < 0 || s.Losses < 0 ||
		s.GoalsScored < 0 || s.GoalsConceded < 0 || s.CleanSheets < 0 {
		return fmt.Errorf("negative count in team stats")
	}
	if s.Wins+s.Draws+s.Losses != s.Matches {
		return fmt.Errorf("wins+draws+losses = %d, matches = %d", s.Wins+s.Draws+s.Losses, s.Matches)
	}
	if s.CleanSheets > s.Matches {
		return fmt.Errorf("clean sheets %d exceed matches %d", s.CleanSheets, s.Matches)
	}
	if len(s.Form) != FormLength {
		return fmt.Errorf("form has %d results, want %d", len(s.Form), FormLength)
	}
	for _, r := range s.Form {
		if r != FormWin && r != FormDraw && r != FormLoss {
			return fmt.Errorf("invalid form code %d", r)
		}
	}
	return nil
}

// TeamRecord summarises one side of a head-to-head history.
type TeamRecord struct {
	Wins                 int     `json:"wins"`
	Draws                int     `json:"draws"`
	Losses               int     `json:"losses"`
	GoalsScored          int     `json:"goalsScored"`
	GoalsConceded        int     `json:"goalsConceded"`
	CleanSheets          int     `json:"cleanSheets"`
	WinPercentage        float64 `json:"winPercentage"`
	AverageGoalsScored   float64 `json:"averageGoalsScored"`
	AverageGoalsConceded float64 `json:"averageGoalsConceded"`
}

// Matches is wins+draws+losses.
func (r TeamRecord) Matches() int {
	return r.Wins + r.Draws + r.Losses
}

// MatchResult is one entry of a head-to-head recent-match list.
type MatchResult struct {
	HomeScore  int    `json:"homeScore"`
	AwayScore  int    `json:"awayScore"`
	Date       string `json:"date"`
	Attendance int    `json:"attendance"`
}

// HeadToHeadStats is the history of a fixed (home, away) pairing.
type HeadToHeadStats struct {
	TotalMatches   int           `json:"totalMatches"`
	HomeWins       int           `json:"homeWins"`
	Draws          int           `json:"draws"`
	AwayWins       int           `json:"awayWins"`
	HomeGoals      int           `json:"homeGoals"`
	AwayGoals      int           `json:"awayGoals"`
	RecentMatches  []MatchResult `json:"recentMatches"`
	HomeTeamRecord TeamRecord    `json:"homeTeamRecord"`
	AwayTeamRecord TeamRecord    `json:"awayTeamRecord"`
}

// VenueStats describes the home side's ground.
type VenueStats struct {
	VenueName            string  `json:"venueName"`
	Capacity             int     `json:"capacity"`
	AverageAttendance    int     `json:"averageAttendance"`
	HomeWinRate          float64 `json:"homeWinRate"`
	AverageGoalsScored   float64 `json:"averageGoalsScored"`
	AverageGoalsConceded float64 `json:"averageGoalsConceded"`
	AtmosphereEffect     float64 `json:"atmosphereEffect"`
}

// LeagueStats is the matchup record for (League, HomeTeam, AwayTeam).
type LeagueStats struct {
	League     string          `json:"league"`
	HomeTeam   string          `json:"homeTeam"`
	AwayTeam   string          `json:"awayTeam"`
	HeadToHead HeadToHeadStats `json:"headToHead"`
	VenueStats VenueStats      `json:"venueStats"`
}

// PredictionResult is the immutable output of a single prediction.
type PredictionResult struct {
	HomeGoals   int         `json:"homeGoals"`
	AwayGoals   int         `json:"awayGoals"`
	HomeXg      float64     `json:"homeXg"`
	AwayXg      float64     `json:"awayXg"`
	HomeWinProb float64     `json:"homeWinProb"`
	DrawProb    float64     `json:"drawProb"`
	AwayWinProb float64     `json:"awayWinProb"`
	HomeForm    float64     `json:"homeForm"`
	AwayForm    float64     `json:"awayForm"`
	HomeStats   TeamStats   `json:"homeStats"`
	AwayStats   TeamStats   `json:"awayStats"`
	LeagueStats LeagueStats `json:"leagueStats"`
	Method      string      `json:"method"`
}
