package analysis

import (
	"math"
	"math/rand/v2"
	"slices"

	"scottish-predictor/internal/model"
)

// Scoring periods reported by GoalPattern.StrongestPeriod.
const (
	PeriodEarly = "Early (0-15)"
	PeriodMid   = "Mid-game (16-75)"
	PeriodLate  = "Late (76-90)"
)

// ScoringPatterns describes goal timing for a fixture. It is an optional
// extension and is not part of PredictionResult.
type ScoringPatterns struct {
	FirstHalfGoals   int         `json:"firstHalfGoals"`
	SecondHalfGoals  int         `json:"secondHalfGoals"`
	EarlyGoals       int         `json:"earlyGoals"`
	MidGoals         int         `json:"midGoals"`
	LateGoals        int         `json:"lateGoals"`
	CleanSheetStreak int         `json:"cleanSheetStreak"`
	ScoringStreak    int         `json:"scoringStreak"`
	HomeGoalPattern  GoalPattern `json:"homeGoalPattern"`
	AwayGoalPattern  GoalPattern `json:"awayGoalPattern"`
}

// GoalPattern is one side's goal timing profile.
type GoalPattern struct {
	AverageFirstHalfGoals  float64 `json:"averageFirstHalfGoals"`
	AverageSecondHalfGoals float64 `json:"averageSecondHalfGoals"`
	GoalTimings            []int   `json:"goalTimings"` // minutes, sorted
	StrongestPeriod        string  `json:"strongestPeriod"`
	CleanSheetProbability  float64 `json:"cleanSheetProbability"`
}

// AnalyzeScoringPatterns builds synthetic timing patterns from a
// head-to-head record.
func AnalyzeScoringPatterns(r *rand.Rand, h2h model.HeadToHeadStats) ScoringPatterns {
	n := len(h2h.RecentMatches)
	return ScoringPatterns{
		FirstHalfGoals:   n,
		SecondHalfGoals:  n,
		EarlyGoals:       r.IntN(3),
		MidGoals:         1 + r.IntN(3),
		LateGoals:        r.IntN(3),
		CleanSheetStreak: CleanSheetStreak(h2h),
		ScoringStreak:    ScoringStreak(h2h),
		HomeGoalPattern:  goalPattern(r, h2h.HomeTeamRecord),
		AwayGoalPattern:  goalPattern(r, h2h.AwayTeamRecord),
	}
}

// CleanSheetStreak counts the most recent matches in which the away side
// failed to score.
func CleanSheetStreak(h2h model.HeadToHeadStats) int {
	streak := 0
	for i := len(h2h.RecentMatches) - 1; i >= 0; i-- {
		if h2h.RecentMatches[i].AwayScore != 0 {
			break
		}
		streak++
	}
	return streak
}

// ScoringStreak counts the most recent matches in which the home side scored.
func ScoringStreak(h2h model.HeadToHeadStats) int {
	streak := 0
	for i := len(h2h.RecentMatches) - 1; i >= 0; i-- {
		if h2h.RecentMatches[i].HomeScore <= 0 {
			break
		}
		streak++
	}
	return streak
}

func goalPattern(r *rand.Rand, rec model.TeamRecord) GoalPattern {
	n := int(math.Round(rec.AverageGoalsScored * 5))
	timings := make([]int, n)
	for i := range timings {
		timings[i] = 1 + r.IntN(90)
	}
	slices.Sort(timings)

	var csProb float64
	if m := rec.Matches(); m > 0 {
		csProb = float64(rec.CleanSheets) / float64(m)
	}

	return GoalPattern{
		AverageFirstHalfGoals:  rec.AverageGoalsScored * 0.4,
		AverageSecondHalfGoals: rec.AverageGoalsScored * 0.6,
		GoalTimings:            timings,
		StrongestPeriod:        strongestPeriod(timings),
		CleanSheetProbability:  csProb,
	}
}

func strongestPeriod(timings []int) string {
	var early, mid, late int
	for _, m := range timings {
		switch {
		case m <= 15:
			early++
		case m > 75:
			late++
		default:
			mid++
		}
	}
	switch {
	case early > late:
		return PeriodEarly
	case mid > early+late:
		return PeriodMid
	default:
		return PeriodLate
	}
}
