package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTable() []TableRow {
	return []TableRow{
		{Position: 1, Team: "Celtic", Played: 20, Won: 15, Drawn: 3, Lost: 2, GoalsFor: 45, GoalsAgainst: 15, CleanSheets: 8, Form: "WDLWW"},
		{Position: 2, Team: "Rangers", Played: 20, Won: 14, Drawn: 4, Lost: 2, GoalsFor: 40, GoalsAgainst: 18, CleanSheets: 7, Form: "WWWDW"},
		{Position: 3, Team: "Hearts", Played: 20, Won: 9, Drawn: 5, Lost: 6, GoalsFor: 28, GoalsAgainst: 24, CleanSheets: 5, Form: "LDWWD",
			Home: &VenueSplit{Won: 6, Drawn: 2, Lost: 2, GoalsFor: 17, GoalsAgainst: 10},
			Away: &VenueSplit{Won: 3, Drawn: 3, Lost: 4, GoalsFor: 11, GoalsAgainst: 14}},
	}
}

func TestValidateAcceptsGoodTable(t *testing.T) {
	assert.NoError(t, Validate(validTable()))
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(rows []TableRow) []TableRow
		problem string
	}{
		{"Played mismatch", func(r []TableRow) []TableRow { r[0].Played = 21; return r }, "does not match W/D/L"},
		{"Clean sheets exceed played", func(r []TableRow) []TableRow { r[1].CleanSheets = 25; return r }, "clean sheets 25 exceed"},
		{"Negative count", func(r []TableRow) []TableRow { r[2].GoalsAgainst = -1; return r }, "negative count"},
		{"No matches", func(r []TableRow) []TableRow {
			r[2] = TableRow{Position: 3, Team: "Hearts"}
			return r
		}, "no matches played"},
		{"Duplicate position", func(r []TableRow) []TableRow { r[2].Position = 2; return r }, "duplicate position"},
		{"Gap in positions", func(r []TableRow) []TableRow { r[2].Position = 5; return r }, "not contiguous"},
		{"Empty team", func(r []TableRow) []TableRow { r[1].Team = ""; return r }, "empty team name"},
		{"Team twice", func(r []TableRow) []TableRow { r[1].Team = "Celtic"; return r }, "team listed twice"},
		{"High scoring rate", func(r []TableRow) []TableRow { r[0].GoalsFor = 90; return r }, "unusually high scoring rate"},
		{"Bad form letter", func(r []TableRow) []TableRow { r[0].Form = "WWXWW"; return r }, "invalid form result"},
		{"Splits disagree", func(r []TableRow) []TableRow { r[2].Home.Won = 7; return r }, "home/away results"},
		{"Split goals disagree", func(r []TableRow) []TableRow { r[2].Away.GoalsFor = 1; return r }, "home/away goals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.mutate(validTable()))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.problem)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	rows := validTable()
	rows[0].Played = 99
	rows[1].CleanSheets = 30

	err := Validate(rows)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, err.Error(), "Celtic (position 1)")
	assert.Contains(t, err.Error(), "Rangers (position 2)")
}

func TestValidateEmpty(t *testing.T) {
	assert.Error(t, Validate(nil))
}

func TestValidateFile(t *testing.T) {
	good := NewStatsFile(fixedNow, map[string][]TableRow{"premiership": validTable()})
	assert.NoError(t, ValidateFile(good))

	bad := validTable()
	bad[0].Won = 0
	f := NewStatsFile(fixedNow, map[string][]TableRow{"premiership": validTable(), "league2": bad})
	err := ValidateFile(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "league league2")
	assert.NotContains(t, err.Error(), "league premiership")
}
