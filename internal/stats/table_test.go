package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scottish-predictor/internal/ingest"
	"scottish-predictor/internal/model"
)

func TestFromTable(t *testing.T) {
	cat := defaultCatalog(t)
	prem, _ := cat.League("Premiership")

	rows := []ingest.TableRow{
		{Position: 1, Team: "Celtic", Played: 20, Won: 15, Drawn: 3, Lost: 2, GoalsFor: 45, GoalsAgainst: 15, CleanSheets: 8, Form: "WWDLWW"},
		{Position: 2, Team: "Rangers", Played: 20, Won: 14, Drawn: 4, Lost: 2, GoalsFor: 40, GoalsAgainst: 18, CleanSheets: 7, Form: "WL"},
		{Position: 3, Team: "Dundee United", Played: 19, Won: 4, Drawn: 5, Lost: 10, GoalsFor: 17, GoalsAgainst: 30, CleanSheets: 2},
	}

	got, err := FromTable(prem, rows)
	require.NoError(t, err)
	require.Len(t, got, 3)

	W, D, L := model.FormWin, model.FormDraw, model.FormLoss

	celtic := got["Celtic"]
	assert.Equal(t, "Premiership", celtic.League)
	assert.Equal(t, 1.0, celtic.Strength)
	assert.Equal(t, 20, celtic.Matches)
	assert.Equal(t, 45, celtic.GoalsScored)
	assert.Equal(t, []int{W, D, L, W, W}, celtic.Form, "keeps the five most recent")
	require.NoError(t, celtic.Validate())

	assert.Equal(t, []int{D, D, D, W, L}, got["Rangers"].Form, "short form padded at the oldest end")
	assert.Equal(t, []int{D, D, D, D, D}, got["Dundee United"].Form)
	assert.InDelta(t, 1.0/3.0, got["Dundee United"].Strength, 1e-9)
}

func TestFromTableRejects(t *testing.T) {
	cat := defaultCatalog(t)
	prem, _ := cat.League("Premiership")

	tests := []struct {
		name string
		row  ingest.TableRow
	}{
		{"Team from another league", ingest.TableRow{Position: 1, Team: "Falkirk", Played: 3, Won: 3}},
		{"Position outside table", ingest.TableRow{Position: 4, Team: "Celtic", Played: 3, Won: 3}},
		{"No matches", ingest.TableRow{Position: 1, Team: "Celtic"}},
		{"Bad form", ingest.TableRow{Position: 1, Team: "Celtic", Played: 3, Won: 3, Form: "WWZ"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromTable(prem, []ingest.TableRow{tt.row})
			assert.Error(t, err)
		})
	}
}
