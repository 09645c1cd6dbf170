package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{"Premiership", "Championship", "League One", "League Two"}, c.LeagueNames())

	for _, name := range c.LeagueNames() {
		l, ok := c.League(name)
		require.True(t, ok, name)
		assert.GreaterOrEqual(t, len(l.Teams), 10, name)
		assert.LessOrEqual(t, len(l.Teams), 12, name)
	}

	prem, ok := c.League("Premiership")
	require.True(t, ok)
	assert.Equal(t, "Celtic", prem.Teams[0])
	assert.Equal(t, 2.8, prem.AvgGoals)
	assert.Equal(t, 1.4, prem.TeamModifier("Celtic"))
	assert.Equal(t, 1.35, prem.HomeAdvantage)
}

func TestLeagueReturnsCopy(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	l, _ := c.League("Premiership")
	l.Teams[0] = "Mutated"
	l.TeamModifiers["Celtic"] = 9

	again, _ := c.League("Premiership")
	assert.Equal(t, "Celtic", again.Teams[0])
	assert.Equal(t, 1.4, again.TeamModifier("Celtic"))
}

func TestLeagueByKey(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	l, ok := c.LeagueByKey("league1")
	require.True(t, ok)
	assert.Equal(t, "League One", l.Name)

	_, ok = c.LeagueByKey("league9")
	assert.False(t, ok)
}

func TestVenueFallback(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	v := c.Venue("Celtic")
	assert.Equal(t, "Celtic Park", v.Name)
	assert.Equal(t, PrestigeTop, v.Prestige)

	v = c.Venue("Montrose")
	assert.Equal(t, "Montrose Stadium", v.Name)
	assert.Equal(t, DefaultCapacity, v.Capacity)
	assert.Equal(t, DefaultAtmosphere, v.Atmosphere)
	assert.Equal(t, PrestigeOther, v.Prestige)
}

func TestResolveTeam(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	tests := []struct {
		league string
		raw    string
		want   string
		ok     bool
	}{
		{"Premiership", "Celtic", "Celtic", true},
		{"Premiership", "  ST MIRREN ", "St. Mirren", true},
		{"Premiership", "Heart of Midlothian", "Hearts", true},
		{"Championship", "Queens Park", "Queen's Park", true},
		{"League One", "Inverness Caledonian Thistle", "Inverness CT", true},
		{"Championship", "Celtic", "", false}, // wrong league
		{"Premiership", "Nonexistent FC", "", false},
		{"Serie A", "Celtic", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := c.ResolveTeam(tt.league, tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "st mirren", Normalize("St. Mirren"))
	assert.Equal(t, "queens park", Normalize("Queen’s  Park"))
	assert.Equal(t, "malmo ff", Normalize("Malmö FF"))
	assert.Equal(t, "", Normalize(""))
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	tests := map[string]string{
		"no leagues": `leagues: []`,
		"one team": `
leagues:
  - name: Tiny
    avg_goals: 2
    strength_modifier: 1
    teams: [Solo]`,
		"duplicate team": `
leagues:
  - name: Dup
    avg_goals: 2
    strength_modifier: 1
    teams: [A, A]`,
		"bad alias": `
leagues:
  - name: Ok
    avg_goals: 2
    strength_modifier: 1
    teams: [A, B]
aliases:
  c: C`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leagues.yaml")
	data := `
leagues:
  - name: Highland League
    key: highland
    avg_goals: 3.1
    strength_modifier: 0.5
    home_advantage: 1.1
    teams: [Buckie Thistle, Brechin City, Fraserburgh]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	l, ok := c.LeagueByKey("highland")
	require.True(t, ok)
	assert.Equal(t, 1.0, l.TeamModifier("Fraserburgh"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
