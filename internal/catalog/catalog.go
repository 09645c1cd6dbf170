package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"scottish-predictor/internal/model"
)

//go:embed leagues.yaml
var defaultCatalogData []byte

// Prestige tiers drive attendance ranges in the synthetic generator.
type Prestige string

const (
	PrestigeTop   Prestige = "top"
	PrestigeMid   Prestige = "mid"
	PrestigeOther Prestige = ""
)

// Fallback venue values for clubs without a directory entry.
const (
	DefaultCapacity   = 15000
	DefaultAtmosphere = 0.75
)

// Venue is a directory entry for a club's home ground.
type Venue struct {
	Name       string   `yaml:"name"`
	Capacity   int      `yaml:"capacity"`
	Atmosphere float64  `yaml:"atmosphere"`
	Prestige   Prestige `yaml:"prestige"`
}

type leagueEntry struct {
	model.League `yaml:",inline"`
	Key          string `yaml:"key"`
}

type catalogFile struct {
	Leagues []leagueEntry     `yaml:"leagues"`
	Venues  map[string]Venue  `yaml:"venues"`
	Aliases map[string]string `yaml:"aliases"`
}

// Catalog is the immutable set of leagues, venues and name aliases.
// It is safe for concurrent use.
type Catalog struct {
	leagues map[string]model.League
	order   []string
	keys    map[string]string // ingestion key -> league name
	venues  map[string]Venue
	aliases map[string]string // normalized spelling -> catalog team name
}

// Default returns the embedded reference catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalogData)
}

// Load reads a catalog from a YAML file. An empty path loads the default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Leagues) == 0 {
		return nil, errors.New("catalog has no leagues")
	}

	c := &Catalog{
		leagues: make(map[string]model.League, len(f.Leagues)),
		keys:    make(map[string]string, len(f.Leagues)),
		venues:  f.Venues,
		aliases: make(map[string]string),
	}
	if c.venues == nil {
		c.venues = map[string]Venue{}
	}

	teamLeague := make(map[string]string)
	for _, e := range f.Leagues {
		l := e.League
		if err := validateLeague(l); err != nil {
			return nil, err
		}
		if _, dup := c.leagues[l.Name]; dup {
			return nil, fmt.Errorf("duplicate league %q", l.Name)
		}
		for _, team := range l.Teams {
			if other, ok := teamLeague[team]; ok {
				return nil, fmt.Errorf("team %q listed in both %q and %q", team, other, l.Name)
			}
			teamLeague[team] = l.Name
			c.aliases[Normalize(team)] = team
		}
		c.leagues[l.Name] = l
		c.order = append(c.order, l.Name)
		if e.Key != "" {
			c.keys[e.Key] = l.Name
		}
	}

	for alias, team := range f.Aliases {
		if _, ok := teamLeague[team]; !ok {
			return nil, fmt.Errorf("alias %q points at unknown team %q", alias, team)
		}
		c.aliases[Normalize(alias)] = team
	}

	return c, nil
}

func validateLeague(l model.League) error {
	if l.Name == "" {
		return errors.New("league with empty name")
	}
	if len(l.Teams) < 2 {
		return fmt.Errorf("league %q needs at least two teams", l.Name)
	}
	if l.AvgGoals <= 0 {
		return fmt.Errorf("league %q: avg_goals must be positive", l.Name)
	}
	if l.StrengthModifier <= 0 {
		return fmt.Errorf("league %q: strength_modifier must be positive", l.Name)
	}
	seen := make(map[string]bool, len(l.Teams))
	for _, t := range l.Teams {
		if t == "" {
			return fmt.Errorf("league %q has an empty team name", l.Name)
		}
		if seen[t] {
			return fmt.Errorf("league %q lists %q twice", l.Name, t)
		}
		seen[t] = true
	}
	return nil
}

// League returns a copy of the named league.
func (c *Catalog) League(name string) (model.League, bool) {
	l, ok := c.leagues[name]
	if !ok {
		return model.League{}, false
	}
	l.Teams = slices.Clone(l.Teams)
	l.TeamModifiers = maps.Clone(l.TeamModifiers)
	return l, true
}

// LeagueNames lists leagues in catalog order, top flight first.
func (c *Catalog) LeagueNames() []string {
	return slices.Clone(c.order)
}

// LeagueByKey resolves an ingestion key such as "league1".
func (c *Catalog) LeagueByKey(key string) (model.League, bool) {
	name, ok := c.keys[key]
	if !ok {
		return model.League{}, false
	}
	return c.League(name)
}

// Venue returns the directory entry for team, or a generic fallback.
func (c *Catalog) Venue(team string) Venue {
	if v, ok := c.venues[team]; ok {
		return v
	}
	return Venue{
		Name:       team + " Stadium",
		Capacity:   DefaultCapacity,
		Atmosphere: DefaultAtmosphere,
		Prestige:   PrestigeOther,
	}
}

// ResolveTeam maps a scraped team name onto the catalog spelling for league.
func (c *Catalog) ResolveTeam(league, raw string) (string, bool) {
	l, ok := c.leagues[league]
	if !ok {
		return "", false
	}
	team, ok := c.aliases[Normalize(raw)]
	if !ok || !l.HasTeam(team) {
		return "", false
	}
	return team, true
}
