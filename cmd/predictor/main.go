package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"scottish-predictor/internal/alerts"
	"scottish-predictor/internal/analysis"
	"scottish-predictor/internal/api"
	"scottish-predictor/internal/catalog"
	"scottish-predictor/internal/config"
	"scottish-predictor/internal/model"
	"scottish-predictor/internal/odds"
	"scottish-predictor/internal/predictor"
	"scottish-predictor/internal/snapshots"
	"scottish-predictor/internal/stats"
	"scottish-predictor/internal/update"
)

const usage = `usage: predictor <command> [flags]

commands:
  leagues                       list leagues
  teams -league NAME            list a league's teams
  predict -home A -away B -league NAME [-json] [-patterns]
  check                         fetch STATS_URL once and apply it if new
  watch                         poll STATS_URL until interrupted
  status                        show the stats version in use
`

type app struct {
	cfg       config.Config
	catalog   *catalog.Catalog
	db        *snapshots.DB
	notifier  *alerts.Notifier
	predictor *predictor.Predictor
	manager   *update.Manager
	seed      uint64
}

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	cfg := config.Load()
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	})))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := setup(ctx, cfg)
	if err != nil {
		slog.Error("Startup failed", "error", err)
		return 1
	}
	defer a.close()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "leagues":
		err = a.leagues()
	case "teams":
		err = a.teams(args)
	case "predict":
		err = a.predict(args)
	case "check":
		err = a.check(ctx)
	case "watch":
		err = a.watch(ctx)
	case "status":
		err = a.status(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
		return 1
	}
	return 0
}

func setup(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg, notifier: alerts.NewNotifier(cfg.AlertCooldown)}

	var err error
	if cfg.CatalogPath != "" {
		a.catalog, err = catalog.Load(cfg.CatalogPath)
	} else {
		a.catalog, err = catalog.Default()
	}
	if err != nil {
		return nil, err
	}

	a.seed = rand.Uint64()
	if cfg.HasSeed {
		a.seed = cfg.Seed
	}

	method, err := analysis.ParseMethod(cfg.ProbabilityMethod)
	if err != nil {
		return nil, err
	}
	opts := []predictor.Option{predictor.WithMethod(method)}
	if cfg.HasSeed {
		opts = append(opts, predictor.WithSeed(cfg.Seed))
	}

	now := time.Now()
	tables := predictor.Generate(a.catalog, stats.NewSeededGenerator(a.seed, stats.SeasonStart(now)), now)
	a.predictor, err = predictor.New(tables, opts...)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	a.db, err = snapshots.NewDB(cfg.DBPath)
	if err != nil {
		slog.Warn("Snapshot store disabled, using synthetic stats", "error", err)
		return a, nil
	}

	client := api.NewRateLimitedClient(cfg.RequestsPerMinute, cfg.HTTPTimeout, 3)
	fetcher := api.NewSPFLClient(cfg.SPFLBaseURL, client)
	a.manager = update.NewManager(fetcher, a.db, a.predictor, a.notifier, a.catalog,
		cfg.StatsURL, cfg.UpdateInterval)

	if _, err := a.manager.Restore(ctx); err != nil {
		a.notifier.LogError("restore", err)
	}
	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

func (a *app) leagues() error {
	for _, name := range a.predictor.Leagues() {
		teams, err := a.predictor.Teams(name)
		if err != nil {
			return err
		}
		fmt.Printf("%-14s %2d teams\n", name, len(teams))
	}
	return nil
}

func (a *app) teams(args []string) error {
	fs := flag.NewFlagSet("teams", flag.ExitOnError)
	league := fs.String("league", "", "league name")
	fs.Parse(args)

	teams, err := a.predictor.Teams(*league)
	if err != nil {
		return err
	}
	for _, t := range teams {
		fmt.Println(t)
	}
	return nil
}

func (a *app) predict(args []string) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	home := fs.String("home", "", "home team")
	away := fs.String("away", "", "away team")
	league := fs.String("league", "", "league name")
	asJSON := fs.Bool("json", false, "print the full result as JSON")
	patterns := fs.Bool("patterns", false, "include scoring patterns")
	fs.Parse(args)

	if *home == "" || *away == "" || *league == "" {
		return errors.New("-home, -away and -league are required")
	}

	res, err := a.predictor.Predict(*home, *away, *league)
	if err != nil {
		return err
	}

	var sp *analysis.ScoringPatterns
	if *patterns {
		p := analysis.AnalyzeScoringPatterns(rand.New(rand.NewPCG(a.seed, a.seed)), res.LeagueStats.HeadToHead)
		sp = &p
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(newPredictionView(res, sp))
	}

	printPrediction(*home, *away, *league, res, a.predictor.Tables().Version())
	if sp != nil {
		printPatterns(*sp)
	}
	return nil
}

// predictionView is the -json rendering of a prediction.
type predictionView struct {
	model.PredictionResult
	HomeFormRating  float64                   `json:"homeFormRating"`
	AwayFormRating  float64                   `json:"awayFormRating"`
	FairOdds        odds.FairLines            `json:"fairOdds"`
	ScoringPatterns *analysis.ScoringPatterns `json:"scoringPatterns,omitempty"`
}

func newPredictionView(res model.PredictionResult, sp *analysis.ScoringPatterns) predictionView {
	return predictionView{
		PredictionResult: res,
		HomeFormRating:   analysis.FormRating(res.HomeStats.Form),
		AwayFormRating:   analysis.FormRating(res.AwayStats.Form),
		FairOdds:         odds.ForPrediction(res),
		ScoringPatterns:  sp,
	}
}

func printPrediction(home, away, league string, res model.PredictionResult, version string) {
	v := res.LeagueStats.VenueStats
	fmt.Printf("%s vs %s (%s)\n", home, away, league)
	fmt.Printf("Venue:           %s (capacity %s, avg %s)\n",
		v.VenueName, humanize.Comma(int64(v.Capacity)), humanize.Comma(int64(v.AverageAttendance)))
	fmt.Printf("Predicted score: %d-%d\n", res.HomeGoals, res.AwayGoals)
	fmt.Printf("Expected goals:  %.2f - %.2f\n", res.HomeXg, res.AwayXg)
	fmt.Printf("Outcome (%s):  home %.1f%%  draw %.1f%%  away %.1f%%\n",
		res.Method, res.HomeWinProb, res.DrawProb, res.AwayWinProb)
	fair := odds.ForPrediction(res)
	fmt.Printf("Fair odds:       home %s  draw %s  away %s\n", fair.HomeWin, fair.Draw, fair.AwayWin)
	fmt.Printf("Form factor:     %.2f / %.2f (%s / %s)\n",
		res.HomeForm, res.AwayForm, formString(res.HomeStats.Form), formString(res.AwayStats.Form))
	fmt.Printf("Form rating:     %.2f / %.2f\n",
		analysis.FormRating(res.HomeStats.Form), analysis.FormRating(res.AwayStats.Form))
	fmt.Printf("Venue effect:    %+.2f\n", analysis.VenueEffect(res.LeagueStats))
	fmt.Printf("Stats:           %s\n", version)
}

func printPatterns(sp analysis.ScoringPatterns) {
	fmt.Printf("Goal timing:     early %d, mid %d, late %d\n", sp.EarlyGoals, sp.MidGoals, sp.LateGoals)
	fmt.Printf("Streaks:         clean sheets %d, scoring %d\n", sp.CleanSheetStreak, sp.ScoringStreak)
	fmt.Printf("Strongest:       home %s, away %s\n",
		sp.HomeGoalPattern.StrongestPeriod, sp.AwayGoalPattern.StrongestPeriod)
}

func formString(form []int) string {
	var b strings.Builder
	for _, r := range form {
		switch r {
		case model.FormWin:
			b.WriteByte('W')
		case model.FormDraw:
			b.WriteByte('D')
		default:
			b.WriteByte('L')
		}
	}
	return b.String()
}

func (a *app) requireManager() error {
	if a.manager == nil {
		return errors.New("snapshot store unavailable")
	}
	if a.cfg.StatsURL == "" {
		return errors.New("STATS_URL is not set")
	}
	return nil
}

func (a *app) check(ctx context.Context) error {
	if err := a.requireManager(); err != nil {
		return err
	}
	applied, err := a.manager.CheckForUpdates(ctx)
	if err != nil {
		return err
	}
	if applied {
		fmt.Printf("Applied stats %s\n", a.predictor.Tables().Version())
	} else {
		fmt.Printf("Stats %s are current\n", a.predictor.Tables().Version())
	}
	return nil
}

func (a *app) watch(ctx context.Context) error {
	if err := a.requireManager(); err != nil {
		return err
	}
	a.notifier.LogStartup(config.Summary(a.cfg))
	a.manager.Run(ctx)
	return nil
}

func (a *app) status(ctx context.Context) error {
	t := a.predictor.Tables()
	fmt.Printf("Stats in use:  %s (built %s)\n", t.Version(), humanize.Time(t.BuiltAt()))
	fmt.Printf("Method:        %s\n", a.predictor.Method())
	if a.db == nil {
		return nil
	}

	last, ok, err := a.db.LastChecked(ctx)
	if err != nil {
		return err
	}
	if ok {
		fmt.Printf("Last checked:  %s\n", humanize.Time(last))
	} else {
		fmt.Println("Last checked:  never")
	}

	infos, err := a.db.Snapshots(ctx, 5)
	if err != nil {
		return err
	}
	for _, info := range infos {
		fmt.Printf("  %s  %-16s %d leagues  %s\n",
			info.ID[:8], info.Version, info.Leagues, humanize.Time(info.FetchedAt))
	}
	return nil
}
