package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"scottish-predictor/internal/api"
	"scottish-predictor/internal/catalog"
	"scottish-predictor/internal/config"
	"scottish-predictor/internal/ingest"
	"scottish-predictor/internal/snapshots"
	"scottish-predictor/internal/update"
)

func main() {
	out := flag.String("out", "data/stats.json", "where to write the stats document")
	leagues := flag.String("leagues", strings.Join(api.LeagueKeys(), ","), "comma-separated league keys to scrape")
	save := flag.Bool("save", true, "store the document as a snapshot in DB_PATH")
	flag.Parse()

	cfg := config.Load()
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	})))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, *out, strings.Split(*leagues, ","), *save); err != nil {
		slog.Error("Stats update failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, out string, keys []string, save bool) error {
	var cat *catalog.Catalog
	var err error
	if cfg.CatalogPath != "" {
		cat, err = catalog.Load(cfg.CatalogPath)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return err
	}

	client := api.NewSPFLClient(cfg.SPFLBaseURL, api.NewRateLimitedClient(cfg.RequestsPerMinute, cfg.HTTPTimeout, 3))

	rowsByKey := make(map[string][]ingest.TableRow, len(keys))
	var errs []error
	for _, key := range keys {
		key = strings.TrimSpace(key)
		l, ok := cat.LeagueByKey(key)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown league key %q", key))
			continue
		}

		rows, err := client.FetchTable(ctx, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows, err = ingest.Resolve(cat, l.Name, rows)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		if err := ingest.Validate(rows); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}

		slog.Info("Scraped table", "league", l.Name, "teams", len(rows))
		rowsByKey[key] = rows
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	now := time.Now()
	f := ingest.NewStatsFile(now, rowsByKey)

	// The document must load the same way the update check will load it.
	if _, err := update.BuildTables(cat, update.SnapshotGenerator(f, now), f, now); err != nil {
		return fmt.Errorf("stats document does not build: %w", err)
	}

	if err := writeFile(out, f); err != nil {
		return err
	}
	info, err := os.Stat(out)
	if err != nil {
		return err
	}
	slog.Info("Wrote stats document", "path", out, "version", f.Version, "size", humanize.Bytes(uint64(info.Size())))

	if !save {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return err
	}
	db, err := snapshots.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.SaveSnapshot(ctx, f, now)
	if err != nil {
		return err
	}
	slog.Info("Saved snapshot", "id", id)
	return nil
}

// writeFile replaces path atomically.
func writeFile(path string, f ingest.StatsFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".stats-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := ingest.EncodeStatsFile(tmp, f); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
