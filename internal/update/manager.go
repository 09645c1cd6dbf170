package update

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"scottish-predictor/internal/alerts"
	"scottish-predictor/internal/catalog"
	"scottish-predictor/internal/config"
	"scottish-predictor/internal/ingest"
	"scottish-predictor/internal/predictor"
	"scottish-predictor/internal/snapshots"
)

// Fetcher retrieves the published stats document.
type Fetcher interface {
	FetchStatsFile(ctx context.Context, url string) (ingest.StatsFile, error)
}

// Store persists applied snapshots and update bookkeeping.
type Store interface {
	SaveSnapshot(ctx context.Context, f ingest.StatsFile, fetchedAt time.Time) (string, error)
	LatestSnapshot(ctx context.Context) (*snapshots.Snapshot, error)
	SetLastChecked(ctx context.Context, t time.Time) error
	LastChecked(ctx context.Context) (time.Time, bool, error)
	SetAppliedVersion(ctx context.Context, version string) error
	AppliedVersion(ctx context.Context) (string, error)
}

// Manager polls for new stats and swaps them into the predictor.
type Manager struct {
	fetcher   Fetcher
	store     Store
	predictor *predictor.Predictor
	notifier  *alerts.Notifier
	catalog   *catalog.Catalog
	statsURL  string
	interval  time.Duration

	group singleflight.Group
	now   func() time.Time
}

// NewManager creates a Manager with all dependencies.
func NewManager(
	fetcher Fetcher,
	store Store,
	p *predictor.Predictor,
	notifier *alerts.Notifier,
	cat *catalog.Catalog,
	statsURL string,
	interval time.Duration,
) *Manager {
	return &Manager{
		fetcher:   fetcher,
		store:     store,
		predictor: p,
		notifier:  notifier,
		catalog:   cat,
		statsURL:  statsURL,
		interval:  interval,
		now:       time.Now,
	}
}

// Restore installs the most recently saved snapshot, if any. It reports
// whether tables were swapped.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	snap, err := m.store.LatestSnapshot(ctx)
	if err != nil {
		return false, err
	}
	if snap == nil {
		return false, nil
	}
	tables, err := BuildTables(m.catalog, SnapshotGenerator(snap.File, snap.FetchedAt), snap.File, snap.FetchedAt)
	if err != nil {
		return false, fmt.Errorf("restoring snapshot %s: %w", snap.ID, err)
	}
	if err := m.predictor.Swap(tables); err != nil {
		return false, err
	}
	slog.Info("Restored stats snapshot", "version", snap.Version, "id", snap.ID)
	return true, nil
}

// CheckForUpdates fetches the stats document and applies it if its version
// differs from the one currently applied. Concurrent callers share a single
// in-flight check, which runs to completion even if the caller that started
// it gives up; each caller stops waiting when its own ctx is done. It
// reports whether new tables were installed.
func (m *Manager) CheckForUpdates(ctx context.Context) (bool, error) {
	if m.statsURL == "" {
		return false, errors.New("no stats URL configured")
	}
	shared := context.WithoutCancel(ctx)
	ch := m.group.DoChan("check", func() (any, error) {
		return m.check(shared)
	})
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return false, r.Err
		}
		return r.Val.(bool), nil
	}
}

func (m *Manager) check(ctx context.Context) (bool, error) {
	f, err := m.fetcher.FetchStatsFile(ctx, m.statsURL)
	if err != nil {
		m.notifier.AlertFetchFailed(m.statsURL, err)
		return false, fmt.Errorf("fetching stats: %w", err)
	}

	now := m.now()
	applied, err := m.store.AppliedVersion(ctx)
	if err != nil {
		return false, err
	}
	if f.Version == applied {
		slog.Debug("Stats unchanged", "version", applied)
		return false, m.store.SetLastChecked(ctx, now)
	}

	tables, err := BuildTables(m.catalog, SnapshotGenerator(f, now), f, now)
	if err != nil {
		m.notifier.AlertValidationFailed(f.Version, err)
		if serr := m.store.SetLastChecked(ctx, now); serr != nil {
			m.notifier.LogError("update-state", serr)
		}
		return false, fmt.Errorf("rejecting stats %s: %w", f.Version, err)
	}

	id, err := m.store.SaveSnapshot(ctx, f, now)
	if err != nil {
		return false, err
	}
	if err := m.predictor.Swap(tables); err != nil {
		return false, err
	}
	if err := m.store.SetAppliedVersion(ctx, f.Version); err != nil {
		return true, err
	}
	if err := m.store.SetLastChecked(ctx, now); err != nil {
		return true, err
	}

	slog.Debug("Snapshot saved", "id", id)
	m.notifier.AlertUpdateApplied(f.Version, len(f.Leagues), teamCount(f))
	return true, nil
}

// due reports whether the last check is older than the poll interval.
func (m *Manager) due(ctx context.Context) bool {
	last, ok, err := m.store.LastChecked(ctx)
	if err != nil {
		m.notifier.LogError("update-state", err)
		return true
	}
	return !ok || m.now().Sub(last) >= m.interval
}

// Run checks immediately if a check is due, then on every interval. It
// blocks until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(config.DefaultCleanupInterval)
	defer cleanupTicker.Stop()

	slog.Info("Starting update loop", "interval", m.interval)

	if m.due(ctx) {
		m.poll(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Update loop stopped")
			return

		case <-cleanupTicker.C:
			m.notifier.CleanupOldAlerts()

		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

func (m *Manager) poll(ctx context.Context) {
	if _, err := m.CheckForUpdates(ctx); err != nil && ctx.Err() == nil {
		m.notifier.LogError("update-check", err)
	}
}
