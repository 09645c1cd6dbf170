package alerts

import (
	"log/slog"
	"sync"
	"time"
)

// Notifier reports stats update events
type Notifier struct {
	mu         sync.Mutex
	lastAlerts map[string]time.Time // Dedupe alerts
	cooldown   time.Duration        // Minimum time between same alerts
}

// NewNotifier creates a new notifier
func NewNotifier(cooldown time.Duration) *Notifier {
	return &Notifier{
		lastAlerts: make(map[string]time.Time),
		cooldown:   cooldown,
	}
}

// checkCooldown records key and reports whether an alert for it was already
// sent within the cooldown window.
func (n *Notifier) checkCooldown(key string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if lastTime, ok := n.lastAlerts[key]; ok {
		if time.Since(lastTime) < n.cooldown {
			return true
		}
	}
	n.lastAlerts[key] = time.Now()
	return false
}

// AlertUpdateApplied announces that a new stats version is now serving
// predictions.
func (n *Notifier) AlertUpdateApplied(version string, leagues, teams int) {
	if n.checkCooldown("applied-" + version) {
		return
	}
	slog.Info("Stats update applied", "version", version, "leagues", leagues, "teams", teams)
}

// AlertValidationFailed reports a rejected stats file. Repeats for the same
// version are suppressed so a bad upstream file is not reported every poll.
func (n *Notifier) AlertValidationFailed(version string, err error) {
	if n.checkCooldown("invalid-" + version) {
		return
	}
	slog.Warn("Stats update rejected", "version", version, "error", err)
}

// AlertFetchFailed reports an unreachable stats source.
func (n *Notifier) AlertFetchFailed(source string, err error) {
	if n.checkCooldown("fetch-" + source) {
		return
	}
	slog.Warn("Stats fetch failed", "source", source, "error", err)
}

// LogError logs an error
func (n *Notifier) LogError(context string, err error) {
	slog.Error("Error", "context", context, "error", err)
}

// LogStartup logs predictor startup
func (n *Notifier) LogStartup(summary string) {
	slog.Info("Predictor started", "config", summary)
}

// CleanupOldAlerts removes alert records whose cooldown has expired
func (n *Notifier) CleanupOldAlerts() {
	n.mu.Lock()
	defer n.mu.Unlock()
	cutoff := time.Now().Add(-n.cooldown)
	for key, t := range n.lastAlerts {
		if t.Before(cutoff) {
			delete(n.lastAlerts, key)
		}
	}
}
