package alerts

import (
	"errors"
	"testing"
	"time"
)

func TestCheckCooldownSuppresses(t *testing.T) {
	n := NewNotifier(1 * time.Second)

	if n.checkCooldown("test-key") {
		t.Error("first call should not be suppressed")
	}

	if !n.checkCooldown("test-key") {
		t.Error("second call within cooldown should be suppressed")
	}
}

func TestCheckCooldownExpires(t *testing.T) {
	n := NewNotifier(10 * time.Millisecond)

	if n.checkCooldown("test-key") {
		t.Error("first call should not be suppressed")
	}

	time.Sleep(15 * time.Millisecond)

	if n.checkCooldown("test-key") {
		t.Error("call after cooldown should not be suppressed")
	}
}

func TestCheckCooldownDifferentKeys(t *testing.T) {
	n := NewNotifier(1 * time.Second)

	if n.checkCooldown("key-a") {
		t.Error("first call for key-a should not be suppressed")
	}
	if n.checkCooldown("key-b") {
		t.Error("first call for key-b should not be suppressed")
	}
	if !n.checkCooldown("key-a") {
		t.Error("second call for key-a should be suppressed")
	}
}

func TestAlertValidationFailedRecordsVersion(t *testing.T) {
	n := NewNotifier(1 * time.Hour)
	err := errors.New("Celtic (position 1): played 10 but won+drawn+lost is 9")

	n.AlertValidationFailed("1.0.2026-10-18", err)
	n.AlertValidationFailed("1.0.2026-10-18", err)

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.lastAlerts["invalid-1.0.2026-10-18"]; !ok {
		t.Error("validation alert should be recorded for cooldown")
	}
	if len(n.lastAlerts) != 1 {
		t.Errorf("lastAlerts has %d keys, want 1", len(n.lastAlerts))
	}
}

func TestAlertKindsDoNotShareCooldown(t *testing.T) {
	n := NewNotifier(1 * time.Hour)

	n.AlertUpdateApplied("1.0.2026-10-18", 4, 42)
	n.AlertValidationFailed("1.0.2026-10-18", errors.New("bad"))
	n.AlertFetchFailed("https://example.test/stats.json", errors.New("timeout"))

	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.lastAlerts) != 3 {
		t.Errorf("lastAlerts has %d keys, want 3", len(n.lastAlerts))
	}
}

func TestCleanupOldAlerts(t *testing.T) {
	n := NewNotifier(1 * time.Hour)

	n.mu.Lock()
	n.lastAlerts["old-key"] = time.Now().Add(-2 * time.Hour)
	n.lastAlerts["fresh-key"] = time.Now()
	n.mu.Unlock()

	n.CleanupOldAlerts()

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.lastAlerts["old-key"]; ok {
		t.Error("old alert should have been cleaned up")
	}
	if _, ok := n.lastAlerts["fresh-key"]; !ok {
		t.Error("fresh alert should not have been cleaned up")
	}
}

func TestCleanupKeepsRecordsWithinLongCooldown(t *testing.T) {
	n := NewNotifier(2 * time.Hour)

	n.mu.Lock()
	n.lastAlerts["invalid-1.0.2024-01-15"] = time.Now().Add(-90 * time.Minute)
	n.mu.Unlock()

	n.CleanupOldAlerts()

	if !n.checkCooldown("invalid-1.0.2024-01-15") {
		t.Error("alert inside its cooldown should still be suppressed after cleanup")
	}
}
