package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEconomyDefaults(t *testing.T) {
	e, err := LoadEconomy(t.TempDir())
	if err != nil {
		t.Fatalf("LoadEconomy error: %v", err)
	}
	if e != DefaultEconomy() {
		t.Fatalf("expected defaults %+v, got %+v", DefaultEconomy(), e)
	}
}

func TestLoadEconomyFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "economy.env"), []byte("REFILL_COST=70\nPRACTICE_POINTS=5\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PRACTICE_POINTS", "12")

	e, err := LoadEconomy(dir)
	if err != nil {
		t.Fatalf("LoadEconomy error: %v", err)
	}
	if e.RefillCost != 70 {
		t.Fatalf("expected refill cost from file, got %d", e.RefillCost)
	}
	if e.PracticePoints != 12 {
		t.Fatalf("expected env to win for practice points, got %d", e.PracticePoints)
	}
	if e.PointsPerChallenge != 25 {
		t.Fatalf("expected default points per challenge, got %d", e.PointsPerChallenge)
	}
}

func TestEconomyValidate(t *testing.T) {
	bad := DefaultEconomy()
	bad.RefillCost = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected zero refill cost to be rejected")
	}

	bad = DefaultEconomy()
	bad.LeaderboardSize = -1
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected negative leaderboard size to be rejected")
	}
}
