package repositories

import (
	"context"
	"testing"

	"github.com/afinmh/TajweeDo/model"
)

func TestCompareAndClaim(t *testing.T) {
	repo := NewDailyLoginRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.CreateIfMissing(ctx, &model.DailyLoginState{UserID: "u1", LastLoginDate: "2026-03-09"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	next := &model.DailyLoginState{UserID: "u1", LastLoginDate: "2026-03-10", CurrentStreak: 1, BestStreak: 1, TotalLogins: 1}
	rows, err := repo.CompareAndClaim(ctx, 0, next)
	if err != nil || rows != 1 {
		t.Fatalf("expected claim to apply, got %d %v", rows, err)
	}

	rows, err = repo.CompareAndClaim(ctx, 0, next)
	if err != nil || rows != 0 {
		t.Fatalf("expected stale total to be refused, got %d %v", rows, err)
	}

	again := *next
	again.TotalLogins = 2
	rows, err = repo.CompareAndClaim(ctx, 1, &again)
	if err != nil || rows != 0 {
		t.Fatalf("expected same-day claim to be refused, got %d %v", rows, err)
	}

	state, err := repo.Get(ctx, "u1")
	if err != nil || state == nil {
		t.Fatalf("get: %+v %v", state, err)
	}
	if !state.ClaimedOn("2026-03-10") || state.TotalLogins != 1 {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestResetForNewDay(t *testing.T) {
	repo := NewDailyLoginRepository(newTestDB(t))
	ctx := context.Background()

	state := &model.DailyLoginState{
		UserID:        "u1",
		LastLoginDate: "2026-03-09",
		TotalLogins:   3,
		Status:        true,
		View:          true,
		ViewDate:      "2026-03-09",
	}
	if _, err := repo.CreateIfMissing(ctx, state); err != nil {
		t.Fatalf("create: %v", err)
	}

	rows, err := repo.ResetForNewDay(ctx, "u1", "2026-03-10")
	if err != nil || rows != 1 {
		t.Fatalf("expected stale flags to reset, got %d %v", rows, err)
	}
	got, _ := repo.Get(ctx, "u1")
	if got.Status || got.View || got.TotalLogins != 3 {
		t.Fatalf("unexpected state after reset %+v", got)
	}

	rows, err = repo.ResetForNewDay(ctx, "u1", "2026-03-10")
	if err != nil || rows != 0 {
		t.Fatalf("expected second reset to be a no-op, got %d %v", rows, err)
	}
}

func TestResetKeepsTodaysDismissal(t *testing.T) {
	repo := NewDailyLoginRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.CreateIfMissing(ctx, &model.DailyLoginState{UserID: "u1", LastLoginDate: "2026-03-08"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.SetView(ctx, "u1", true, "2026-03-10"); err != nil {
		t.Fatalf("set view: %v", err)
	}

	if _, err := repo.ResetForNewDay(ctx, "u1", "2026-03-10"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got, _ := repo.Get(ctx, "u1")
	if !got.View {
		t.Fatalf("expected dismissal made today to survive reset")
	}

	if _, err := repo.ResetForNewDay(ctx, "u1", "2026-03-11"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got, _ = repo.Get(ctx, "u1")
	if got.View {
		t.Fatalf("expected dismissal to clear on the next day")
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	repo := NewDailyLoginRepository(newTestDB(t))

	state, err := repo.Get(context.Background(), "nobody")
	if err != nil || state != nil {
		t.Fatalf("expected nil state, got %+v %v", state, err)
	}
}
