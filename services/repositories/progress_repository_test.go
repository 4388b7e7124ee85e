package repositories

import (
	"context"
	"math/rand"
	"testing"

	"github.com/afinmh/TajweeDo/model"
	"github.com/afinmh/TajweeDo/shared"
)

func TestCreateUserProgressOnce(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))
	ctx := context.Background()

	p, _ := model.NewUserProgress("u1", "Aisyah", "")
	created, err := repo.CreateUserProgress(ctx, p)
	if err != nil || !created {
		t.Fatalf("expected first create to insert, got %v %v", created, err)
	}

	again, _ := model.NewUserProgress("u1", "Other", "")
	created, err = repo.CreateUserProgress(ctx, again)
	if err != nil || created {
		t.Fatalf("expected second create to be a no-op, got %v %v", created, err)
	}

	got := mustProgress(t, repo, "u1")
	if got.UserName != "Aisyah" || got.Hearts != shared.MaxHearts || got.UserImageSrc != model.DefaultUserImageSrc {
		t.Fatalf("unexpected row %+v", got)
	}
}

func TestAdjustHeartsClamps(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))
	ctx := context.Background()

	for start := 0; start <= shared.MaxHearts; start++ {
		for _, delta := range []int{-10, -6, -1, 0, 1, 3, 10} {
			userID := "u"
			createUser(t, repo, userID, start, 0)
			if _, err := repo.AdjustHearts(ctx, userID, delta); err != nil {
				t.Fatalf("adjust: %v", err)
			}

			want := start + delta
			if want < 0 {
				want = 0
			}
			if want > shared.MaxHearts {
				want = shared.MaxHearts
			}
			if got := mustProgress(t, repo, userID).Hearts; got != want {
				t.Fatalf("hearts %d%+d: expected %d got %d", start, delta, want, got)
			}

			if err := repo.DB().Where("user_id = ?", userID).Delete(&model.UserProgress{}).Error; err != nil {
				t.Fatalf("cleanup: %v", err)
			}
		}
	}
}

func TestAdjustHeartsRandomSequences(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))
	ctx := context.Background()
	rng := rand.New(rand.NewSource(20260310))

	for seq := 0; seq < 20; seq++ {
		userID := "seq"
		start := rng.Intn(shared.MaxHearts + 1)
		createUser(t, repo, userID, start, 0)

		want := start
		for step := 0; step < 40; step++ {
			delta := rng.Intn(15) - 7
			if _, err := repo.AdjustHearts(ctx, userID, delta); err != nil {
				t.Fatalf("seq %d step %d: adjust: %v", seq, step, err)
			}

			want += delta
			if want < 0 {
				want = 0
			}
			if want > shared.MaxHearts {
				want = shared.MaxHearts
			}
			got := mustProgress(t, repo, userID).Hearts
			if got < 0 || got > shared.MaxHearts {
				t.Fatalf("seq %d step %d: hearts %d outside [0,%d]", seq, step, got, shared.MaxHearts)
			}
			if got != want {
				t.Fatalf("seq %d step %d: expected %d hearts, got %d", seq, step, want, got)
			}
		}

		if err := repo.DB().Where("user_id = ?", userID).Delete(&model.UserProgress{}).Error; err != nil {
			t.Fatalf("cleanup: %v", err)
		}
	}
}

func TestTakeHeartStopsAtZero(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))
	ctx := context.Background()
	createUser(t, repo, "u1", 1, 0)

	rows, err := repo.TakeHeart(ctx, "u1")
	if err != nil || rows != 1 {
		t.Fatalf("expected one heart taken, got %d %v", rows, err)
	}
	rows, err = repo.TakeHeart(ctx, "u1")
	if err != nil || rows != 0 {
		t.Fatalf("expected no update at zero hearts, got %d %v", rows, err)
	}
	if got := mustProgress(t, repo, "u1").Hearts; got != 0 {
		t.Fatalf("expected 0 hearts, got %d", got)
	}
}

func TestAddPointsRejectsOverdraft(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))
	ctx := context.Background()
	createUser(t, repo, "u1", 5, 40)

	rows, err := repo.AddPoints(ctx, "u1", -50)
	if err != nil || rows != 0 {
		t.Fatalf("expected overdraft to be refused, got %d %v", rows, err)
	}
	rows, err = repo.AddPoints(ctx, "u1", -40)
	if err != nil || rows != 1 {
		t.Fatalf("expected exact spend to apply, got %d %v", rows, err)
	}
	if got := mustProgress(t, repo, "u1").Points; got != 0 {
		t.Fatalf("expected 0 points, got %d", got)
	}
}

func TestRefillHearts(t *testing.T) {
	cases := []struct {
		name       string
		hearts     int
		points     int
		wantRows   int64
		wantHearts int
		wantPoints int
	}{
		{"refills when affordable", 2, 60, 1, 5, 10},
		{"refuses when points short", 2, 40, 0, 2, 40},
		{"refuses when already full", 5, 100, 0, 5, 100},
		{"refills from zero", 0, 50, 1, 5, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := NewProgressRepository(newTestDB(t))
			createUser(t, repo, "u1", tc.hearts, tc.points)

			rows, err := repo.RefillHearts(context.Background(), "u1", 50)
			if err != nil {
				t.Fatalf("refill: %v", err)
			}
			if rows != tc.wantRows {
				t.Fatalf("expected %d rows got %d", tc.wantRows, rows)
			}
			got := mustProgress(t, repo, "u1")
			if got.Hearts != tc.wantHearts || got.Points != tc.wantPoints {
				t.Fatalf("expected hearts %d points %d, got %d %d", tc.wantHearts, tc.wantPoints, got.Hearts, got.Points)
			}
		})
	}
}

func TestRewardPracticeClampsHearts(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))
	ctx := context.Background()
	createUser(t, repo, "u1", 5, 0)

	if _, err := repo.RewardPractice(ctx, "u1", 10); err != nil {
		t.Fatalf("reward: %v", err)
	}
	got := mustProgress(t, repo, "u1")
	if got.Hearts != 5 || got.Points != 10 {
		t.Fatalf("expected hearts 5 points 10, got %d %d", got.Hearts, got.Points)
	}
}

func TestMarkLessonCompletedTransitionsOnce(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))
	ctx := context.Background()

	first, err := repo.MarkLessonCompleted(ctx, "u1", 3)
	if err != nil || !first {
		t.Fatalf("expected first call to transition, got %v %v", first, err)
	}
	second, err := repo.MarkLessonCompleted(ctx, "u1", 3)
	if err != nil || second {
		t.Fatalf("expected second call to be a repeat, got %v %v", second, err)
	}

	row, err := repo.GetLessonProgress(ctx, "u1", 3)
	if err != nil || row == nil || !row.Completed {
		t.Fatalf("expected completed row, got %+v %v", row, err)
	}
}

func TestMarkLessonCompletedFlipsIncompleteRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	if err := db.Create(&model.LessonProgress{ID: "lp1", UserID: "u1", LessonID: 3}).Error; err != nil {
		t.Fatalf("seed row: %v", err)
	}

	first, err := repo.MarkLessonCompleted(ctx, "u1", 3)
	if err != nil || !first {
		t.Fatalf("expected incomplete row to transition, got %v %v", first, err)
	}
}

func TestChallengeCompletion(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := repo.MarkChallengeCompleted(ctx, "u1", 7); err != nil {
			t.Fatalf("mark: %v", err)
		}
	}

	done, err := repo.CompletedChallenges(ctx, "u1", []uint{7, 8})
	if err != nil {
		t.Fatalf("completed: %v", err)
	}
	if !done[7] || done[8] || len(done) != 1 {
		t.Fatalf("expected only 7 completed, got %v", done)
	}

	var count int64
	repo.DB().Model(&model.ChallengeProgress{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected one progress row, got %d", count)
	}
}

func TestTopUsersOrdering(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))
	createUser(t, repo, "b", 5, 100)
	createUser(t, repo, "a", 5, 100)
	createUser(t, repo, "c", 5, 300)

	users, err := repo.TopUsers(context.Background(), 2)
	if err != nil {
		t.Fatalf("top users: %v", err)
	}
	if len(users) != 2 || users[0].UserID != "c" || users[1].UserID != "a" {
		t.Fatalf("unexpected order %+v", users)
	}
}
