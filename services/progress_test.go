package services

import (
	"context"
	"errors"
	"testing"

	"github.com/afinmh/TajweeDo/dto"
	"github.com/afinmh/TajweeDo/services/repositories"
	"github.com/afinmh/TajweeDo/shared"
)

func answer(t *testing.T, env *testEnv, userID string, lessonID, challengeID, optionID uint) *dto.SubmitAnswerResponse {
	t.Helper()
	resp, err := env.completion.SubmitAnswer(context.Background(), userID, lessonID, dto.SubmitAnswerRequest{
		ChallengeID: challengeID,
		OptionID:    optionID,
	})
	if err != nil {
		t.Fatalf("answer %d/%d: %v", lessonID, challengeID, err)
	}
	return resp
}

func finishLesson(t *testing.T, env *testEnv, userID string, lessonID uint) {
	t.Helper()
	composed, err := env.composer.Compose(context.Background(), lessonID)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	for _, id := range composed.ChallengeIDs() {
		answer(t, env, userID, lessonID, id, correctOption(id))
	}
}

func TestActiveLessonProgression(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createLearner(t, env.db, "u1", 5, 0)

	active, err := env.progress.GetActiveLesson(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("active lesson: %v", err)
	}
	if active.ActiveLesson.ID != 1 || active.AllCompleted {
		t.Fatalf("expected lesson 1 first, got %+v", active)
	}

	finishLesson(t, env, "u1", 1)
	active, _ = env.progress.GetActiveLesson(ctx, "u1", 1)
	if active.ActiveLesson.ID != 2 {
		t.Fatalf("expected lesson 2 after finishing 1, got %d", active.ActiveLesson.ID)
	}

	for _, id := range []uint{2, 3, 4} {
		finishLesson(t, env, "u1", id)
	}
	active, _ = env.progress.GetActiveLesson(ctx, "u1", 1)
	if !active.AllCompleted || active.ActiveLesson.ID != 1 {
		t.Fatalf("expected fallback to first lesson, got %+v", active)
	}
}

func TestUnitsCompletionFromOwnedChallenges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	repo := repositories.NewProgressRepository(env.db)

	for _, id := range []uint{1, 2, 3} {
		if err := repo.MarkChallengeCompleted(ctx, "u1", id); err != nil {
			t.Fatalf("mark: %v", err)
		}
	}

	units, err := env.progress.GetUnits(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("units: %v", err)
	}
	if len(units) != 2 || units[0].Order != 1 {
		t.Fatalf("unexpected units %+v", units)
	}
	if units[0].Lessons[0].Completed {
		t.Fatalf("expected pooled lesson without a row to be incomplete")
	}
	if !units[1].Lessons[0].Completed || units[1].Lessons[1].Completed {
		t.Fatalf("expected only lesson 3 complete, got %+v", units[1].Lessons)
	}
}

func TestActiveLessonEmptyCourse(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.progress.GetActiveLesson(context.Background(), "u1", 2)
	if !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected not found for course without lessons, got %v", err)
	}

	_, err = env.progress.GetActiveLesson(context.Background(), "u1", 77)
	if !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected not found for unknown course, got %v", err)
	}
}

func TestLessonPercentage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createLearner(t, env.db, "u1", 5, 0)

	pct, err := env.progress.GetLessonPercentage(ctx, "u1", 3)
	if err != nil || pct != 0 {
		t.Fatalf("expected 0, got %d %v", pct, err)
	}

	answer(t, env, "u1", 3, 1, correctOption(1))
	pct, _ = env.progress.GetLessonPercentage(ctx, "u1", 3)
	if pct != 33 {
		t.Fatalf("expected 33, got %d", pct)
	}

	answer(t, env, "u1", 3, 2, correctOption(2))
	pct, _ = env.progress.GetLessonPercentage(ctx, "u1", 3)
	if pct != 67 {
		t.Fatalf("expected 67, got %d", pct)
	}

	answer(t, env, "u1", 3, 3, correctOption(3))
	pct, _ = env.progress.GetLessonPercentage(ctx, "u1", 3)
	if pct != 100 {
		t.Fatalf("expected 100, got %d", pct)
	}

	pct, _ = env.progress.GetLessonPercentage(ctx, "u1", 1)
	if pct != 0 {
		t.Fatalf("expected unfinished pooled lesson at 0, got %d", pct)
	}
	finishLesson(t, env, "u1", 1)
	pct, _ = env.progress.GetLessonPercentage(ctx, "u1", 1)
	if pct != 100 {
		t.Fatalf("expected finished pooled lesson at 100, got %d", pct)
	}

	done, err := env.progress.IsLessonCompleted(ctx, "u1", 1)
	if err != nil || !done {
		t.Fatalf("expected lesson 1 completed, got %v %v", done, err)
	}
}

func TestLessonView(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createLearner(t, env.db, "u1", 5, 0)

	answer(t, env, "u1", 3, 1, correctOption(1))

	view, err := env.progress.GetLessonView(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.IsPooled || view.IsPractice || view.Percentage != 33 {
		t.Fatalf("unexpected view %+v", view)
	}
	if !view.Challenges[0].Completed || view.Challenges[1].Completed {
		t.Fatalf("expected only first challenge completed")
	}

	finishLesson(t, env, "u1", 1)
	view, err = env.progress.GetLessonView(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if !view.IsPooled || !view.IsPractice || view.Percentage != 100 {
		t.Fatalf("expected pooled practice view, got %+v", view)
	}
	for _, ch := range view.Challenges {
		if ch.Completed {
			t.Fatalf("expected no per-challenge completion on pooled lesson")
		}
	}
}
