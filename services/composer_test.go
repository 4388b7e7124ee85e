package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/afinmh/TajweeDo/model"
	"github.com/afinmh/TajweeDo/shared"
)

func TestComposePooledFollowsMappingOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	composed, err := env.composer.Compose(ctx, 1)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !composed.IsPooled {
		t.Fatalf("expected lesson 1 to be pooled")
	}
	if got := fmt.Sprint(composed.ChallengeIDs()); got != "[1001 1002 1003 1004 1005 1006]" {
		t.Fatalf("expected mapping order, got %s", got)
	}

	composed, err = env.composer.Compose(ctx, 2)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if got := fmt.Sprint(composed.ChallengeIDs()); got != "[1002 1001]" {
		t.Fatalf("expected [1002 1001], got %s", got)
	}
	for _, ch := range composed.Challenges {
		if len(ch.Options) != 2 {
			t.Fatalf("expected options loaded for %d, got %d", ch.ID, len(ch.Options))
		}
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.composer.Compose(ctx, 1)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := env.composer.Compose(ctx, 1)
		if err != nil {
			t.Fatalf("compose: %v", err)
		}
		if fmt.Sprint(again.ChallengeIDs()) != fmt.Sprint(first.ChallengeIDs()) {
			t.Fatalf("expected identical order, got %v then %v", first.ChallengeIDs(), again.ChallengeIDs())
		}
	}
}

func TestComposeOwnedUsesAuthoredOrder(t *testing.T) {
	env := newTestEnv(t)

	composed, err := env.composer.Compose(context.Background(), 3)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if composed.IsPooled {
		t.Fatalf("expected lesson 3 to use owned challenges")
	}
	if got := fmt.Sprint(composed.ChallengeIDs()); got != "[1 2 3]" {
		t.Fatalf("expected [1 2 3], got %s", got)
	}
}

func TestComposeSkipsMissingPoolChallenge(t *testing.T) {
	env := newTestEnv(t)
	if err := env.db.Select("Options").Delete(&model.Challenge{ID: 1004}).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}

	composed, err := env.composer.Compose(context.Background(), 1)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if got := fmt.Sprint(composed.ChallengeIDs()); got != "[1001 1002 1003 1005 1006]" {
		t.Fatalf("expected 1004 skipped, got %s", got)
	}
}

func TestComposeUnknownLesson(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.composer.Compose(context.Background(), 99)
	if !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestComposedLessonFind(t *testing.T) {
	composed := &ComposedLesson{Challenges: []model.Challenge{{ID: 5}, {ID: 9}}}

	ch, idx, ok := composed.Find(9)
	if !ok || idx != 1 || ch.ID != 9 {
		t.Fatalf("expected 9 at 1, got %v %d %v", ch, idx, ok)
	}
	if _, _, ok := composed.Find(7); ok {
		t.Fatalf("expected 7 to be absent")
	}
}
