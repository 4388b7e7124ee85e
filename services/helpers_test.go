package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/afinmh/TajweeDo/config"
	"github.com/afinmh/TajweeDo/model"
	"github.com/afinmh/TajweeDo/services/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, atomic.AddInt64(&dbSeq, 1))

	db, err := OpenDatabase(DriverSqlite, dsn, logger.Silent)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// testCurriculumYAML pools lesson 1 over six shared challenges and lesson 2 over two
// of them. Day 7 grants item 1 and day 30 grants item 2.
func testCurriculumYAML() string {
	var b strings.Builder
	b.WriteString("version: 4\npools:\n")
	b.WriteString("  - { lesson_id: 1, challenge_ids: [1001, 1002, 1003, 1004, 1005, 1006] }\n")
	b.WriteString("  - { lesson_id: 2, challenge_ids: [1002, 1001] }\n")
	b.WriteString("daily_rewards:\n")
	for d := 1; d <= config.RewardCycleDays; d++ {
		switch d {
		case 7:
			b.WriteString("  - { day: 7, points: 10, item_id: 1 }\n")
		case 30:
			b.WriteString("  - { day: 30, points: 100, item_id: 2 }\n")
		default:
			fmt.Fprintf(&b, "  - { day: %d, points: %d }\n", d, 10+d)
		}
	}
	return b.String()
}

func testCurriculum(t *testing.T) *config.Curriculum {
	t.Helper()
	c, err := config.ParseCurriculum([]byte(testCurriculumYAML()))
	if err != nil {
		t.Fatalf("parse curriculum: %v", err)
	}
	return c
}

func correctOption(challengeID uint) uint { return challengeID*10 + 1 }
func wrongOption(challengeID uint) uint   { return challengeID*10 + 2 }

func challengeRow(id, lessonID uint, order int) *model.Challenge {
	return &model.Challenge{
		ID:       id,
		LessonID: lessonID,
		Type:     "SELECT",
		Question: fmt.Sprintf("Question %d", id),
		Order:    order,
		Options: []model.ChallengeOption{
			{ID: correctOption(id), ChallengeID: id, Text: "right", Correct: true},
			{ID: wrongOption(id), ChallengeID: id, Text: "wrong"},
		},
	}
}

// seedCatalog builds course 1 with a pooled unit (lessons 1, 2) and an owned unit
// (lesson 3 with challenges 1-3, lesson 4 with challenge 4). Course 2 has no lessons.
// Pool challenges are inserted out of order.
func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	rows := []interface{}{
		&model.Course{ID: 1, Title: "Nun Mati", Slug: "nun-mati"},
		&model.Course{ID: 2, Title: "Mim Mati", Slug: "mim-mati"},
		&model.Unit{ID: 1, CourseID: 1, Title: "Izhar Halqi", Order: 1},
		&model.Unit{ID: 2, CourseID: 1, Title: "Idgham", Order: 2},
		&model.Lesson{ID: 1, UnitID: 1, Title: "Pooled A", Order: 1},
		&model.Lesson{ID: 2, UnitID: 1, Title: "Pooled B", Order: 2},
		&model.Lesson{ID: 3, UnitID: 2, Title: "Owned A", Order: 1},
		&model.Lesson{ID: 4, UnitID: 2, Title: "Owned B", Order: 2},
	}
	for i, id := range []uint{1003, 1001, 1002, 1006, 1004, 1005} {
		rows = append(rows, challengeRow(id, 1, i+1))
	}
	for i, id := range []uint{1, 2, 3} {
		rows = append(rows, challengeRow(id, 3, i+1))
	}
	rows = append(rows, challengeRow(4, 4, 1))

	for _, r := range rows {
		if err := db.Create(r).Error; err != nil {
			t.Fatalf("seed %T: %v", r, err)
		}
	}
}

func seedItems(t *testing.T, db *gorm.DB) {
	t.Helper()
	items := []model.StoreItem{
		{ID: 1, Name: "Avatar Unta", PricePoints: 150, ImageSrc: "/avatars/camel.png", Active: true},
		{ID: 2, Name: "Avatar Masjid", PricePoints: 350, ImageSrc: "/avatars/mosque.png", Active: true},
		{ID: 3, Name: "Retired", PricePoints: 10, Active: false},
	}
	for i := range items {
		if err := db.Create(&items[i]).Error; err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}
}

func createLearner(t *testing.T, db *gorm.DB, userID string, hearts, points int) {
	t.Helper()
	p, err := model.NewUserProgress(userID, "", "")
	if err != nil {
		t.Fatalf("new progress: %v", err)
	}
	p.Hearts = hearts
	p.Points = points
	if _, err := repositories.NewProgressRepository(db).CreateUserProgress(context.Background(), p); err != nil {
		t.Fatalf("create progress: %v", err)
	}
}

func learner(t *testing.T, db *gorm.DB, userID string) *model.UserProgress {
	t.Helper()
	p, err := repositories.NewProgressRepository(db).GetUserProgress(context.Background(), userID)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	return p
}

type testEnv struct {
	db         *gorm.DB
	composer   *ComposerService
	ledger     *LedgerService
	progress   *ProgressService
	completion *CompletionService
	store      *StoreService
	dailyLogin *DailyLoginService
	clock      *fakeClock
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(days int) { c.now = c.now.AddDate(0, 0, days) }

// newFileTestDB opens a sqlite file the way DatabaseService does, so concurrent callers
// contend on a real database lock.
func newFileTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "tajweedo.db") + "?_busy_timeout=5000"

	db, err := OpenDatabase(DriverSqlite, dsn, logger.Silent)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithDB(t, newTestDB(t))
}

func newTestEnvWithDB(t *testing.T, db *gorm.DB) *testEnv {
	t.Helper()
	seedCatalog(t, db)
	seedItems(t, db)

	economy := config.DefaultEconomy()
	composer := NewComposerService(db, testCurriculum(t))
	store := NewStoreService(db)
	clock := &fakeClock{now: time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)}

	return &testEnv{
		db:         db,
		composer:   composer,
		ledger:     NewLedgerService(db, economy),
		progress:   NewProgressService(db, composer),
		completion: NewCompletionService(db, composer, economy),
		store:      store,
		dailyLogin: NewDailyLoginService(db, composer.Curriculum(), store, clock.Now),
		clock:      clock,
	}
}
