package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/afinmh/TajweeDo/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, atomic.AddInt64(&dbSeq, 1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(model.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, repo *ProgressRepository, userID string, hearts, points int) {
	t.Helper()
	p, err := model.NewUserProgress(userID, "", "")
	if err != nil {
		t.Fatalf("new progress: %v", err)
	}
	p.Hearts = hearts
	p.Points = points
	if _, err := repo.CreateUserProgress(context.Background(), p); err != nil {
		t.Fatalf("create progress: %v", err)
	}
}

func mustProgress(t *testing.T, repo *ProgressRepository, userID string) *model.UserProgress {
	t.Helper()
	p, err := repo.GetUserProgress(context.Background(), userID)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	return p
}
