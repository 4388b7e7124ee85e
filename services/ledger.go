package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/afinmh/TajweeDo/config"
	"github.com/afinmh/TajweeDo/dto"
	"github.com/afinmh/TajweeDo/model"
	"github.com/afinmh/TajweeDo/services/repositories"
	"github.com/afinmh/TajweeDo/shared"
	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const leaderboardCacheTTL = 30 * time.Second

// LedgerService holds the hearts/points/XP economy. All writes go through
// conditional updates in ProgressRepository.
type LedgerService struct {
	appContext.DefaultService

	db           *gorm.DB
	economy      config.Economy
	progressRepo *repositories.ProgressRepository
	catalogRepo  *repositories.CatalogRepository
	redisSvc     *RedisService

	leaderboard singleflight.Group
}

const LEDGER_SVC = "ledger_svc"

func (svc LedgerService) Id() string {
	return LEDGER_SVC
}

func (svc *LedgerService) Configure(ctx *appContext.Context) error {
	path := os.Getenv("ECONOMY_CONFIG_PATH")
	if path == "" {
		path = "config"
	}
	economy, err := config.LoadEconomy(path)
	if err != nil {
		return err
	}
	svc.economy = economy

	return svc.DefaultService.Configure(ctx)
}

func (svc *LedgerService) Start() error {
	svc.init(svc.Service(DATABASE_SVC).(*DatabaseService).Db())
	if redisSvc, ok := svc.Service(REDIS_SVC).(*RedisService); ok {
		svc.redisSvc = redisSvc
	}
	return nil
}

func NewLedgerService(db *gorm.DB, economy config.Economy) *LedgerService {
	svc := &LedgerService{economy: economy}
	svc.init(db)
	return svc
}

func (svc *LedgerService) init(db *gorm.DB) {
	svc.db = db
	svc.progressRepo = repositories.NewProgressRepository(db)
	svc.catalogRepo = repositories.NewCatalogRepository(db)
}

func (svc *LedgerService) Economy() config.Economy {
	return svc.economy
}

func (svc *LedgerService) ListCourses(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := svc.catalogRepo.ListCourses(ctx)
	if err != nil {
		return nil, HandleError(err)
	}
	resp := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		resp = append(resp, *toCourseResponse(&courses[i]))
	}
	return resp, nil
}

func (svc *LedgerService) GetUserProgress(ctx context.Context, userID string) (*dto.UserProgressResponse, error) {
	progress, err := svc.progressRepo.GetUserProgressWithCourse(ctx, userID)
	if err != nil {
		return nil, svc.progressError(err)
	}
	return toUserProgressResponse(progress), nil
}

// SelectCourse creates the learner's economy row on first use or switches the active course.
func (svc *LedgerService) SelectCourse(ctx context.Context, userID string, req dto.SelectCourseRequest) (*dto.UserProgressResponse, error) {
	if _, err := svc.catalogRepo.GetCourse(ctx, req.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Course not found")
		}
		return nil, HandleError(err)
	}

	lessons, err := svc.catalogRepo.CountLessons(ctx, req.CourseID)
	if err != nil {
		return nil, HandleError(err)
	}
	if lessons == 0 {
		return nil, shared.NewBadRequestError(nil, "Course has no lessons yet")
	}

	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := svc.progressRepo.WithTx(tx)

		progress, err := model.NewUserProgress(userID, req.UserName, req.UserImageSrc)
		if err != nil {
			return shared.NewBadRequestError(err, "Invalid user progress")
		}
		courseID := req.CourseID
		progress.ActiveCourseID = &courseID

		created, err := repo.CreateUserProgress(ctx, progress)
		if err != nil || created {
			return err
		}
		return repo.SetActiveCourse(ctx, userID, req.CourseID, req.UserName, req.UserImageSrc)
	})
	if err != nil {
		return nil, HandleError(err)
	}

	log.WithFields(log.Fields{"user_id": userID, "course_id": req.CourseID}).Info("Active course selected")
	_ = svc.InvalidateLeaderboard(ctx)
	return svc.GetUserProgress(ctx, userID)
}

// AdjustHearts applies delta clamped to [0, MaxHearts] and returns the stored value.
func (svc *LedgerService) AdjustHearts(ctx context.Context, userID string, delta int) (int, error) {
	var hearts int
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := svc.progressRepo.WithTx(tx)
		rows, err := repo.AdjustHearts(ctx, userID, delta)
		if err != nil {
			return err
		}
		if rows == 0 {
			return gorm.ErrRecordNotFound
		}
		progress, err := repo.GetUserProgress(ctx, userID)
		if err != nil {
			return err
		}
		hearts = progress.Hearts
		return nil
	})
	if err != nil {
		return 0, svc.progressError(err)
	}
	return hearts, nil
}

// AdjustPoints rejects a deduction the balance cannot cover instead of clamping it.
func (svc *LedgerService) AdjustPoints(ctx context.Context, userID string, delta int) (int, error) {
	var points int
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := svc.progressRepo.WithTx(tx)
		rows, err := repo.AddPoints(ctx, userID, delta)
		if err != nil {
			return err
		}
		progress, err := repo.GetUserProgress(ctx, userID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return shared.ErrInsufficientFunds
		}
		points = progress.Points
		return nil
	})
	if err != nil {
		return 0, svc.progressError(err)
	}
	_ = svc.InvalidateLeaderboard(ctx)
	return points, nil
}

func (svc *LedgerService) AdjustXp(ctx context.Context, userID string, delta int) (int, error) {
	if delta < 0 {
		return 0, shared.NewBadRequestError(fmt.Errorf("xp delta %d", delta), "XP can only increase")
	}

	var xp int
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := svc.progressRepo.WithTx(tx)
		rows, err := repo.AddXP(ctx, userID, delta)
		if err != nil {
			return err
		}
		if rows == 0 {
			return gorm.ErrRecordNotFound
		}
		progress, err := repo.GetUserProgress(ctx, userID)
		if err != nil {
			return err
		}
		xp = progress.XP
		return nil
	})
	if err != nil {
		return 0, svc.progressError(err)
	}
	return xp, nil
}

// Refill restores full hearts for the configured point cost. Full hearts is reported
// as a status, not an error.
func (svc *LedgerService) Refill(ctx context.Context, userID string) (*dto.RefillResponse, error) {
	cost := svc.economy.RefillCost

	var progress *model.UserProgress
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := svc.progressRepo.WithTx(tx)
		rows, err := repo.RefillHearts(ctx, userID, cost)
		if err != nil {
			return err
		}
		progress, err = repo.GetUserProgress(ctx, userID)
		if err != nil {
			return err
		}
		if rows == 1 {
			return nil
		}
		switch {
		case progress.Hearts >= shared.MaxHearts:
			return shared.ErrAlreadyFull
		case progress.Points < cost:
			return shared.ErrInsufficientFunds
		}
		return shared.ErrStorageUnavailable.Wrap(errors.New("refill lost a concurrent update"))
	})

	switch {
	case errors.Is(err, shared.ErrAlreadyFull):
		refillsTotal.WithLabelValues("already_full").Inc()
		return &dto.RefillResponse{
			Status: shared.RefillStatusAlreadyFull,
			Hearts: progress.Hearts,
			Points: progress.Points,
		}, nil
	case errors.Is(err, shared.ErrInsufficientFunds):
		refillsTotal.WithLabelValues("insufficient_funds").Inc()
		return nil, shared.ErrInsufficientFunds.WithData(map[string]interface{}{
			"points":      progress.Points,
			"refill_cost": cost,
		})
	case err != nil:
		return nil, svc.progressError(err)
	}

	refillsTotal.WithLabelValues("refilled").Inc()
	log.WithFields(log.Fields{"user_id": userID, "cost": cost}).Info("Hearts refilled")
	_ = svc.InvalidateLeaderboard(ctx)

	return &dto.RefillResponse{
		Status: shared.RefillStatusRefilled,
		Hearts: progress.Hearts,
		Points: progress.Points,
	}, nil
}

// TopUsers ranks learners by points. Results are cached briefly in Redis when available.
func (svc *LedgerService) TopUsers(ctx context.Context) ([]dto.LeaderboardEntry, error) {
	limit := svc.economy.LeaderboardSize
	key := svc.leaderboardKey()

	if svc.redisSvc.Enabled() {
		var cached []dto.LeaderboardEntry
		hit, err := svc.redisSvc.GetJSON(ctx, key, &cached)
		if err != nil {
			log.WithError(err).Warn("Leaderboard cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	v, err, _ := svc.leaderboard.Do(key, func() (interface{}, error) {
		users, err := svc.progressRepo.TopUsers(ctx, limit)
		if err != nil {
			return nil, err
		}

		entries := make([]dto.LeaderboardEntry, 0, len(users))
		for i, u := range users {
			entries = append(entries, dto.LeaderboardEntry{
				Rank:         i + 1,
				UserID:       u.UserID,
				UserName:     u.UserName,
				UserImageSrc: u.UserImageSrc,
				Points:       u.Points,
			})
		}

		if svc.redisSvc.Enabled() {
			if err := svc.redisSvc.SetJSON(ctx, key, entries, leaderboardCacheTTL); err != nil {
				log.WithError(err).Warn("Leaderboard cache write failed")
			}
		}
		return entries, nil
	})
	if err != nil {
		return nil, HandleError(err)
	}
	return v.([]dto.LeaderboardEntry), nil
}

func (svc *LedgerService) leaderboardKey() string {
	return fmt.Sprintf("leaderboard:top:%d", svc.economy.LeaderboardSize)
}

// InvalidateLeaderboard drops the cached ranking after a points change. Safe on a nil
// ledger or without Redis.
func (svc *LedgerService) InvalidateLeaderboard(ctx context.Context) error {
	if svc == nil || !svc.redisSvc.Enabled() {
		return nil
	}
	if err := svc.redisSvc.Delete(ctx, svc.leaderboardKey()); err != nil {
		log.WithError(err).Warn("Leaderboard cache invalidation failed")
		return err
	}
	return nil
}

func (svc *LedgerService) progressError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(err, "User progress not found, select a course first")
	}
	return HandleError(err)
}

func toUserProgressResponse(p *model.UserProgress) *dto.UserProgressResponse {
	resp := &dto.UserProgressResponse{
		UserID:         p.UserID,
		UserName:       p.UserName,
		UserImageSrc:   p.UserImageSrc,
		ActiveCourseID: p.ActiveCourseID,
		Hearts:         p.Hearts,
		MaxHearts:      shared.MaxHearts,
		Points:         p.Points,
		XP:             p.XP,
	}
	if p.ActiveCourse != nil {
		resp.ActiveCourse = toCourseResponse(p.ActiveCourse)
	}
	return resp
}

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	return &dto.CourseResponse{
		ID:       c.ID,
		Title:    c.Title,
		Slug:     c.Slug,
		ImageSrc: c.ImageSrc,
	}
}
