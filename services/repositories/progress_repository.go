package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/afinmh/TajweeDo/model"
	"github.com/afinmh/TajweeDo/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressRepository owns the economy row and the lesson/challenge completion rows.
// Every mutation is a single conditional statement so concurrent requests for one
// user cannot lose updates.
type ProgressRepository struct {
	BaseRepository
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return NewProgressRepository(tx)
}

// ==================== USER PROGRESS METHODS ====================

func (ds *ProgressRepository) GetUserProgress(ctx context.Context, userID string) (*model.UserProgress, error) {
	var progress model.UserProgress
	if err := ds.conn(ctx).Where("user_id = ?", userID).First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (ds *ProgressRepository) GetUserProgressWithCourse(ctx context.Context, userID string) (*model.UserProgress, error) {
	var progress model.UserProgress
	if err := ds.conn(ctx).Preload("ActiveCourse").Where("user_id = ?", userID).First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// CreateUserProgress inserts the row unless one exists. Returns true when it was created.
func (ds *ProgressRepository) CreateUserProgress(ctx context.Context, progress *model.UserProgress) (bool, error) {
	if err := progress.Validate(); err != nil {
		return false, err
	}
	res := ds.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(progress)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (ds *ProgressRepository) SetActiveCourse(ctx context.Context, userID string, courseID uint, userName, userImageSrc string) error {
	updates := map[string]interface{}{
		"active_course_id": courseID,
	}
	if userName != "" {
		updates["user_name"] = userName
	}
	if userImageSrc != "" {
		updates["user_image_src"] = userImageSrc
	}
	return ds.updateRow(ctx, userID, updates)
}

func (ds *ProgressRepository) SetUserImage(ctx context.Context, userID, imageSrc string) error {
	return ds.updateRow(ctx, userID, map[string]interface{}{"user_image_src": imageSrc})
}

func (ds *ProgressRepository) updateRow(ctx context.Context, userID string, updates map[string]interface{}) error {
	res := ds.conn(ctx).Model(&model.UserProgress{}).Where("user_id = ?", userID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AdjustHearts adds delta and clamps the stored value to [0, MaxHearts] in the same statement.
func (ds *ProgressRepository) AdjustHearts(ctx context.Context, userID string, delta int) (int64, error) {
	expr := gorm.Expr(
		"CASE WHEN hearts + ? > ? THEN ? WHEN hearts + ? < 0 THEN 0 ELSE hearts + ? END",
		delta, shared.MaxHearts, shared.MaxHearts, delta, delta,
	)
	res := ds.conn(ctx).Model(&model.UserProgress{}).
		Where("user_id = ?", userID).
		Update("hearts", expr)
	return res.RowsAffected, res.Error
}

// TakeHeart decrements only when a heart is left. Zero rows means the user had none (or no row).
func (ds *ProgressRepository) TakeHeart(ctx context.Context, userID string) (int64, error) {
	res := ds.conn(ctx).Model(&model.UserProgress{}).
		Where("user_id = ? AND hearts > 0", userID).
		Update("hearts", gorm.Expr("hearts - 1"))
	return res.RowsAffected, res.Error
}

// AddPoints applies delta; a negative delta only applies when the balance covers it.
func (ds *ProgressRepository) AddPoints(ctx context.Context, userID string, delta int) (int64, error) {
	q := ds.conn(ctx).Model(&model.UserProgress{}).Where("user_id = ?", userID)
	if delta < 0 {
		q = q.Where("points >= ?", -delta)
	}
	res := q.Update("points", gorm.Expr("points + ?", delta))
	return res.RowsAffected, res.Error
}

func (ds *ProgressRepository) AddXP(ctx context.Context, userID string, delta int) (int64, error) {
	res := ds.conn(ctx).Model(&model.UserProgress{}).
		Where("user_id = ?", userID).
		Update("xp", gorm.Expr("xp + ?", delta))
	return res.RowsAffected, res.Error
}

func (ds *ProgressRepository) AddPointsAndXP(ctx context.Context, userID string, points, xp int) (int64, error) {
	res := ds.conn(ctx).Model(&model.UserProgress{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"points": gorm.Expr("points + ?", points),
			"xp":     gorm.Expr("xp + ?", xp),
		})
	return res.RowsAffected, res.Error
}

// RewardPractice restores one heart (clamped) and credits points in one statement.
func (ds *ProgressRepository) RewardPractice(ctx context.Context, userID string, points int) (int64, error) {
	res := ds.conn(ctx).Model(&model.UserProgress{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"hearts": gorm.Expr("CASE WHEN hearts + 1 > ? THEN ? ELSE hearts + 1 END", shared.MaxHearts, shared.MaxHearts),
			"points": gorm.Expr("points + ?", points),
		})
	return res.RowsAffected, res.Error
}

// RefillHearts sets full hearts and charges cost only if hearts are missing and points cover it.
func (ds *ProgressRepository) RefillHearts(ctx context.Context, userID string, cost int) (int64, error) {
	res := ds.conn(ctx).Model(&model.UserProgress{}).
		Where("user_id = ? AND hearts < ? AND points >= ?", userID, shared.MaxHearts, cost).
		Updates(map[string]interface{}{
			"hearts": shared.MaxHearts,
			"points": gorm.Expr("points - ?", cost),
		})
	return res.RowsAffected, res.Error
}

func (ds *ProgressRepository) TopUsers(ctx context.Context, limit int) ([]model.UserProgress, error) {
	var users []model.UserProgress
	err := ds.conn(ctx).
		Order("points DESC, user_id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (ds *ProgressRepository) CountOutOfHearts(ctx context.Context) (int64, error) {
	var count int64
	err := ds.conn(ctx).Model(&model.UserProgress{}).Where("hearts = 0").Count(&count).Error
	return count, err
}

// ==================== LESSON PROGRESS METHODS ====================

// GetLessonProgress returns nil without error when no row exists.
func (ds *ProgressRepository) GetLessonProgress(ctx context.Context, userID string, lessonID uint) (*model.LessonProgress, error) {
	var progress model.LessonProgress
	err := ds.conn(ctx).Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (ds *ProgressRepository) ListLessonProgress(ctx context.Context, userID string, lessonIDs []uint) ([]model.LessonProgress, error) {
	if len(lessonIDs) == 0 {
		return nil, nil
	}
	var rows []model.LessonProgress
	err := ds.conn(ctx).Where("user_id = ? AND lesson_id IN ?", userID, lessonIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkLessonCompleted upserts the row to completed and reports whether this call
// performed the false→true transition.
func (ds *ProgressRepository) MarkLessonCompleted(ctx context.Context, userID string, lessonID uint) (bool, error) {
	res := ds.conn(ctx).Model(&model.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ? AND completed = ?", userID, lessonID, false).
		Update("completed", true)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	id, err := newID()
	if err != nil {
		return false, err
	}
	res = ds.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model.LessonProgress{
		ID:        id,
		UserID:    userID,
		LessonID:  lessonID,
		Completed: true,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ==================== CHALLENGE PROGRESS METHODS ====================

func (ds *ProgressRepository) MarkChallengeCompleted(ctx context.Context, userID string, challengeID uint) error {
	id, err := newID()
	if err != nil {
		return err
	}
	return ds.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "challenge_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"completed":  true,
			"updated_at": time.Now(),
		}),
	}).Create(&model.ChallengeProgress{
		ID:          id,
		UserID:      userID,
		ChallengeID: challengeID,
		Completed:   true,
	}).Error
}

// CompletedChallenges returns the subset of challengeIDs the user has completed.
func (ds *ProgressRepository) CompletedChallenges(ctx context.Context, userID string, challengeIDs []uint) (map[uint]bool, error) {
	done := make(map[uint]bool, len(challengeIDs))
	if len(challengeIDs) == 0 {
		return done, nil
	}

	var ids []uint
	err := ds.conn(ctx).Model(&model.ChallengeProgress{}).
		Where("user_id = ? AND challenge_id IN ? AND completed = ?", userID, challengeIDs, true).
		Pluck("challenge_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		done[id] = true
	}
	return done, nil
}
