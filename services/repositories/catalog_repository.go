package repositories

import (
	"context"

	"github.com/afinmh/TajweeDo/model"
	"gorm.io/gorm"
)

// CatalogRepository reads the curriculum tree. The core never writes it.
type CatalogRepository struct {
	BaseRepository
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func orderedOptions(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (ds *CatalogRepository) ListCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	if err := ds.conn(ctx).Order("id ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (ds *CatalogRepository) GetCourse(ctx context.Context, courseID uint) (*model.Course, error) {
	var course model.Course
	if err := ds.conn(ctx).Where("id = ?", courseID).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// ListUnitsWithLessons returns units in unit order, each with lessons in lesson order.
func (ds *CatalogRepository) ListUnitsWithLessons(ctx context.Context, courseID uint) ([]model.Unit, error) {
	var units []model.Unit
	err := ds.conn(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Where("course_id = ?", courseID).
		Order("sort_order ASC, id ASC").
		Find(&units).Error
	if err != nil {
		return nil, err
	}
	return units, nil
}

func (ds *CatalogRepository) CountLessons(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := ds.conn(ctx).Model(&model.Lesson{}).
		Joins("JOIN units ON units.id = lessons.unit_id").
		Where("units.course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (ds *CatalogRepository) GetLesson(ctx context.Context, lessonID uint) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := ds.conn(ctx).Where("id = ?", lessonID).First(&lesson).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListChallenges returns the challenges owned by lessonID in their authored order.
func (ds *CatalogRepository) ListChallenges(ctx context.Context, lessonID uint) ([]model.Challenge, error) {
	var challenges []model.Challenge
	err := ds.conn(ctx).
		Preload("Options", orderedOptions).
		Where("lesson_id = ?", lessonID).
		Order("sort_order ASC, id ASC").
		Find(&challenges).Error
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

// GetChallengesByIDs makes no ordering promise; callers re-order.
func (ds *CatalogRepository) GetChallengesByIDs(ctx context.Context, ids []uint) ([]model.Challenge, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var challenges []model.Challenge
	err := ds.conn(ctx).
		Preload("Options", orderedOptions).
		Where("id IN ?", ids).
		Find(&challenges).Error
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

// ListOwnedChallengeIDs groups owned challenge ids by lesson.
func (ds *CatalogRepository) ListOwnedChallengeIDs(ctx context.Context, lessonIDs []uint) (map[uint][]uint, error) {
	byLesson := make(map[uint][]uint, len(lessonIDs))
	if len(lessonIDs) == 0 {
		return byLesson, nil
	}

	var rows []struct {
		ID       uint
		LessonID uint
	}
	err := ds.conn(ctx).Model(&model.Challenge{}).
		Select("id, lesson_id").
		Where("lesson_id IN ?", lessonIDs).
		Order("sort_order ASC, id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		byLesson[r.LessonID] = append(byLesson[r.LessonID], r.ID)
	}
	return byLesson, nil
}
