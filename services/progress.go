package services

import (
	"context"
	"errors"
	"math"

	"github.com/afinmh/TajweeDo/dto"
	"github.com/afinmh/TajweeDo/model"
	"github.com/afinmh/TajweeDo/services/repositories"
	"github.com/afinmh/TajweeDo/shared"
	appContext "github.com/alphabatem/common/context"
	"gorm.io/gorm"
)

// ProgressService answers where a learner stands in a course. It only reads.
type ProgressService struct {
	appContext.DefaultService

	composer     *ComposerService
	catalogRepo  *repositories.CatalogRepository
	progressRepo *repositories.ProgressRepository
}

const PROGRESS_SVC = "progress_svc"

func (svc ProgressService) Id() string {
	return PROGRESS_SVC
}

func (svc *ProgressService) Start() error {
	db := svc.Service(DATABASE_SVC).(*DatabaseService).Db()
	svc.composer = svc.Service(COMPOSER_SVC).(*ComposerService)
	svc.catalogRepo = repositories.NewCatalogRepository(db)
	svc.progressRepo = repositories.NewProgressRepository(db)
	return nil
}

func NewProgressService(db *gorm.DB, composer *ComposerService) *ProgressService {
	return &ProgressService{
		composer:     composer,
		catalogRepo:  repositories.NewCatalogRepository(db),
		progressRepo: repositories.NewProgressRepository(db),
	}
}

// courseCompletion resolves a completed flag for every lesson in units.
// LessonProgress rows win whenever the user has any for the course; otherwise a
// non-pooled lesson counts as done when all its owned challenges are completed.
func (svc *ProgressService) courseCompletion(ctx context.Context, userID string, units []model.Unit) (map[uint]bool, error) {
	var lessonIDs []uint
	for _, u := range units {
		for _, l := range u.Lessons {
			lessonIDs = append(lessonIDs, l.ID)
		}
	}

	completed := make(map[uint]bool, len(lessonIDs))
	rows, err := svc.progressRepo.ListLessonProgress(ctx, userID, lessonIDs)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		for _, r := range rows {
			if r.Completed {
				completed[r.LessonID] = true
			}
		}
		return completed, nil
	}

	var owned []uint
	for _, id := range lessonIDs {
		if !svc.composer.IsPooled(id) {
			owned = append(owned, id)
		}
	}
	byLesson, err := svc.catalogRepo.ListOwnedChallengeIDs(ctx, owned)
	if err != nil {
		return nil, err
	}

	var all []uint
	for _, ids := range byLesson {
		all = append(all, ids...)
	}
	done, err := svc.progressRepo.CompletedChallenges(ctx, userID, all)
	if err != nil {
		return nil, err
	}

	for lessonID, ids := range byLesson {
		completed[lessonID] = allDone(ids, done)
	}
	return completed, nil
}

func allDone(ids []uint, done map[uint]bool) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !done[id] {
			return false
		}
	}
	return true
}

func (svc *ProgressService) loadCourse(ctx context.Context, courseID uint) ([]model.Unit, error) {
	if _, err := svc.catalogRepo.GetCourse(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Course not found")
		}
		return nil, HandleError(err)
	}
	units, err := svc.catalogRepo.ListUnitsWithLessons(ctx, courseID)
	if err != nil {
		return nil, HandleError(err)
	}
	return units, nil
}

func (svc *ProgressService) GetUnits(ctx context.Context, userID string, courseID uint) ([]dto.UnitResponse, error) {
	units, err := svc.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	completed, err := svc.courseCompletion(ctx, userID, units)
	if err != nil {
		return nil, HandleError(err)
	}

	resp := make([]dto.UnitResponse, 0, len(units))
	for _, u := range units {
		lessons := make([]dto.LessonSummary, 0, len(u.Lessons))
		for _, l := range u.Lessons {
			lessons = append(lessons, toLessonSummary(l, completed[l.ID]))
		}
		resp = append(resp, dto.UnitResponse{
			ID:          u.ID,
			Title:       u.Title,
			Description: u.Description,
			Order:       u.Order,
			Lessons:     lessons,
		})
	}
	return resp, nil
}

// GetActiveLesson returns the first incomplete lesson in unit then lesson order, or the
// first lesson of the course when everything is complete.
func (svc *ProgressService) GetActiveLesson(ctx context.Context, userID string, courseID uint) (*dto.ActiveLessonResponse, error) {
	units, err := svc.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	completed, err := svc.courseCompletion(ctx, userID, units)
	if err != nil {
		return nil, HandleError(err)
	}

	var first *dto.LessonSummary
	for _, u := range units {
		for _, l := range u.Lessons {
			summary := toLessonSummary(l, completed[l.ID])
			if first == nil {
				first = &summary
			}
			if !summary.Completed {
				return &dto.ActiveLessonResponse{CourseID: courseID, ActiveLesson: &summary}, nil
			}
		}
	}
	if first == nil {
		return nil, shared.NewNotFoundError(nil, "Course has no lessons")
	}
	return &dto.ActiveLessonResponse{CourseID: courseID, ActiveLesson: first, AllCompleted: true}, nil
}

func (svc *ProgressService) IsLessonCompleted(ctx context.Context, userID string, lessonID uint) (bool, error) {
	if _, err := svc.composer.Lesson(ctx, lessonID); err != nil {
		return false, err
	}
	completed, err := svc.lessonCompleted(ctx, userID, lessonID)
	if err != nil {
		return false, HandleError(err)
	}
	return completed, nil
}

func (svc *ProgressService) lessonCompleted(ctx context.Context, userID string, lessonID uint) (bool, error) {
	row, err := svc.progressRepo.GetLessonProgress(ctx, userID, lessonID)
	if err != nil {
		return false, err
	}
	if row != nil && row.Completed {
		return true, nil
	}
	if svc.composer.IsPooled(lessonID) {
		return false, nil
	}

	byLesson, err := svc.catalogRepo.ListOwnedChallengeIDs(ctx, []uint{lessonID})
	if err != nil {
		return false, err
	}
	ids := byLesson[lessonID]
	done, err := svc.progressRepo.CompletedChallenges(ctx, userID, ids)
	if err != nil {
		return false, err
	}
	return allDone(ids, done), nil
}

func (svc *ProgressService) GetLessonPercentage(ctx context.Context, userID string, lessonID uint) (int, error) {
	if _, err := svc.composer.Lesson(ctx, lessonID); err != nil {
		return 0, err
	}
	pct, err := svc.lessonPercentage(ctx, userID, lessonID)
	if err != nil {
		return 0, HandleError(err)
	}
	return pct, nil
}

func (svc *ProgressService) lessonPercentage(ctx context.Context, userID string, lessonID uint) (int, error) {
	row, err := svc.progressRepo.GetLessonProgress(ctx, userID, lessonID)
	if err != nil {
		return 0, err
	}
	if row != nil && row.Completed {
		return 100, nil
	}
	if svc.composer.IsPooled(lessonID) {
		return 0, nil
	}

	byLesson, err := svc.catalogRepo.ListOwnedChallengeIDs(ctx, []uint{lessonID})
	if err != nil {
		return 0, err
	}
	ids := byLesson[lessonID]
	done, err := svc.progressRepo.CompletedChallenges(ctx, userID, ids)
	if err != nil {
		return 0, err
	}
	return percentOf(len(done), len(ids)), nil
}

func percentOf(done, total int) int {
	if total == 0 || done == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// GetLessonView composes the lesson with per-challenge completion for the user.
func (svc *ProgressService) GetLessonView(ctx context.Context, userID string, lessonID uint) (*dto.LessonResponse, error) {
	composed, err := svc.composer.Compose(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	row, err := svc.progressRepo.GetLessonProgress(ctx, userID, lessonID)
	if err != nil {
		return nil, HandleError(err)
	}
	isPractice := row != nil && row.Completed

	done := map[uint]bool{}
	if !composed.IsPooled && !isPractice {
		done, err = svc.progressRepo.CompletedChallenges(ctx, userID, composed.ChallengeIDs())
		if err != nil {
			return nil, HandleError(err)
		}
	}

	percentage := 0
	switch {
	case isPractice:
		percentage = 100
	case !composed.IsPooled:
		percentage = percentOf(len(done), len(composed.Challenges))
	}

	challenges := make([]dto.ChallengeResponse, 0, len(composed.Challenges))
	for _, ch := range composed.Challenges {
		challenges = append(challenges, toChallengeResponse(ch, done[ch.ID]))
	}

	return &dto.LessonResponse{
		ID:         composed.Lesson.ID,
		Title:      composed.Lesson.Title,
		UnitID:     composed.Lesson.UnitID,
		IsPooled:   composed.IsPooled,
		IsPractice: isPractice,
		Percentage: percentage,
		Challenges: challenges,
	}, nil
}

func toLessonSummary(l model.Lesson, completed bool) dto.LessonSummary {
	return dto.LessonSummary{
		ID:        l.ID,
		Title:     l.Title,
		Order:     l.Order,
		UnitID:    l.UnitID,
		Completed: completed,
	}
}

func toChallengeResponse(ch model.Challenge, completed bool) dto.ChallengeResponse {
	options := make([]dto.ChallengeOptionResponse, 0, len(ch.Options))
	for _, o := range ch.Options {
		options = append(options, dto.ChallengeOptionResponse{
			ID:       o.ID,
			Text:     o.Text,
			Correct:  o.Correct,
			ImageSrc: o.ImageSrc,
			AudioSrc: o.AudioSrc,
		})
	}
	return dto.ChallengeResponse{
		ID:        ch.ID,
		Type:      ch.Type,
		Question:  ch.Question,
		Order:     ch.Order,
		Completed: completed,
		Options:   options,
	}
}
