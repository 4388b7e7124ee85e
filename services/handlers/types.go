package handlers

import (
	"context"

	"github.com/afinmh/TajweeDo/dto"
)

type LedgerServiceInterface interface {
	ListCourses(ctx context.Context) ([]dto.CourseResponse, error)
	SelectCourse(ctx context.Context, userID string, req dto.SelectCourseRequest) (*dto.UserProgressResponse, error)
	GetUserProgress(ctx context.Context, userID string) (*dto.UserProgressResponse, error)
	Refill(ctx context.Context, userID string) (*dto.RefillResponse, error)
	TopUsers(ctx context.Context) ([]dto.LeaderboardEntry, error)
}

type ProgressServiceInterface interface {
	GetUnits(ctx context.Context, userID string, courseID uint) ([]dto.UnitResponse, error)
	GetActiveLesson(ctx context.Context, userID string, courseID uint) (*dto.ActiveLessonResponse, error)
	GetLessonView(ctx context.Context, userID string, lessonID uint) (*dto.LessonResponse, error)
	GetLessonPercentage(ctx context.Context, userID string, lessonID uint) (int, error)
	IsLessonCompleted(ctx context.Context, userID string, lessonID uint) (bool, error)
}

type CompletionServiceInterface interface {
	SubmitAnswer(ctx context.Context, userID string, lessonID uint, req dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error)
	CompleteLessonIfNeeded(ctx context.Context, userID string, lessonID uint) (*dto.LessonCompletionResult, error)
}

type DailyLoginServiceInterface interface {
	GetOverview(ctx context.Context, userID string) (*dto.DailyLoginOverviewResponse, error)
	Claim(ctx context.Context, userID string) (*dto.ClaimDailyLoginResponse, error)
	SetView(ctx context.Context, userID string, view bool) (*dto.DailyLoginStateResponse, error)
}

type StoreServiceInterface interface {
	ListItems(ctx context.Context, userID string) ([]dto.StoreItemResponse, error)
	Purchase(ctx context.Context, userID string, req dto.PurchaseRequest) (*dto.PurchaseResponse, error)
}
