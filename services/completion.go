package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/afinmh/TajweeDo/config"
	"github.com/afinmh/TajweeDo/dto"
	"github.com/afinmh/TajweeDo/services/repositories"
	"github.com/afinmh/TajweeDo/shared"
	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CompletionService applies answers to the economy and progression rows.
type CompletionService struct {
	appContext.DefaultService

	db           *gorm.DB
	economy      config.Economy
	composer     *ComposerService
	ledgerSvc    *LedgerService
	progressRepo *repositories.ProgressRepository
}

const COMPLETION_SVC = "completion_svc"

func (svc CompletionService) Id() string {
	return COMPLETION_SVC
}

func (svc *CompletionService) Start() error {
	svc.db = svc.Service(DATABASE_SVC).(*DatabaseService).Db()
	svc.ledgerSvc = svc.Service(LEDGER_SVC).(*LedgerService)
	svc.economy = svc.ledgerSvc.Economy()
	svc.composer = svc.Service(COMPOSER_SVC).(*ComposerService)
	svc.progressRepo = repositories.NewProgressRepository(svc.db)
	return nil
}

func NewCompletionService(db *gorm.DB, composer *ComposerService, economy config.Economy) *CompletionService {
	return &CompletionService{
		db:           db,
		economy:      economy,
		composer:     composer,
		progressRepo: repositories.NewProgressRepository(db),
	}
}

// SubmitAnswer grades optionID for challengeID inside lessonID and applies the result.
// A non-practice learner with no hearts gets ErrOutOfHearts and nothing changes.
func (svc *CompletionService) SubmitAnswer(ctx context.Context, userID string, lessonID uint, req dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
	composed, err := svc.composer.Compose(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	challenge, idx, ok := composed.Find(req.ChallengeID)
	if !ok {
		return nil, shared.NewBadRequestError(nil, "Challenge is not part of this lesson")
	}
	if _, ok := challenge.Option(req.OptionID); !ok {
		return nil, shared.NewBadRequestError(nil, "Option does not belong to this challenge")
	}
	correctOption, ok := challenge.CorrectOption()
	if !ok {
		dataIntegrityFaultsTotal.WithLabelValues("missing_correct_option").Inc()
		log.WithFields(log.Fields{
			"lesson_id":    lessonID,
			"challenge_id": challenge.ID,
		}).Warn("Challenge has no correct option")
		return nil, shared.ErrDataIntegrity
	}

	correct := correctOption.ID == req.OptionID
	last := idx == len(composed.Challenges)-1

	var resp *dto.SubmitAnswerResponse
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := svc.progressRepo.WithTx(tx)

		progress, err := repo.GetUserProgress(ctx, userID)
		if err != nil {
			return err
		}
		lp, err := repo.GetLessonProgress(ctx, userID, lessonID)
		if err != nil {
			return err
		}
		isPractice := lp != nil && lp.Completed

		if !isPractice && progress.Hearts == 0 {
			resp = &dto.SubmitAnswerResponse{
				Status:     shared.AnswerStatusOutOfHearts,
				Points:     progress.Points,
				IsPractice: isPractice,
			}
			return shared.ErrOutOfHearts
		}

		if correct {
			resp, err = svc.applyCorrect(ctx, repo, userID, composed, challenge.ID, isPractice, last)
		} else {
			resp, err = svc.applyWrong(ctx, repo, userID, isPractice)
		}
		if err != nil {
			return err
		}
		resp.CorrectOptionID = correctOption.ID
		return nil
	})

	switch {
	case errors.Is(err, shared.ErrOutOfHearts):
		answersTotal.WithLabelValues(shared.AnswerStatusOutOfHearts, practiceLabel(false)).Inc()
		return nil, shared.ErrOutOfHearts.WithData(resp)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, shared.NewNotFoundError(err, "User progress not found, select a course first")
	case err != nil:
		return nil, HandleError(err)
	}

	answersTotal.WithLabelValues(resp.Status, practiceLabel(resp.IsPractice)).Inc()
	if resp.Completion != nil {
		lessonsCompletedTotal.WithLabelValues(strconv.FormatBool(!resp.Completion.AlreadyCompleted)).Inc()
	}
	if resp.Status == shared.AnswerStatusCorrect && (resp.IsPractice || (resp.Completion != nil && !resp.Completion.AlreadyCompleted)) {
		_ = svc.ledgerSvc.InvalidateLeaderboard(ctx)
	}
	return resp, nil
}

func (svc *CompletionService) applyWrong(ctx context.Context, repo *repositories.ProgressRepository, userID string, isPractice bool) (*dto.SubmitAnswerResponse, error) {
	var rows int64
	var err error
	if isPractice {
		rows, err = repo.AdjustHearts(ctx, userID, -1)
	} else {
		rows, err = repo.TakeHeart(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	if rows == 0 && !isPractice {
		return nil, shared.ErrOutOfHearts
	}

	progress, err := repo.GetUserProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := shared.AnswerStatusWrong
	if !isPractice && progress.Hearts == 0 {
		status = shared.AnswerStatusOutOfHearts
	}
	return &dto.SubmitAnswerResponse{
		Status:          status,
		HeartsRemaining: progress.Hearts,
		Points:          progress.Points,
		IsPractice:      isPractice,
	}, nil
}

func (svc *CompletionService) applyCorrect(ctx context.Context, repo *repositories.ProgressRepository, userID string, composed *ComposedLesson, challengeID uint, isPractice, last bool) (*dto.SubmitAnswerResponse, error) {
	if isPractice {
		if _, err := repo.RewardPractice(ctx, userID, svc.economy.PracticePoints); err != nil {
			return nil, err
		}
	}
	if !composed.IsPooled {
		if err := repo.MarkChallengeCompleted(ctx, userID, challengeID); err != nil {
			return nil, err
		}
	}

	var completion *dto.LessonCompletionResult
	if last {
		finished := true
		if !composed.IsPooled {
			done, err := repo.CompletedChallenges(ctx, userID, composed.ChallengeIDs())
			if err != nil {
				return nil, err
			}
			finished = len(done) == len(composed.Challenges)
		}
		if finished {
			var err error
			completion, err = svc.completeLesson(ctx, repo, userID, composed)
			if err != nil {
				return nil, err
			}
		}
	}

	progress, err := repo.GetUserProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.SubmitAnswerResponse{
		Status:          shared.AnswerStatusCorrect,
		HeartsRemaining: progress.Hearts,
		Points:          progress.Points,
		IsPractice:      isPractice,
		Completion:      completion,
	}, nil
}

// completeLesson marks the lesson done and pays the award only on the first transition.
func (svc *CompletionService) completeLesson(ctx context.Context, repo *repositories.ProgressRepository, userID string, composed *ComposedLesson) (*dto.LessonCompletionResult, error) {
	lessonID := composed.Lesson.ID
	firstTime, err := repo.MarkLessonCompleted(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	result := &dto.LessonCompletionResult{LessonID: lessonID, AlreadyCompleted: !firstTime}
	if !firstTime {
		return result, nil
	}

	count := len(composed.Challenges)
	result.PointsAwarded = count * svc.economy.PointsPerChallenge
	result.XPAwarded = count * svc.economy.XPPerChallenge

	rows, err := repo.AddPointsAndXP(ctx, userID, result.PointsAwarded, result.XPAwarded)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	log.WithFields(log.Fields{
		"user_id":   userID,
		"lesson_id": lessonID,
		"points":    result.PointsAwarded,
		"xp":        result.XPAwarded,
		"pooled":    composed.IsPooled,
	}).Info("Lesson completed")
	return result, nil
}

// CompleteLessonIfNeeded records completion for lessonID. A non-pooled lesson must have
// every owned challenge answered first; pooled lessons carry no per-challenge rows to check.
func (svc *CompletionService) CompleteLessonIfNeeded(ctx context.Context, userID string, lessonID uint) (*dto.LessonCompletionResult, error) {
	composed, err := svc.composer.Compose(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if len(composed.Challenges) == 0 {
		return nil, shared.NewBadRequestError(nil, "Lesson has no challenges")
	}

	var result *dto.LessonCompletionResult
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := svc.progressRepo.WithTx(tx)

		if _, err := repo.GetUserProgress(ctx, userID); err != nil {
			return err
		}

		if !composed.IsPooled {
			lp, err := repo.GetLessonProgress(ctx, userID, lessonID)
			if err != nil {
				return err
			}
			if lp == nil || !lp.Completed {
				done, err := repo.CompletedChallenges(ctx, userID, composed.ChallengeIDs())
				if err != nil {
					return err
				}
				if len(done) < len(composed.Challenges) {
					return shared.NewBadRequestError(nil, "Lesson has unanswered challenges")
				}
			}
		}

		result, err = svc.completeLesson(ctx, repo, userID, composed)
		return err
	})

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, shared.NewNotFoundError(err, "User progress not found, select a course first")
	case err != nil:
		return nil, HandleError(err)
	}

	lessonsCompletedTotal.WithLabelValues(strconv.FormatBool(!result.AlreadyCompleted)).Inc()
	if !result.AlreadyCompleted {
		_ = svc.ledgerSvc.InvalidateLeaderboard(ctx)
	}
	return result, nil
}
