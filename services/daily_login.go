package services

import (
	"context"
	"errors"
	"time"

	"github.com/afinmh/TajweeDo/config"
	"github.com/afinmh/TajweeDo/dto"
	"github.com/afinmh/TajweeDo/model"
	"github.com/afinmh/TajweeDo/services/repositories"
	"github.com/afinmh/TajweeDo/shared"
	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DailyLoginService runs the once-per-UTC-day claim cycle over the 30 slot reward table.
type DailyLoginService struct {
	appContext.DefaultService

	db           *gorm.DB
	curriculum   *config.Curriculum
	store        *StoreService
	ledgerSvc    *LedgerService
	loginRepo    *repositories.DailyLoginRepository
	progressRepo *repositories.ProgressRepository
	now          func() time.Time
}

const DAILY_LOGIN_SVC = "daily_login_svc"

func (svc DailyLoginService) Id() string {
	return DAILY_LOGIN_SVC
}

func (svc *DailyLoginService) Start() error {
	svc.init(
		svc.Service(DATABASE_SVC).(*DatabaseService).Db(),
		svc.Service(COMPOSER_SVC).(*ComposerService).Curriculum(),
		svc.Service(STORE_SVC).(*StoreService),
		time.Now,
	)
	svc.ledgerSvc = svc.Service(LEDGER_SVC).(*LedgerService)
	return nil
}

func NewDailyLoginService(db *gorm.DB, curriculum *config.Curriculum, store *StoreService, now func() time.Time) *DailyLoginService {
	svc := &DailyLoginService{}
	svc.init(db, curriculum, store, now)
	return svc
}

func (svc *DailyLoginService) init(db *gorm.DB, curriculum *config.Curriculum, store *StoreService, now func() time.Time) {
	svc.db = db
	svc.curriculum = curriculum
	svc.store = store
	svc.loginRepo = repositories.NewDailyLoginRepository(db)
	svc.progressRepo = repositories.NewProgressRepository(db)
	svc.now = now
}

func (svc *DailyLoginService) days() (today, yesterday string) {
	t := svc.now().UTC()
	return t.Format(shared.DateLayout), t.AddDate(0, 0, -1).Format(shared.DateLayout)
}

func (svc *DailyLoginService) Rewards() []config.DailyReward {
	return svc.curriculum.Rewards()
}

func initialLoginState(userID, yesterday string) *model.DailyLoginState {
	return &model.DailyLoginState{
		UserID:        userID,
		LastLoginDate: yesterday,
	}
}

// loadOrInit returns the user's row, creating the never-claimed row when missing.
func (svc *DailyLoginService) loadOrInit(ctx context.Context, repo *repositories.DailyLoginRepository, userID, yesterday string) (*model.DailyLoginState, error) {
	state, err := repo.Get(ctx, userID)
	if err != nil || state != nil {
		return state, err
	}
	if _, err := repo.CreateIfMissing(ctx, initialLoginState(userID, yesterday)); err != nil {
		return nil, err
	}
	state, err = repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return state, nil
}

func (svc *DailyLoginService) alreadyClaimed(state *model.DailyLoginState) *dto.ClaimDailyLoginResponse {
	day := config.DayIndex(state.TotalLogins)
	reward := svc.curriculum.Reward(day)
	return &dto.ClaimDailyLoginResponse{
		Status:        shared.ClaimStatusAlreadyClaimed,
		Day:           day,
		Reward:        &reward,
		CurrentStreak: state.CurrentStreak,
		BestStreak:    state.BestStreak,
		TotalLogins:   state.TotalLogins,
	}
}

// Claim takes today's reward. A second claim on the same day returns already_claimed and
// credits nothing.
func (svc *DailyLoginService) Claim(ctx context.Context, userID string) (*dto.ClaimDailyLoginResponse, error) {
	today, yesterday := svc.days()

	var resp *dto.ClaimDailyLoginResponse
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loginRepo := svc.loginRepo.WithTx(tx)
		progressRepo := svc.progressRepo.WithTx(tx)

		progress, err := model.NewUserProgress(userID, "", "")
		if err != nil {
			return shared.NewBadRequestError(err, "Invalid user")
		}
		if _, err := progressRepo.CreateUserProgress(ctx, progress); err != nil {
			return err
		}

		state, err := svc.loadOrInit(ctx, loginRepo, userID, yesterday)
		if err != nil {
			return err
		}
		if state.ClaimedOn(today) {
			resp = svc.alreadyClaimed(state)
			return nil
		}

		next := *state
		next.LastLoginDate = today
		next.CurrentStreak = 1
		if state.LastLoginDate == yesterday {
			next.CurrentStreak = state.CurrentStreak + 1
		}
		if next.CurrentStreak > state.BestStreak {
			next.BestStreak = next.CurrentStreak
		}
		next.TotalLogins = state.TotalLogins + 1

		rows, err := loginRepo.CompareAndClaim(ctx, state.TotalLogins, &next)
		if err != nil {
			return err
		}
		if rows == 0 {
			return shared.ErrAlreadyClaimed
		}

		day := config.DayIndex(next.TotalLogins)
		reward := svc.curriculum.Reward(day)

		if reward.Points > 0 {
			if _, err := progressRepo.AddPoints(ctx, userID, reward.Points); err != nil {
				return err
			}
		}
		granted := false
		if reward.HasItem() {
			granted, err = svc.store.GrantItem(ctx, tx, userID, *reward.ItemID, model.PurchaseSourceDailyLogin)
			if err != nil {
				return err
			}
		}

		resp = &dto.ClaimDailyLoginResponse{
			Status:        shared.ClaimStatusClaimed,
			Day:           day,
			Reward:        &reward,
			ItemGranted:   granted,
			CurrentStreak: next.CurrentStreak,
			BestStreak:    next.BestStreak,
			TotalLogins:   next.TotalLogins,
		}
		return nil
	})

	if errors.Is(err, shared.ErrAlreadyClaimed) {
		// lost the race to a concurrent claim; report what it stored
		state, rerr := svc.loginRepo.Get(ctx, userID)
		if rerr != nil {
			return nil, HandleError(rerr)
		}
		if state == nil {
			return nil, HandleError(gorm.ErrRecordNotFound)
		}
		resp, err = svc.alreadyClaimed(state), nil
	}
	if err != nil {
		return nil, HandleError(err)
	}

	dailyClaimsTotal.WithLabelValues(resp.Status).Inc()
	if resp.Status == shared.ClaimStatusClaimed {
		_ = svc.ledgerSvc.InvalidateLeaderboard(ctx)
		log.WithFields(log.Fields{
			"user_id":      userID,
			"day":          resp.Day,
			"streak":       resp.CurrentStreak,
			"total_logins": resp.TotalLogins,
		}).Info("Daily login claimed")
	}
	return resp, nil
}

// GetState reports the prompt state for today. Flags left from an earlier day are reset
// here, on read.
func (svc *DailyLoginService) GetState(ctx context.Context, userID string) (*dto.DailyLoginStateResponse, error) {
	today, yesterday := svc.days()

	state, err := svc.loadOrInit(ctx, svc.loginRepo, userID, yesterday)
	if err != nil {
		return nil, HandleError(err)
	}

	rows, err := svc.loginRepo.ResetForNewDay(ctx, userID, today)
	if err != nil {
		return nil, HandleError(err)
	}
	if rows > 0 {
		if state, err = svc.loginRepo.Get(ctx, userID); err != nil {
			return nil, HandleError(err)
		}
	}

	claimed := state.ClaimedOn(today)
	day := config.DayIndex(state.TotalLogins + 1)
	if claimed {
		day = config.DayIndex(state.TotalLogins)
	}
	reward := svc.curriculum.Reward(day)

	return &dto.DailyLoginStateResponse{
		ShowPrompt:    !claimed && !state.View,
		ClaimedToday:  claimed,
		View:          state.View,
		LastLoginDate: state.LastLoginDate,
		CurrentStreak: state.CurrentStreak,
		BestStreak:    state.BestStreak,
		TotalLogins:   state.TotalLogins,
		Day:           day,
		Reward:        &reward,
	}, nil
}

// GetOverview returns the reward table, plus the caller's state when userID is set.
func (svc *DailyLoginService) GetOverview(ctx context.Context, userID string) (*dto.DailyLoginOverviewResponse, error) {
	resp := &dto.DailyLoginOverviewResponse{Rewards: svc.Rewards()}
	if userID == "" {
		return resp, nil
	}
	state, err := svc.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp.State = state
	return resp, nil
}

// SetView records whether the prompt was dismissed today.
func (svc *DailyLoginService) SetView(ctx context.Context, userID string, view bool) (*dto.DailyLoginStateResponse, error) {
	today, yesterday := svc.days()

	if _, err := svc.loadOrInit(ctx, svc.loginRepo, userID, yesterday); err != nil {
		return nil, HandleError(err)
	}
	if _, err := svc.loginRepo.SetView(ctx, userID, view, today); err != nil {
		return nil, HandleError(err)
	}
	return svc.GetState(ctx, userID)
}
