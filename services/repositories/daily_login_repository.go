package repositories

import (
	"context"
	"errors"

	"github.com/afinmh/TajweeDo/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DailyLoginRepository struct {
	BaseRepository
}

func NewDailyLoginRepository(db *gorm.DB) *DailyLoginRepository {
	return &DailyLoginRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *DailyLoginRepository) WithTx(tx *gorm.DB) *DailyLoginRepository {
	return NewDailyLoginRepository(tx)
}

// Get returns nil without error when the user has no row yet.
func (ds *DailyLoginRepository) Get(ctx context.Context, userID string) (*model.DailyLoginState, error) {
	var state model.DailyLoginState
	err := ds.conn(ctx).Where("user_id = ?", userID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (ds *DailyLoginRepository) CreateIfMissing(ctx context.Context, state *model.DailyLoginState) (bool, error) {
	res := ds.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(state)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ResetForNewDay clears a claimed flag left from an earlier day and a prompt dismissal
// made on an earlier day.
func (ds *DailyLoginRepository) ResetForNewDay(ctx context.Context, userID, today string) (int64, error) {
	res := ds.conn(ctx).Model(&model.DailyLoginState{}).
		Where("user_id = ?", userID).
		Where("(last_login_date <> ? AND status = ?) OR (view_dismissed = ? AND (view_date IS NULL OR view_date <> ?))", today, true, true, today).
		Updates(map[string]interface{}{
			"status":         gorm.Expr("CASE WHEN last_login_date <> ? THEN ? ELSE status END", today, false),
			"view_dismissed": gorm.Expr("CASE WHEN view_date IS NULL OR view_date <> ? THEN ? ELSE view_dismissed END", today, false),
		})
	return res.RowsAffected, res.Error
}

func (ds *DailyLoginRepository) SetView(ctx context.Context, userID string, view bool, today string) (int64, error) {
	res := ds.conn(ctx).Model(&model.DailyLoginState{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"view_dismissed": view,
			"view_date":      today,
		})
	return res.RowsAffected, res.Error
}

// CompareAndClaim writes next only if total_logins still equals expectedTotal and the
// reward for next.LastLoginDate has not been taken.
func (ds *DailyLoginRepository) CompareAndClaim(ctx context.Context, expectedTotal int, next *model.DailyLoginState) (int64, error) {
	res := ds.conn(ctx).Model(&model.DailyLoginState{}).
		Where("user_id = ? AND total_logins = ?", next.UserID, expectedTotal).
		Where("NOT (last_login_date = ? AND status = ?)", next.LastLoginDate, true).
		Updates(map[string]interface{}{
			"last_login_date": next.LastLoginDate,
			"current_streak":  next.CurrentStreak,
			"best_streak":     next.BestStreak,
			"total_logins":    next.TotalLogins,
			"status":          true,
		})
	return res.RowsAffected, res.Error
}
