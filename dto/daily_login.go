package dto

import "github.com/afinmh/TajweeDo/config"

// ==================== DAILY LOGIN DTOs ====================

type ClaimDailyLoginResponse struct {
	Status        string              `json:"status"` // claimed, already_claimed
	Day           int                 `json:"day"`
	Reward        *config.DailyReward `json:"reward"`
	ItemGranted   bool                `json:"item_granted"`
	CurrentStreak int                 `json:"current_streak"`
	BestStreak    int                 `json:"best_streak"`
	TotalLogins   int                 `json:"total_logins"`
}

type DailyLoginStateResponse struct {
	ShowPrompt    bool                `json:"show"`
	ClaimedToday  bool                `json:"status"`
	View          bool                `json:"view"`
	LastLoginDate string              `json:"last_login_date"`
	CurrentStreak int                 `json:"current_streak"`
	BestStreak    int                 `json:"best_streak"`
	TotalLogins   int                 `json:"total_logins"`
	Day           int                 `json:"day"`
	Reward        *config.DailyReward `json:"reward"`
}

type DailyLoginOverviewResponse struct {
	Rewards []config.DailyReward     `json:"rewards"`
	State   *DailyLoginStateResponse `json:"state,omitempty"`
}

type UpdateDailyLoginViewRequest struct {
	View *bool `json:"view" validate:"required"`
}

func (r UpdateDailyLoginViewRequest) Validate() error {
	return GetValidator().Struct(r)
}
