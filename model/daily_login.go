package model

import "time"

// DailyLoginState tracks the claim cycle for one user. LastLoginDate is a UTC YYYY-MM-DD date.
type DailyLoginState struct {
	UserID        string    `json:"user_id" gorm:"primaryKey"`
	LastLoginDate string    `json:"last_login_date" gorm:"size:10;not null"`
	CurrentStreak int       `json:"current_streak" gorm:"not null;default:0"`
	BestStreak    int       `json:"best_streak" gorm:"not null;default:0"`
	TotalLogins   int       `json:"total_logins" gorm:"not null;default:0"`
	Status        bool      `json:"status" gorm:"not null;default:false"`
	View          bool      `json:"view" gorm:"column:view_dismissed;not null;default:false"`
	ViewDate      string    `json:"view_date" gorm:"size:10"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (DailyLoginState) TableName() string {
	return "user_daily_logins"
}

// ClaimedOn reports whether the reward for date has been taken.
func (s *DailyLoginState) ClaimedOn(date string) bool {
	return s.LastLoginDate == date && s.Status
}
