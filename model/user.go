package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/afinmh/TajweeDo/shared"
)

const (
	DefaultUserName     = "User"
	DefaultUserImageSrc = "/standar.png"
)

// UserProgress is the per-user economy row. It is never deleted.
type UserProgress struct {
	UserID         string    `json:"user_id" gorm:"primaryKey"`
	UserName       string    `json:"user_name" gorm:"not null"`
	UserImageSrc   string    `json:"user_image_src"`
	ActiveCourseID *uint     `json:"active_course_id" gorm:"index"`
	Hearts         int       `json:"hearts" gorm:"not null;check:chk_user_progress_hearts,hearts >= 0 AND hearts <= 5"`
	Points         int       `json:"points" gorm:"not null;default:0;check:chk_user_progress_points,points >= 0"`
	XP             int       `json:"xp" gorm:"not null;default:0;check:chk_user_progress_xp,xp >= 0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	ActiveCourse *Course `json:"active_course,omitempty" gorm:"foreignKey:ActiveCourseID"`
}

// NewUserProgress builds a fresh row with full hearts.
func NewUserProgress(userID, userName, userImageSrc string) (*UserProgress, error) {
	if userName == "" {
		userName = DefaultUserName
	}
	if userImageSrc == "" {
		userImageSrc = DefaultUserImageSrc
	}
	p := &UserProgress{
		UserID:       userID,
		UserName:     userName,
		UserImageSrc: userImageSrc,
		Hearts:       shared.MaxHearts,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *UserProgress) Validate() error {
	switch {
	case p.UserID == "":
		return errors.New("user progress: user id is required")
	case p.Hearts < 0 || p.Hearts > shared.MaxHearts:
		return fmt.Errorf("user progress: hearts %d out of range [0,%d]", p.Hearts, shared.MaxHearts)
	case p.Points < 0:
		return fmt.Errorf("user progress: points %d must not be negative", p.Points)
	case p.XP < 0:
		return fmt.Errorf("user progress: xp %d must not be negative", p.XP)
	}
	return nil
}

type LessonProgress struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;uniqueIndex:idx_lesson_progress_user_lesson"`
	LessonID  uint      `json:"lesson_id" gorm:"not null;uniqueIndex:idx_lesson_progress_user_lesson"`
	Completed bool      `json:"completed" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChallengeProgress struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"not null;uniqueIndex:idx_challenge_progress_user_challenge"`
	ChallengeID uint      `json:"challenge_id" gorm:"not null;uniqueIndex:idx_challenge_progress_user_challenge"`
	Completed   bool      `json:"completed" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
