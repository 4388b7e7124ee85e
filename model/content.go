package model

import "time"

// Course is the top of the curriculum tree.
type Course struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"not null"`
	Slug      string    `json:"slug" gorm:"uniqueIndex"`
	ImageSrc  string    `json:"image_src"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Units []Unit `json:"units,omitempty" gorm:"foreignKey:CourseID"`
}

type Unit struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CourseID    uint      `json:"course_id" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	Order       int       `json:"order" gorm:"column:sort_order;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Lessons []Lesson `json:"lessons,omitempty" gorm:"foreignKey:UnitID"`
}

type Lesson struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UnitID    uint      `json:"unit_id" gorm:"not null;index"`
	Title     string    `json:"title" gorm:"not null"`
	Order     int       `json:"order" gorm:"column:sort_order;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Challenge is owned by one lesson but may also be served by pooled lessons.
type Challenge struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	LessonID  uint      `json:"lesson_id" gorm:"not null;index"`
	Type      string    `json:"type" gorm:"not null"` // SELECT, ASSIST, SOUND
	Question  string    `json:"question" gorm:"type:text;not null"`
	Order     int       `json:"order" gorm:"column:sort_order;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Options []ChallengeOption `json:"options,omitempty" gorm:"foreignKey:ChallengeID"`
}

// CorrectOption returns the option flagged correct, if any.
func (c *Challenge) CorrectOption() (*ChallengeOption, bool) {
	for i := range c.Options {
		if c.Options[i].Correct {
			return &c.Options[i], true
		}
	}
	return nil, false
}

func (c *Challenge) Option(optionID uint) (*ChallengeOption, bool) {
	for i := range c.Options {
		if c.Options[i].ID == optionID {
			return &c.Options[i], true
		}
	}
	return nil, false
}

type ChallengeOption struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	ChallengeID uint    `json:"challenge_id" gorm:"not null;index"`
	Text        string  `json:"text" gorm:"not null"`
	Correct     bool    `json:"correct" gorm:"default:false"`
	ImageSrc    *string `json:"image_src"`
	AudioSrc    *string `json:"audio_src"`
}
