package dto

// ==================== LEARN DTOs ====================

type SubmitAnswerRequest struct {
	ChallengeID uint `json:"challenge_id" validate:"required,gt=0"`
	OptionID    uint `json:"option_id" validate:"required,gt=0"`
}

func (r SubmitAnswerRequest) Validate() error {
	return GetValidator().Struct(r)
}

type SubmitAnswerResponse struct {
	Status          string                  `json:"status"` // correct, wrong, outOfHearts
	HeartsRemaining int                     `json:"hearts_remaining"`
	Points          int                     `json:"points"`
	IsPractice      bool                    `json:"is_practice"`
	CorrectOptionID uint                    `json:"correct_option_id,omitempty"`
	Completion      *LessonCompletionResult `json:"completion,omitempty"`
}

type LessonCompletionResult struct {
	LessonID         uint `json:"lesson_id"`
	PointsAwarded    int  `json:"points_awarded"`
	XPAwarded        int  `json:"xp_awarded"`
	AlreadyCompleted bool `json:"already_completed"`
}

type ChallengeOptionResponse struct {
	ID       uint    `json:"id"`
	Text     string  `json:"text"`
	Correct  bool    `json:"correct"`
	ImageSrc *string `json:"image_src"`
	AudioSrc *string `json:"audio_src"`
}

type ChallengeResponse struct {
	ID        uint                      `json:"id"`
	Type      string                    `json:"type"`
	Question  string                    `json:"question"`
	Order     int                       `json:"order"`
	Completed bool                      `json:"completed"`
	Options   []ChallengeOptionResponse `json:"options"`
}

type LessonResponse struct {
	ID         uint                `json:"id"`
	Title      string              `json:"title"`
	UnitID     uint                `json:"unit_id"`
	IsPooled   bool                `json:"is_pooled"`
	IsPractice bool                `json:"is_practice"`
	Percentage int                 `json:"percentage"`
	Challenges []ChallengeResponse `json:"challenges"`
}

type LessonSummary struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Order     int    `json:"order"`
	UnitID    uint   `json:"unit_id"`
	Completed bool   `json:"completed"`
}

type UnitResponse struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Order       int             `json:"order"`
	Lessons     []LessonSummary `json:"lessons"`
}

type ActiveLessonResponse struct {
	CourseID     uint           `json:"course_id"`
	ActiveLesson *LessonSummary `json:"active_lesson"`
	AllCompleted bool           `json:"all_completed"`
}

type LessonPercentageResponse struct {
	LessonID   uint `json:"lesson_id"`
	Percentage int  `json:"percentage"`
}

type LessonCompletedResponse struct {
	LessonID  uint `json:"lesson_id"`
	Completed bool `json:"completed"`
}
