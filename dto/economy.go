package dto

// ==================== ECONOMY DTOs ====================

type SelectCourseRequest struct {
	CourseID     uint   `json:"course_id" validate:"required,gt=0"`
	UserName     string `json:"user_name" validate:"max=64"`
	UserImageSrc string `json:"user_image_src" validate:"max=512,image_src"`
}

func (r SelectCourseRequest) Validate() error {
	return GetValidator().Struct(r)
}

type CourseResponse struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	ImageSrc string `json:"image_src"`
}

type UserProgressResponse struct {
	UserID         string          `json:"user_id"`
	UserName       string          `json:"user_name"`
	UserImageSrc   string          `json:"user_image_src"`
	ActiveCourseID *uint           `json:"active_course_id"`
	ActiveCourse   *CourseResponse `json:"active_course,omitempty"`
	Hearts         int             `json:"hearts"`
	MaxHearts      int             `json:"max_hearts"`
	Points         int             `json:"points"`
	XP             int             `json:"xp"`
}

type RefillResponse struct {
	Status string `json:"status"`
	Hearts int    `json:"hearts"`
	Points int    `json:"points"`
}

type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       string `json:"user_id"`
	UserName     string `json:"user_name"`
	UserImageSrc string `json:"user_image_src"`
	Points       int    `json:"points"`
}
