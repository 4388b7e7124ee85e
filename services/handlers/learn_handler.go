package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/afinmh/TajweeDo/dto"
	"github.com/afinmh/TajweeDo/shared"
)

type LearnHandler struct {
	progressSvc   ProgressServiceInterface
	completionSvc CompletionServiceInterface
}

func NewLearnHandler(progressSvc ProgressServiceInterface, completionSvc CompletionServiceInterface) *LearnHandler {
	return &LearnHandler{
		progressSvc:   progressSvc,
		completionSvc: completionSvc,
	}
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, shared.NewBadRequestError(err, "Invalid "+name)
	}
	return uint(id), nil
}

// @Summary Get course units
// @Description Units of a course with lessons and the caller's completion flags
// @Tags learn
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param courseId path int true "Course ID"
// @Success 200 {object} shared.Response{data=[]dto.UnitResponse}
// @Router /api/v1/courses/{courseId}/units [get]
func (h *LearnHandler) GetUnits(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}

	units, err := h.progressSvc.GetUnits(c.UserContext(), userID, courseID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", units)
}

// @Summary Get active lesson
// @Description First incomplete lesson of the course, or the first lesson when all are complete
// @Tags learn
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param courseId path int true "Course ID"
// @Success 200 {object} shared.Response{data=dto.ActiveLessonResponse}
// @Router /api/v1/courses/{courseId}/active-lesson [get]
func (h *LearnHandler) GetActiveLesson(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}

	active, err := h.progressSvc.GetActiveLesson(c.UserContext(), userID, courseID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", active)
}

// @Summary Get lesson
// @Description Composed challenges of a lesson with the caller's progress
// @Tags learn
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} shared.Response{data=dto.LessonResponse}
// @Router /api/v1/lessons/{lessonId} [get]
func (h *LearnHandler) GetLesson(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	lessonID, err := paramID(c, "lessonId")
	if err != nil {
		return err
	}

	lesson, err := h.progressSvc.GetLessonView(c.UserContext(), userID, lessonID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", lesson)
}

// @Summary Get lesson percentage
// @Tags learn
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} shared.Response{data=dto.LessonPercentageResponse}
// @Router /api/v1/lessons/{lessonId}/percentage [get]
func (h *LearnHandler) GetLessonPercentage(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	lessonID, err := paramID(c, "lessonId")
	if err != nil {
		return err
	}

	pct, err := h.progressSvc.GetLessonPercentage(c.UserContext(), userID, lessonID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", dto.LessonPercentageResponse{
		LessonID:   lessonID,
		Percentage: pct,
	})
}

// @Summary Is lesson completed
// @Tags learn
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} shared.Response{data=dto.LessonCompletedResponse}
// @Router /api/v1/lessons/{lessonId}/completed [get]
func (h *LearnHandler) IsLessonCompleted(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	lessonID, err := paramID(c, "lessonId")
	if err != nil {
		return err
	}

	completed, err := h.progressSvc.IsLessonCompleted(c.UserContext(), userID, lessonID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", dto.LessonCompletedResponse{
		LessonID:  lessonID,
		Completed: completed,
	})
}

// @Summary Submit answer
// @Description Grade one answer and apply hearts, points and completion
// @Tags learn
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param lessonId path int true "Lesson ID"
// @Param request body dto.SubmitAnswerRequest true "Answer"
// @Success 200 {object} shared.Response{data=dto.SubmitAnswerResponse}
// @Failure 409 {object} shared.Response{data=shared.ErrorBody}
// @Failure 429 {object} shared.Response{data=shared.ErrorBody}
// @Router /api/v1/lessons/{lessonId}/answers [post]
func (h *LearnHandler) SubmitAnswer(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	lessonID, err := paramID(c, "lessonId")
	if err != nil {
		return err
	}

	var req dto.SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}
	if err := req.Validate(); err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, "Validation failed", dto.FormatValidationErrors(err))
	}

	result, err := h.completionSvc.SubmitAnswer(c.UserContext(), userID, lessonID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", result)
}

// @Summary Complete lesson
// @Description Record lesson completion and pay the first-time award
// @Tags learn
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} shared.Response{data=dto.LessonCompletionResult}
// @Router /api/v1/lessons/{lessonId}/complete [post]
func (h *LearnHandler) CompleteLesson(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	lessonID, err := paramID(c, "lessonId")
	if err != nil {
		return err
	}

	result, err := h.completionSvc.CompleteLessonIfNeeded(c.UserContext(), userID, lessonID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", result)
}
