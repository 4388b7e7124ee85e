package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/afinmh/TajweeDo/dto"
	"github.com/afinmh/TajweeDo/shared"
)

type EconomyHandler struct {
	ledgerSvc LedgerServiceInterface
}

func NewEconomyHandler(ledgerSvc LedgerServiceInterface) *EconomyHandler {
	return &EconomyHandler{
		ledgerSvc: ledgerSvc,
	}
}

// @Summary List courses
// @Description List every course a learner can select
// @Tags courses
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=[]dto.CourseResponse}
// @Router /api/v1/courses [get]
func (h *EconomyHandler) ListCourses(c *fiber.Ctx) error {
	courses, err := h.ledgerSvc.ListCourses(c.UserContext())
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", courses)
}

// @Summary Select active course
// @Description Create the learner's progress row or switch the active course
// @Tags progress
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param request body dto.SelectCourseRequest true "Course selection"
// @Success 200 {object} shared.Response{data=dto.UserProgressResponse}
// @Router /api/v1/progress/course [post]
func (h *EconomyHandler) SelectCourse(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.SelectCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}
	if err := req.Validate(); err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, "Validation failed", dto.FormatValidationErrors(err))
	}

	progress, err := h.ledgerSvc.SelectCourse(c.UserContext(), userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", progress)
}

// @Summary Get user progress
// @Description Hearts, points, XP and active course of the caller
// @Tags progress
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.UserProgressResponse}
// @Router /api/v1/progress [get]
func (h *EconomyHandler) GetUserProgress(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	progress, err := h.ledgerSvc.GetUserProgress(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", progress)
}

// @Summary Refill hearts
// @Description Spend points to restore full hearts
// @Tags progress
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.RefillResponse}
// @Failure 402 {object} shared.Response{data=shared.ErrorBody}
// @Router /api/v1/progress/refill [post]
func (h *EconomyHandler) RefillHearts(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	result, err := h.ledgerSvc.Refill(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", result)
}

// @Summary Get leaderboard
// @Description Top learners by points
// @Tags leaderboard
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=[]dto.LeaderboardEntry}
// @Router /api/v1/leaderboard [get]
func (h *EconomyHandler) GetLeaderboard(c *fiber.Ctx) error {
	entries, err := h.ledgerSvc.TopUsers(c.UserContext())
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderCacheControl, "max-age=10")
	return shared.ResponseJSON(c, fiber.StatusOK, "Success", entries)
}
