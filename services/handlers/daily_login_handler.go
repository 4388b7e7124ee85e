package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/afinmh/TajweeDo/dto"
	"github.com/afinmh/TajweeDo/shared"
)

type DailyLoginHandler struct {
	dailyLoginSvc DailyLoginServiceInterface
}

func NewDailyLoginHandler(dailyLoginSvc DailyLoginServiceInterface) *DailyLoginHandler {
	return &DailyLoginHandler{
		dailyLoginSvc: dailyLoginSvc,
	}
}

// @Summary Get daily login state
// @Description Reward table, plus the caller's streak state when a token is sent
// @Tags daily-login
// @Accept json
// @Produce json
// @Param Authorization header string false "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.DailyLoginOverviewResponse}
// @Router /api/v1/daily-login [get]
func (h *DailyLoginHandler) GetDailyLogin(c *fiber.Ctx) error {
	userID, _ := c.Locals(shared.UserID).(string)

	overview, err := h.dailyLoginSvc.GetOverview(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", overview)
}

// @Summary Claim daily login reward
// @Description Claim today's reward; a repeat claim returns already_claimed
// @Tags daily-login
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.ClaimDailyLoginResponse}
// @Router /api/v1/daily-login [post]
func (h *DailyLoginHandler) ClaimDailyLogin(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	result, err := h.dailyLoginSvc.Claim(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", result)
}

// @Summary Dismiss daily login prompt
// @Tags daily-login
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param request body dto.UpdateDailyLoginViewRequest true "View flag"
// @Success 200 {object} shared.Response{data=dto.DailyLoginStateResponse}
// @Router /api/v1/daily-login [patch]
func (h *DailyLoginHandler) UpdateView(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.UpdateDailyLoginViewRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}
	if err := req.Validate(); err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, "Validation failed", dto.FormatValidationErrors(err))
	}

	state, err := h.dailyLoginSvc.SetView(c.UserContext(), userID, *req.View)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", state)
}
