package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/afinmh/TajweeDo/dto"
	"github.com/afinmh/TajweeDo/shared"
)

type StoreHandler struct {
	storeSvc StoreServiceInterface
}

func NewStoreHandler(storeSvc StoreServiceInterface) *StoreHandler {
	return &StoreHandler{
		storeSvc: storeSvc,
	}
}

// @Summary List store items
// @Tags store
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=[]dto.StoreItemResponse}
// @Router /api/v1/store/items [get]
func (h *StoreHandler) ListItems(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	items, err := h.storeSvc.ListItems(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", items)
}

// @Summary Purchase store item
// @Description Buy an item with points and optionally equip it as the avatar
// @Tags store
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param request body dto.PurchaseRequest true "Purchase"
// @Success 200 {object} shared.Response{data=dto.PurchaseResponse}
// @Failure 402 {object} shared.Response{data=shared.ErrorBody}
// @Router /api/v1/store/purchase [post]
func (h *StoreHandler) Purchase(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}
	if err := req.Validate(); err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, "Validation failed", dto.FormatValidationErrors(err))
	}

	result, err := h.storeSvc.Purchase(c.UserContext(), userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", result)
}
