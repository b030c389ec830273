package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/82deutschmark/Disavowed/dto"
	"github.com/82deutschmark/Disavowed/shared"
)

type GuestHandler struct {
	progressSvc ProgressServiceInterface
}

func NewGuestHandler(progressSvc ProgressServiceInterface) *GuestHandler {
	return &GuestHandler{
		progressSvc: progressSvc,
	}
}

// @Summary Create Guest Session
// @Description This endpoint mints a new guest player identity with a starting wallet
// @Tags guest
// @Accept  json
// @Produce json
// @Param createSessionRequest body dto.CreateSessionRequest true "Create session request"
// @Success 201 {object} shared.Response{data=dto.CreateSessionResponse}
// @Router /api/v1/guest/session [post]
func (h *GuestHandler) CreateSession(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	playerID := uuid.NewString()
	progress, err := h.progressSvc.GetOrCreate(playerID, nil)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", dto.CreateSessionResponse{
		PlayerID: playerID,
		Progress: progress,
	})
}
