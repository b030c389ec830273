package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/82deutschmark/Disavowed/dto"
	"github.com/82deutschmark/Disavowed/shared"
)

type AuthHandler struct {
	authSvc     AuthServiceInterface
	progressSvc ProgressServiceInterface
}

func NewAuthHandler(authSvc AuthServiceInterface, progressSvc ProgressServiceInterface) *AuthHandler {
	return &AuthHandler{
		authSvc:     authSvc,
		progressSvc: progressSvc,
	}
}

// @Summary Register
// @Description This endpoint creates a new account with a fresh progress record
// @Tags auth
// @Accept  json
// @Produce json
// @Param registerRequest body dto.RegisterRequest true "Register request"
// @Success 201 {object} shared.Response{data=dto.RegisterResponse}
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	res, err := h.authSvc.Register(&req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", res)
}

// @Summary Login
// @Description This endpoint authenticates an account and returns a token pair
// @Tags auth
// @Accept  json
// @Produce json
// @Param loginRequest body dto.LoginRequest true "Login request"
// @Success 200 {object} shared.Response{data=dto.LoginResponse}
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	res, err := h.authSvc.Login(&req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", res)
}

// @Summary Merge Guest Progress
// @Description This endpoint folds a guest session's progress into the authenticated account
// @Tags auth
// @Accept  json
// @Produce json
// @Param mergeProgressRequest body dto.MergeProgressRequest true "Merge progress request"
// @Success 200 {object} shared.Response{data=model.PlayerProgress}
// @Router /api/v1/auth/merge [post]
func (h *AuthHandler) MergeProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals(shared.UserID).(string)
	if !ok || userID == "" {
		return shared.NewUnauthorizedError(nil, "Unauthorized")
	}

	var req dto.MergeProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	progress, err := h.progressSvc.Merge(req.GuestPlayerID, userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", progress)
}
