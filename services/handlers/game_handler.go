package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/82deutschmark/Disavowed/dto"
	"github.com/82deutschmark/Disavowed/model"
	"github.com/82deutschmark/Disavowed/shared"
)

type GameHandler struct {
	missionSvc   MissionServiceInterface
	engineSvc    EngineServiceInterface
	progressSvc  ProgressServiceInterface
	characterSvc CharacterServiceInterface
	sceneSvc     SceneServiceInterface
}

func NewGameHandler(missionSvc MissionServiceInterface, engineSvc EngineServiceInterface, progressSvc ProgressServiceInterface, characterSvc CharacterServiceInterface, sceneSvc SceneServiceInterface) *GameHandler {
	return &GameHandler{
		missionSvc:   missionSvc,
		engineSvc:    engineSvc,
		progressSvc:  progressSvc,
		characterSvc: characterSvc,
		sceneSvc:     sceneSvc,
	}
}

func (h *GameHandler) playerID(c *fiber.Ctx) (string, error) {
	playerID, ok := c.Locals(shared.PlayerID).(string)
	if !ok || playerID == "" {
		return "", shared.NewUnauthorizedError(nil, "Player identity required")
	}
	return playerID, nil
}

// nodeResponse decorates a resolved node with its character and a scene
// illustration when either is available.
func (h *GameHandler) nodeResponse(outcome *dto.ChoiceOutcome) *dto.NodeResponse {
	res := &dto.NodeResponse{
		Node:     outcome.Node,
		Choices:  outcome.Choices,
		Balances: outcome.Balances,
	}
	if outcome.Node.CharacterID != nil {
		if character, err := h.characterSvc.GetCharacter(*outcome.Node.CharacterID); err == nil {
			res.Character = character
		}
	}
	if scene, err := h.sceneSvc.RandomScene(); err == nil {
		res.Scene = scene
	}
	return res
}

// @Summary Create Full Mission
// @Description This endpoint generates a complete mission with its opening scene and first choices
// @Tags game
// @Accept  json
// @Produce json
// @Param createMissionRequest body dto.CreateMissionRequest true "Create mission request"
// @Success 201 {object} shared.Response{data=dto.MissionResponse}
// @Router /api/v1/game/missions/full [post]
func (h *GameHandler) CreateFullMission(c *fiber.Ctx) error {
	playerID, err := h.playerID(c)
	if err != nil {
		return err
	}

	var req dto.CreateMissionRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	mission, outcome, err := h.missionSvc.CreateFullMission(c.UserContext(), playerID, &req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", dto.MissionResponse{
		Mission: mission,
		Node:    h.nodeResponse(outcome),
	})
}

// @Summary Create Mission Briefing
// @Description This endpoint generates a briefing-only mission from a single mission giver
// @Tags game
// @Accept  json
// @Produce json
// @Param createBriefMissionRequest body dto.CreateBriefMissionRequest true "Create briefing request"
// @Success 201 {object} shared.Response{data=model.Mission}
// @Router /api/v1/game/missions [post]
func (h *GameHandler) CreateMission(c *fiber.Ctx) error {
	playerID, err := h.playerID(c)
	if err != nil {
		return err
	}

	var req dto.CreateBriefMissionRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	mission, err := h.missionSvc.CreateMission(c.UserContext(), playerID, req.GiverID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", mission)
}

// @Summary Get Mission
// @Description This endpoint returns one of the player's missions
// @Tags game
// @Accept  json
// @Produce json
// @Param missionId path string true "Mission ID"
// @Success 200 {object} shared.Response{data=model.Mission}
// @Router /api/v1/game/missions/{missionId} [get]
func (h *GameHandler) GetMission(c *fiber.Ctx) error {
	playerID, err := h.playerID(c)
	if err != nil {
		return err
	}

	mission, err := h.missionSvc.GetMission(playerID, c.Params("missionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", mission)
}

// @Summary Start Mission Story
// @Description This endpoint generates the opening scene of a briefing-only mission
// @Tags game
// @Accept  json
// @Produce json
// @Param missionId path string true "Mission ID"
// @Success 200 {object} shared.Response{data=dto.MissionResponse}
// @Router /api/v1/game/missions/{missionId}/start [post]
func (h *GameHandler) StartMissionStory(c *fiber.Ctx) error {
	playerID, err := h.playerID(c)
	if err != nil {
		return err
	}

	mission, outcome, err := h.missionSvc.StartMissionStory(c.UserContext(), playerID, c.Params("missionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", dto.MissionResponse{
		Mission: mission,
		Node:    h.nodeResponse(outcome),
	})
}

// @Summary Complete Mission
// @Description This endpoint marks a mission completed and credits its reward
// @Tags game
// @Accept  json
// @Produce json
// @Param missionId path string true "Mission ID"
// @Success 200 {object} shared.Response
// @Router /api/v1/game/missions/{missionId}/complete [post]
func (h *GameHandler) CompleteMission(c *fiber.Ctx) error {
	playerID, err := h.playerID(c)
	if err != nil {
		return err
	}

	mission, progress, err := h.missionSvc.CompleteMission(playerID, c.Params("missionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", fiber.Map{
		"mission":           mission,
		"currency_balances": progress.CurrencyBalances,
	})
}

// @Summary Fail Mission
// @Description This endpoint marks a mission failed
// @Tags game
// @Accept  json
// @Produce json
// @Param missionId path string true "Mission ID"
// @Success 200 {object} shared.Response
// @Router /api/v1/game/missions/{missionId}/fail [post]
func (h *GameHandler) FailMission(c *fiber.Ctx) error {
	playerID, err := h.playerID(c)
	if err != nil {
		return err
	}

	mission, _, err := h.missionSvc.FailMission(playerID, c.Params("missionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", mission)
}

// @Summary Get Current Node
// @Description This endpoint returns the story node the player currently stands on
// @Tags game
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.NodeResponse}
// @Router /api/v1/game/node [get]
func (h *GameHandler) GetCurrentNode(c *fiber.Ctx) error {
	playerID, err := h.playerID(c)
	if err != nil {
		return err
	}

	outcome, err := h.engineSvc.CurrentNode(playerID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", h.nodeResponse(outcome))
}

// @Summary Submit Choice
// @Description This endpoint resolves an authored choice, debiting its cost and advancing the story
// @Tags game
// @Accept  json
// @Produce json
// @Param choiceRequest body dto.ChoiceRequest true "Choice request"
// @Success 200 {object} shared.Response{data=dto.NodeResponse}
// @Router /api/v1/game/choice [post]
func (h *GameHandler) SubmitChoice(c *fiber.Ctx) error {
	playerID, err := h.playerID(c)
	if err != nil {
		return err
	}

	var req dto.ChoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	outcome, err := h.engineSvc.ProcessChoice(c.UserContext(), playerID, req.ChoiceID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", h.nodeResponse(outcome))
}

// @Summary Submit Custom Choice
// @Description This endpoint resolves a free-text player action for a flat diamond cost
// @Tags game
// @Accept  json
// @Produce json
// @Param customChoiceRequest body dto.CustomChoiceRequest true "Custom choice request"
// @Success 200 {object} shared.Response{data=dto.NodeResponse}
// @Router /api/v1/game/choice/custom [post]
func (h *GameHandler) SubmitCustomChoice(c *fiber.Ctx) error {
	playerID, err := h.playerID(c)
	if err != nil {
		return err
	}

	var req dto.CustomChoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	outcome, err := h.engineSvc.ProcessCustomChoice(c.UserContext(), playerID, req.Text)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", h.nodeResponse(outcome))
}

// @Summary Check Choice Affordability
// @Description This endpoint reports whether the player can afford a choice without taking it
// @Tags game
// @Accept  json
// @Produce json
// @Param choiceId path string true "Choice ID"
// @Success 200 {object} shared.Response{data=dto.CurrencyCheckResponse}
// @Router /api/v1/game/choice/{choiceId}/affordability [get]
func (h *GameHandler) CheckAffordability(c *fiber.Ctx) error {
	playerID, err := h.playerID(c)
	if err != nil {
		return err
	}

	canAfford, cost, balances, err := h.engineSvc.CheckAffordability(playerID, c.Params("choiceId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", dto.CurrencyCheckResponse{
		CanAfford: canAfford,
		Cost:      cost,
		Balances:  balances,
	})
}

// @Summary Get Progress
// @Description This endpoint returns the player's full progress record
// @Tags game
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=model.PlayerProgress}
// @Router /api/v1/game/progress [get]
func (h *GameHandler) GetProgress(c *fiber.Ctx) error {
	playerID, err := h.playerID(c)
	if err != nil {
		return err
	}

	progress, err := h.progressSvc.Get(playerID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", progress)
}

// @Summary Get Transactions
// @Description This endpoint returns the player's currency audit trail
// @Tags game
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=[]model.Transaction}
// @Router /api/v1/game/transactions [get]
func (h *GameHandler) GetTransactions(c *fiber.Ctx) error {
	playerID, err := h.playerID(c)
	if err != nil {
		return err
	}

	transactions, err := h.progressSvc.Transactions(playerID)
	if err != nil {
		return err
	}
	if transactions == nil {
		transactions = []model.Transaction{}
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", transactions)
}

// @Summary List Characters
// @Description This endpoint returns the character catalog
// @Tags game
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=[]model.Character}
// @Router /api/v1/game/characters [get]
func (h *GameHandler) ListCharacters(c *fiber.Ctx) error {
	characters, err := h.characterSvc.ListCharacters()
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", characters)
}

// @Summary Get Character
// @Description This endpoint returns one catalog character
// @Tags game
// @Accept  json
// @Produce json
// @Param characterId path string true "Character ID"
// @Success 200 {object} shared.Response{data=model.Character}
// @Router /api/v1/game/characters/{characterId} [get]
func (h *GameHandler) GetCharacter(c *fiber.Ctx) error {
	character, err := h.characterSvc.GetCharacter(c.Params("characterId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", character)
}
