package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/82deutschmark/Disavowed/dto"
	"github.com/82deutschmark/Disavowed/model"
	"github.com/82deutschmark/Disavowed/shared"

	"github.com/stretchr/testify/assert"
)

func newTestMission(store *fakeStore, gateway ContentGateway) *MissionService {
	engine := newTestEngine(store, gateway)
	return &MissionService{
		store:   store,
		ledger:  engine.ledger,
		story:   engine.story,
		engine:  engine,
		gateway: gateway,
	}
}

func seedCast(store *fakeStore) {
	for _, c := range []model.Character{
		{ID: "char_giver", Name: "Director Hale", Role: model.RoleMissionGiver},
		{ID: "char_villain", Name: "Viktor Morozov", Role: model.RoleVillain},
		{ID: "char_partner", Name: "Elena Vasquez", Role: model.RolePartner},
		{ID: "char_extra", Name: "Sofia Lindqvist", Role: model.RoleCivilian},
	} {
		character := c
		_ = store.CreateCharacter(&character)
	}
}

func fullMissionGateway() *fakeGateway {
	gateway := scriptedGateway()
	gateway.fullMission = &FullMissionResult{
		MissionTitle:       "Operation Nightfall",
		MissionDescription: "Recover the ledger before dawn.",
		Objective:          "Steal the ledger",
		Difficulty:         "hard",
		Deadline:           "48 hours",
		Setting:            "Vienna",
		NarrativeStyle:     shared.DefaultNarrativeStyle,
		Mood:               shared.DefaultMood,
		OpeningNarrative:   "Rain hammers the embassy windows.",
		Choices: []GeneratedChoice{
			{Text: "Scale the wall", RiskLevel: shared.TierHigh},
			{Text: "Bribe the doorman", RiskLevel: shared.TierMedium},
			{Text: "Watch from the cafe", RiskLevel: shared.TierLow},
		},
	}
	gateway.brief = &MissionBriefResult{
		Title:      "Dead Drop",
		Objective:  "Retrieve the cache",
		Difficulty: "medium",
	}
	gateway.opening = &OpeningResult{OpeningNarrative: "The park bench is empty."}
	return gateway
}

func fullMissionRequest() *dto.CreateMissionRequest {
	return &dto.CreateMissionRequest{
		GiverID:          "char_giver",
		TargetID:         "char_villain",
		PartnerID:        "char_partner",
		ExtraCharacterID: "char_extra",
		PlayerName:       "Reyes",
		PlayerGender:     "they/them",
	}
}

func TestCreateFullMission(t *testing.T) {
	t.Run("Creates the mission, opening node and priced choices", func(t *testing.T) {
		store := newFakeStore()
		seedCast(store)
		progress := &model.PlayerProgress{
			ID:               "progress-1",
			PlayerID:         "player-1",
			Level:            1,
			CurrencyBalances: model.CurrencyMap{shared.CurrencyDollar: 50},
		}
		_ = store.CreateProgress(progress)
		svc := newTestMission(store, fullMissionGateway())

		mission, outcome, err := svc.CreateFullMission(context.Background(), "player-1", fullMissionRequest())

		assert.NoError(t, err)
		assert.Equal(t, "Operation Nightfall", mission.Title)
		assert.Equal(t, shared.MissionStatusActive, mission.Status)
		assert.Equal(t, shared.CurrencyDiamond, mission.RewardCurrency)
		assert.GreaterOrEqual(t, mission.RewardAmount, 2)
		assert.LessOrEqual(t, mission.RewardAmount, 5)
		assert.NotNil(t, mission.StoryID)

		assert.Equal(t, "Rain hammers the embassy windows.", outcome.Node.NarrativeText)
		assert.Len(t, outcome.Choices, 3)

		branch := outcome.Node.Branch()
		assert.Equal(t, mission.ID, branch.MissionID)
		assert.Equal(t, model.NodeTypeOpening, branch.NodeType)
		assert.Equal(t, []string{"char_giver", "char_partner"}, branch.CharactersPresent)
		assert.NotNil(t, branch.AIGenerationMeta)
		assert.Equal(t, shared.DefaultNarrativeStyle, branch.AIGenerationMeta.NarrativeStyle)

		saved, _ := store.GetProgressByPlayerID("player-1")
		assert.Equal(t, outcome.Node.ID, *saved.CurrentNodeID)
		assert.Contains(t, saved.ActiveMissions, mission.ID)
		for _, id := range []string{"char_giver", "char_villain", "char_partner", "char_extra"} {
			assert.Contains(t, saved.EncounteredCharacters, id)
		}
	})

	t.Run("Gateway failure persists nothing", func(t *testing.T) {
		store := newFakeStore()
		seedCast(store)
		_ = store.CreateProgress(&model.PlayerProgress{ID: "progress-1", PlayerID: "player-1", Level: 1})
		gateway := fullMissionGateway()
		gateway.fullMissionErr = ErrGatewayUnavailable
		svc := newTestMission(store, gateway)

		_, _, err := svc.CreateFullMission(context.Background(), "player-1", fullMissionRequest())

		appErr, ok := shared.GetAppError(err)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadGateway, appErr.StatusCode)
		assert.Empty(t, store.missions)
		assert.Empty(t, store.nodes)
		assert.Empty(t, store.stories)
	})

	t.Run("Unknown cast member", func(t *testing.T) {
		store := newFakeStore()
		seedCast(store)
		_ = store.CreateProgress(&model.PlayerProgress{ID: "progress-1", PlayerID: "player-1", Level: 1})
		gateway := fullMissionGateway()
		svc := newTestMission(store, gateway)

		req := fullMissionRequest()
		req.TargetID = "char_missing"
		_, _, err := svc.CreateFullMission(context.Background(), "player-1", req)

		appErr, ok := shared.GetAppError(err)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
		assert.Zero(t, gateway.fullMissionCalls)
	})
}

func TestMissionLifecycle(t *testing.T) {
	seed := func(t *testing.T) (*fakeStore, *MissionService, *model.Mission) {
		store := newFakeStore()
		seedCast(store)
		_ = store.CreateProgress(&model.PlayerProgress{
			ID:               "progress-1",
			PlayerID:         "player-1",
			Level:            1,
			CurrencyBalances: model.CurrencyMap{shared.CurrencyDiamond: 50},
		})
		svc := newTestMission(store, fullMissionGateway())

		mission, err := svc.CreateMission(context.Background(), "player-1", "char_giver")
		assert.NoError(t, err)
		return store, svc, mission
	}

	t.Run("Brief-only creation has no story", func(t *testing.T) {
		store, _, mission := seed(t)

		assert.Equal(t, "Dead Drop", mission.Title)
		assert.Nil(t, mission.StoryID)

		saved, _ := store.GetProgressByPlayerID("player-1")
		assert.Contains(t, saved.ActiveMissions, mission.ID)
		assert.Nil(t, saved.CurrentNodeID)
	})

	t.Run("Starting the story moves the pointer onto the opening", func(t *testing.T) {
		store, svc, mission := seed(t)

		started, outcome, err := svc.StartMissionStory(context.Background(), "player-1", mission.ID)

		assert.NoError(t, err)
		assert.NotNil(t, started.StoryID)
		assert.Equal(t, "The park bench is empty.", outcome.Node.NarrativeText)
		assert.Len(t, outcome.Choices, 3)
		assert.Equal(t, mission.ID, outcome.Node.Branch().MissionID)
		assert.Equal(t, model.NodeTypeOpening, outcome.Node.Branch().NodeType)

		saved, _ := store.GetProgressByPlayerID("player-1")
		assert.Equal(t, outcome.Node.ID, *saved.CurrentNodeID)
	})

	t.Run("Starting twice conflicts", func(t *testing.T) {
		_, svc, mission := seed(t)

		_, _, err := svc.StartMissionStory(context.Background(), "player-1", mission.ID)
		assert.NoError(t, err)

		_, _, err = svc.StartMissionStory(context.Background(), "player-1", mission.ID)

		appErr, ok := shared.GetAppError(err)
		assert.True(t, ok)
		assert.Equal(t, http.StatusConflict, appErr.StatusCode)
	})

	t.Run("Completion credits the reward and records it", func(t *testing.T) {
		store, svc, mission := seed(t)

		closed, progress, err := svc.CompleteMission("player-1", mission.ID)

		assert.NoError(t, err)
		assert.Equal(t, shared.MissionStatusCompleted, closed.Status)
		assert.NotNil(t, closed.CompletedAt)
		assert.Equal(t, 50+closed.RewardAmount, progress.Balance(shared.CurrencyDiamond))
		assert.NotContains(t, progress.ActiveMissions, mission.ID)
		assert.Contains(t, progress.CompletedMissions, mission.ID)

		rows := store.playerTransactions("player-1")
		assert.Len(t, rows, 1)
		assert.Equal(t, shared.TransactionTypeReward, rows[0].Type)
		assert.Equal(t, closed.RewardAmount, rows[0].Amount)
	})

	t.Run("Failure pays nothing", func(t *testing.T) {
		store, svc, mission := seed(t)

		closed, progress, err := svc.FailMission("player-1", mission.ID)

		assert.NoError(t, err)
		assert.Equal(t, shared.MissionStatusFailed, closed.Status)
		assert.Equal(t, 50, progress.Balance(shared.CurrencyDiamond))
		assert.Contains(t, progress.FailedMissions, mission.ID)
		assert.Empty(t, store.playerTransactions("player-1"))
	})

	t.Run("Closing twice conflicts", func(t *testing.T) {
		_, svc, mission := seed(t)

		_, _, err := svc.CompleteMission("player-1", mission.ID)
		assert.NoError(t, err)

		_, _, err = svc.CompleteMission("player-1", mission.ID)

		appErr, ok := shared.GetAppError(err)
		assert.True(t, ok)
		assert.Equal(t, http.StatusConflict, appErr.StatusCode)
	})

	t.Run("Another player's mission reads as not found", func(t *testing.T) {
		store, svc, mission := seed(t)
		_ = store.CreateProgress(&model.PlayerProgress{ID: "progress-2", PlayerID: "player-2", Level: 1})

		_, err := svc.GetMission("player-2", mission.ID)

		appErr, ok := shared.GetAppError(err)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	})
}
