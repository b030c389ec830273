package services

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/82deutschmark/Disavowed/dto"
	"github.com/82deutschmark/Disavowed/model"
	"github.com/82deutschmark/Disavowed/shared"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// MissionService runs the mission lifecycle: creation (with or without an
// opening story), starting the story for a brief-only mission, completion
// and failure.
type MissionService struct {
	appContext.DefaultService

	store    GameStore
	ledger   *LedgerService
	story    *StoryService
	engine   *EngineService
	gateway  ContentGateway
}

const MISSION_SVC = "mission_svc"

func (svc MissionService) Id() string {
	return MISSION_SVC
}

func (svc *MissionService) Configure(ctx *appContext.Context) error {
	svc.store = svc.Service(POSTGRES_SVC).(*PostgresService).Store()
	svc.ledger = svc.Service(LEDGER_SVC).(*LedgerService)
	svc.story = svc.Service(STORY_SVC).(*StoryService)
	svc.engine = svc.Service(ENGINE_SVC).(*EngineService)
	svc.gateway = svc.Service(OPENAI_SVC).(ContentGateway)
	return svc.DefaultService.Configure(ctx)
}

func (svc *MissionService) Start() error {
	return nil
}

// CreateFullMission generates a complete mission in one gateway call: the
// briefing, the opening scene and its first three choices. Generation runs
// before anything is persisted, so a gateway failure creates nothing.
func (svc *MissionService) CreateFullMission(ctx context.Context, playerID string, req *dto.CreateMissionRequest) (*model.Mission, *dto.ChoiceOutcome, error) {
	progress, err := svc.store.GetProgressByPlayerID(playerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, shared.NewNotFoundError(err, "player progress not found")
		}
		return nil, nil, err
	}

	cast, err := svc.loadCast(svc.store, req.GiverID, req.TargetID, req.PartnerID, req.ExtraCharacterID)
	if err != nil {
		return nil, nil, err
	}

	style := req.NarrativeStyle
	if style == "" {
		style = shared.DefaultNarrativeStyle
	}
	mood := req.Mood
	if mood == "" {
		mood = shared.DefaultMood
	}

	result, err := svc.gateway.GenerateFullMission(ctx, FullMissionRequest{
		Giver:          NewCharacterContext(cast[0]),
		Villain:        NewCharacterContext(cast[1]),
		Partner:        NewCharacterContext(cast[2]),
		Extra:          NewCharacterContext(cast[3]),
		PlayerName:     req.PlayerName,
		PlayerGender:   req.PlayerGender,
		NarrativeStyle: style,
		Mood:           mood,
	})
	if err != nil {
		return nil, nil, svc.wrapGatewayError(err)
	}

	mission := &model.Mission{
		ID:             uuid.NewString(),
		PlayerID:       playerID,
		Title:          result.MissionTitle,
		Description:    result.MissionDescription,
		GiverID:        cast[0].ID,
		TargetID:       &cast[1].ID,
		Objective:      result.Objective,
		Status:         shared.MissionStatusActive,
		Difficulty:     result.Difficulty,
		RewardCurrency: shared.CurrencyDiamond,
		RewardAmount:   rewardAmount(),
		Deadline:       result.Deadline,
	}

	var outcome *dto.ChoiceOutcome
	err = svc.store.Transaction(func(tx GameStore) error {
		generated, _ := json.Marshal(result)
		storyGen := &model.StoryGeneration{
			ID:              uuid.NewString(),
			PrimaryConflict: result.Objective,
			Setting:         result.Setting,
			NarrativeStyle:  result.NarrativeStyle,
			Mood:            result.Mood,
			GeneratedStory:  generated,
		}
		if err := tx.CreateStory(storyGen); err != nil {
			return err
		}

		mission.StoryID = &storyGen.ID
		if err := tx.CreateMission(mission); err != nil {
			return err
		}

		branch, _ := json.Marshal(model.BranchMetadata{
			MissionID:         mission.ID,
			NodeType:          model.NodeTypeOpening,
			CharactersPresent: []string{cast[0].ID, cast[2].ID},
			AIGenerationMeta: &model.GenerationMeta{
				NarrativeStyle: style,
				Mood:           mood,
				GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
			},
		})
		opening, err := svc.story.CreateNode(tx, storyGen.ID, result.OpeningNarrative, &cast[0].ID, nil, branch, false)
		if err != nil {
			return err
		}
		choices, err := svc.story.AttachChoices(tx, opening.ID, svc.engine.priceChoices(result.Choices))
		if err != nil {
			return err
		}

		progress.CurrentNodeID = &opening.ID
		progress.CurrentStoryID = &storyGen.ID
		progress.ActiveMissions = append(progress.ActiveMissions, mission.ID)
		for _, c := range cast {
			progress.EncounteredCharacters = appendUnique(progress.EncounteredCharacters, c.ID)
		}
		if err := tx.SaveProgress(progress); err != nil {
			return err
		}

		outcome = &dto.ChoiceOutcome{Node: opening, Choices: choices, Balances: progress.CurrencyBalances.Clone()}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	log.WithFields(log.Fields{
		"player_id":  playerID,
		"mission_id": mission.ID,
		"title":      mission.Title,
	}).Info("Full mission created")
	return mission, outcome, nil
}

// CreateMission generates a briefing-only mission from a single giver. The
// story is produced later by StartMissionStory.
func (svc *MissionService) CreateMission(ctx context.Context, playerID, giverID string) (*model.Mission, error) {
	progress, err := svc.store.GetProgressByPlayerID(playerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, shared.NewNotFoundError(err, "player progress not found")
		}
		return nil, err
	}

	giver, err := svc.store.GetCharacter(giverID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, shared.NewNotFoundError(err, "mission giver not found")
		}
		return nil, err
	}

	brief, err := svc.gateway.GenerateMissionBrief(ctx, NewCharacterContext(giver))
	if err != nil {
		return nil, svc.wrapGatewayError(err)
	}

	mission := &model.Mission{
		ID:             uuid.NewString(),
		PlayerID:       playerID,
		Title:          brief.Title,
		Description:    brief.Description,
		GiverID:        giver.ID,
		Objective:      brief.Objective,
		Status:         shared.MissionStatusActive,
		Difficulty:     brief.Difficulty,
		RewardCurrency: shared.CurrencyDiamond,
		RewardAmount:   rewardAmount(),
		Deadline:       brief.Deadline,
	}

	err = svc.store.Transaction(func(tx GameStore) error {
		if err := tx.CreateMission(mission); err != nil {
			return err
		}
		progress.ActiveMissions = append(progress.ActiveMissions, mission.ID)
		progress.EncounteredCharacters = appendUnique(progress.EncounteredCharacters, giver.ID)
		return tx.SaveProgress(progress)
	})
	if err != nil {
		return nil, err
	}
	return mission, nil
}

// StartMissionStory generates the opening scene for a briefing-only mission
// and moves the player pointer onto it.
func (svc *MissionService) StartMissionStory(ctx context.Context, playerID, missionID string) (*model.Mission, *dto.ChoiceOutcome, error) {
	mission, progress, err := svc.ownedMission(svc.store, playerID, missionID)
	if err != nil {
		return nil, nil, err
	}
	if mission.StoryID != nil {
		return nil, nil, shared.NewConflictError(nil, "mission story already started")
	}
	if mission.Status != shared.MissionStatusActive {
		return nil, nil, shared.NewConflictError(nil, "mission is not active")
	}

	giver, err := svc.store.GetCharacter(mission.GiverID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, nil, err
	}

	opening, err := svc.gateway.GenerateOpening(ctx, mission, giver)
	if err != nil {
		return nil, nil, svc.wrapGatewayError(err)
	}

	var outcome *dto.ChoiceOutcome
	err = svc.store.Transaction(func(tx GameStore) error {
		storyGen := &model.StoryGeneration{
			ID:              uuid.NewString(),
			PrimaryConflict: mission.Objective,
			NarrativeStyle:  shared.DefaultNarrativeStyle,
			Mood:            shared.DefaultMood,
		}
		if err := tx.CreateStory(storyGen); err != nil {
			return err
		}

		var giverID *string
		if giver != nil {
			giverID = &giver.ID
		}
		branch, _ := json.Marshal(model.BranchMetadata{MissionID: mission.ID, NodeType: model.NodeTypeOpening})
		node, err := svc.story.CreateNode(tx, storyGen.ID, opening.OpeningNarrative, giverID, nil, branch, false)
		if err != nil {
			return err
		}
		choices, err := svc.engine.GenerateChoicesForNode(ctx, tx, progress, node)
		if err != nil {
			return err
		}

		mission.StoryID = &storyGen.ID
		if err := tx.SaveMission(mission); err != nil {
			return err
		}

		progress.CurrentNodeID = &node.ID
		progress.CurrentStoryID = &storyGen.ID
		if err := tx.SaveProgress(progress); err != nil {
			return err
		}

		outcome = &dto.ChoiceOutcome{Node: node, Choices: choices, Balances: progress.CurrencyBalances.Clone()}
		return nil
	})
	if err != nil {
		return nil, nil, svc.wrapGatewayError(err)
	}
	return mission, outcome, nil
}

// CompleteMission marks a mission completed and credits its reward.
func (svc *MissionService) CompleteMission(playerID, missionID string) (*model.Mission, *model.PlayerProgress, error) {
	return svc.closeMission(playerID, missionID, shared.MissionStatusCompleted)
}

// FailMission marks a mission failed. No reward.
func (svc *MissionService) FailMission(playerID, missionID string) (*model.Mission, *model.PlayerProgress, error) {
	return svc.closeMission(playerID, missionID, shared.MissionStatusFailed)
}

func (svc *MissionService) closeMission(playerID, missionID, status string) (*model.Mission, *model.PlayerProgress, error) {
	mission, progress, err := svc.ownedMission(svc.store, playerID, missionID)
	if err != nil {
		return nil, nil, err
	}
	if mission.Status != shared.MissionStatusActive {
		return nil, nil, shared.NewConflictError(nil, "mission is not active")
	}

	err = svc.store.Transaction(func(tx GameStore) error {
		now := time.Now().UTC()
		mission.Status = status
		mission.CompletedAt = &now
		if err := tx.SaveMission(mission); err != nil {
			return err
		}

		progress.ActiveMissions = removeString(progress.ActiveMissions, mission.ID)
		if status == shared.MissionStatusCompleted {
			progress.CompletedMissions = append(progress.CompletedMissions, mission.ID)
			svc.ledger.Credit(progress, mission.RewardCurrency, mission.RewardAmount)
			cost := model.CurrencyMap{mission.RewardCurrency: mission.RewardAmount}
			if err := svc.ledger.Record(tx, playerID, shared.TransactionTypeReward, cost, "Reward: "+mission.Title, nil); err != nil {
				return err
			}
		} else {
			progress.FailedMissions = append(progress.FailedMissions, mission.ID)
		}
		return tx.SaveProgress(progress)
	})
	if err != nil {
		return nil, nil, err
	}

	log.WithFields(log.Fields{
		"player_id":  playerID,
		"mission_id": mission.ID,
		"status":     status,
	}).Info("Mission closed")
	return mission, progress, nil
}

// GetMission returns a mission after verifying the caller owns it.
func (svc *MissionService) GetMission(playerID, missionID string) (*model.Mission, error) {
	mission, _, err := svc.ownedMission(svc.store, playerID, missionID)
	return mission, err
}

func (svc *MissionService) ownedMission(store GameStore, playerID, missionID string) (*model.Mission, *model.PlayerProgress, error) {
	mission, err := store.GetMission(missionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, shared.NewNotFoundError(err, "mission not found")
		}
		return nil, nil, err
	}
	if mission.PlayerID != playerID {
		return nil, nil, shared.NewNotFoundError(nil, "mission not found")
	}

	progress, err := store.GetProgressByPlayerID(playerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, shared.NewNotFoundError(err, "player progress not found")
		}
		return nil, nil, err
	}
	return mission, progress, nil
}

func (svc *MissionService) loadCast(store GameStore, ids ...string) ([]*model.Character, error) {
	cast := make([]*model.Character, 0, len(ids))
	for _, id := range ids {
		c, err := store.GetCharacter(id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, shared.NewNotFoundError(err, "character not found: "+id)
			}
			return nil, err
		}
		cast = append(cast, c)
	}
	return cast, nil
}

func (svc *MissionService) wrapGatewayError(err error) error {
	return svc.engine.wrapGatewayError(err)
}

// rewardAmount rolls the diamond payout for a new mission, 2 to 5 inclusive.
func rewardAmount() int {
	return 2 + rand.IntN(4)
}

func removeString(list model.StringList, value string) model.StringList {
	out := list[:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
