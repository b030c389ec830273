package handlers

import (
	"context"
	"io"

	"github.com/82deutschmark/Disavowed/dto"
	"github.com/82deutschmark/Disavowed/model"
)

type AuthServiceInterface interface {
	Register(req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type ProgressServiceInterface interface {
	Get(playerID string) (*model.PlayerProgress, error)
	GetOrCreate(playerID string, userID *string) (*model.PlayerProgress, error)
	Merge(guestPlayerID, userID string) (*model.PlayerProgress, error)
	Transactions(playerID string) ([]model.Transaction, error)
}

type MissionServiceInterface interface {
	CreateFullMission(ctx context.Context, playerID string, req *dto.CreateMissionRequest) (*model.Mission, *dto.ChoiceOutcome, error)
	CreateMission(ctx context.Context, playerID, giverID string) (*model.Mission, error)
	StartMissionStory(ctx context.Context, playerID, missionID string) (*model.Mission, *dto.ChoiceOutcome, error)
	CompleteMission(playerID, missionID string) (*model.Mission, *model.PlayerProgress, error)
	FailMission(playerID, missionID string) (*model.Mission, *model.PlayerProgress, error)
	GetMission(playerID, missionID string) (*model.Mission, error)
}

type EngineServiceInterface interface {
	ProcessChoice(ctx context.Context, playerID, choiceID string) (*dto.ChoiceOutcome, error)
	ProcessCustomChoice(ctx context.Context, playerID, text string) (*dto.ChoiceOutcome, error)
	CheckAffordability(playerID, choiceID string) (bool, model.CurrencyMap, model.CurrencyMap, error)
	CurrentNode(playerID string) (*dto.ChoiceOutcome, error)
}

type CharacterServiceInterface interface {
	ListCharacters() ([]model.Character, error)
	GetCharacter(id string) (*model.Character, error)
}

type SceneServiceInterface interface {
	Upload(name, sceneType, setting string, reader io.Reader, size int64, contentType string) (*model.SceneImage, error)
	RandomScene() (*dto.SceneImageResponse, error)
}
