package services

import (
	"errors"

	"github.com/82deutschmark/Disavowed/model"
)

var ErrNotFound = errors.New("record not found")

// GameStore is the persistence contract the game services run against. The
// postgres service implements it; tests run the engine against an in-memory
// fake. Transaction yields a store scoped to one database transaction: the
// callback either commits as a whole or rolls back as a whole, which is the
// atomicity boundary the choice-resolution engine relies on.
type GameStore interface {
	Transaction(fn func(tx GameStore) error) error

	GetUserByID(id string) (*model.User, error)
	GetUserByEmailOrUsername(emailOrUsername string) (*model.User, error)
	CreateUser(user *model.User) error
	SaveUser(user *model.User) error

	GetProgressByPlayerID(playerID string) (*model.PlayerProgress, error)
	GetProgressByUserID(userID string) (*model.PlayerProgress, error)
	CreateProgress(progress *model.PlayerProgress) error
	SaveProgress(progress *model.PlayerProgress) error
	DeleteProgress(id string) error

	GetCharacter(id string) (*model.Character, error)
	ListCharacters() ([]model.Character, error)
	RandomCharacters(limit int) ([]model.Character, error)
	CreateCharacter(character *model.Character) error

	GetMission(id string) (*model.Mission, error)
	CreateMission(mission *model.Mission) error
	SaveMission(mission *model.Mission) error

	CreateStory(story *model.StoryGeneration) error
	GetStory(id string) (*model.StoryGeneration, error)

	GetNode(id string) (*model.StoryNode, error)
	CreateNode(node *model.StoryNode) error
	SaveNode(node *model.StoryNode) error

	GetChoice(id string) (*model.StoryChoice, error)
	GetChoicesByNode(nodeID string) ([]model.StoryChoice, error)
	CreateChoice(choice *model.StoryChoice) error
	SaveChoice(choice *model.StoryChoice) error

	CreateTransaction(transaction *model.Transaction) error
	ListTransactions(playerID string) ([]model.Transaction, error)

	CreateSceneImage(scene *model.SceneImage) error
	RandomSceneImage() (*model.SceneImage, error)
}
