package services

import (
	"encoding/json"
	"errors"

	"github.com/82deutschmark/Disavowed/model"
	"github.com/82deutschmark/Disavowed/shared"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
)

// StoryService owns the narrative graph: nodes, their outgoing choices and
// the write-once links between them.
type StoryService struct {
	appContext.DefaultService

	store GameStore
}

const STORY_SVC = "story_svc"

func (svc StoryService) Id() string {
	return STORY_SVC
}

func (svc *StoryService) Configure(ctx *appContext.Context) error {
	svc.store = svc.Service(POSTGRES_SVC).(*PostgresService).Store()
	return svc.DefaultService.Configure(ctx)
}

func (svc *StoryService) Start() error {
	return nil
}

// CreateNode persists a new narrative node. The parent link is optional;
// opening nodes have none. Opening nodes get a fresh metadata blob, every
// later node inherits its parent's.
func (svc *StoryService) CreateNode(store GameStore, storyID string, text string, characterID *string, parentNodeID *string, metadata json.RawMessage, isEndpoint bool) (*model.StoryNode, error) {
	node := &model.StoryNode{
		ID:             uuid.NewString(),
		StoryID:        storyID,
		NarrativeText:  text,
		CharacterID:    characterID,
		ParentNodeID:   parentNodeID,
		BranchMetadata: metadata,
		IsEndpoint:     isEndpoint,
		GeneratedByAI:  true,
	}
	if err := store.CreateNode(node); err != nil {
		return nil, err
	}
	return node, nil
}

// NodeWithChoices loads a node and its outgoing choices in one call.
func (svc *StoryService) NodeWithChoices(store GameStore, nodeID string) (*model.StoryNode, []model.StoryChoice, error) {
	node, err := store.GetNode(nodeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, shared.NewNotFoundError(err, "story node not found")
		}
		return nil, nil, err
	}

	choices, err := store.GetChoicesByNode(nodeID)
	if err != nil {
		return nil, nil, err
	}
	return node, choices, nil
}

// AttachChoices persists priced choices on a node, capped at three per node.
func (svc *StoryService) AttachChoices(store GameStore, nodeID string, choices []model.StoryChoice) ([]model.StoryChoice, error) {
	if len(choices) > 3 {
		choices = choices[:3]
	}
	out := make([]model.StoryChoice, 0, len(choices))
	for i := range choices {
		c := choices[i]
		c.ID = uuid.NewString()
		c.NodeID = nodeID
		if err := store.CreateChoice(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ListCharacters returns the full character catalog.
func (svc *StoryService) ListCharacters() ([]model.Character, error) {
	return svc.store.ListCharacters()
}

// GetCharacter returns one catalog character.
func (svc *StoryService) GetCharacter(id string) (*model.Character, error) {
	character, err := svc.store.GetCharacter(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, shared.NewNotFoundError(err, "character not found")
		}
		return nil, err
	}
	return character, nil
}

// MemoizeNext records the destination of a resolved choice. The link is
// single-assignment: once set it is never rewritten, so every player who
// picks this choice later lands on the same node.
func (svc *StoryService) MemoizeNext(store GameStore, choice *model.StoryChoice, nextNodeID string) error {
	if choice.NextNodeID != nil {
		return nil
	}
	choice.NextNodeID = &nextNodeID
	return store.SaveChoice(choice)
}
