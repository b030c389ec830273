package services

import (
	"encoding/json"
	"testing"

	"github.com/82deutschmark/Disavowed/model"
	"github.com/82deutschmark/Disavowed/shared"

	"github.com/stretchr/testify/assert"
)

func TestCreateNode(t *testing.T) {
	store := newFakeStore()
	svc := &StoryService{store: store}

	characterID := "char_a"
	parentID := "node-parent"
	branch, _ := json.Marshal(model.BranchMetadata{MissionID: "mission-1", NodeType: model.NodeTypeOpening})
	node, err := svc.CreateNode(store, "story-1", "The drop point is compromised.", &characterID, &parentID, branch, false)

	assert.NoError(t, err)
	assert.NotEmpty(t, node.ID)
	assert.True(t, node.GeneratedByAI)

	saved, err := store.GetNode(node.ID)
	assert.NoError(t, err)
	assert.Equal(t, "The drop point is compromised.", saved.NarrativeText)
	assert.Equal(t, characterID, *saved.CharacterID)
	assert.Equal(t, parentID, *saved.ParentNodeID)
	assert.Equal(t, "mission-1", saved.Branch().MissionID)
	assert.Equal(t, model.NodeTypeOpening, saved.Branch().NodeType)
}

func TestAttachChoices(t *testing.T) {
	t.Run("Assigns ids and binds to the node", func(t *testing.T) {
		store := newFakeStore()
		svc := &StoryService{store: store}

		attached, err := svc.AttachChoices(store, "node-1", []model.StoryChoice{
			{ChoiceText: "Run", CurrencyRequirements: model.CurrencyMap{shared.CurrencyDollar: 5}},
			{ChoiceText: "Hide", CurrencyRequirements: model.CurrencyMap{shared.CurrencyPound: 12}},
		})

		assert.NoError(t, err)
		assert.Len(t, attached, 2)
		for _, c := range attached {
			assert.NotEmpty(t, c.ID)
			assert.Equal(t, "node-1", c.NodeID)
		}

		stored, err := store.GetChoicesByNode("node-1")
		assert.NoError(t, err)
		assert.Len(t, stored, 2)
	})

	t.Run("Caps at three per node", func(t *testing.T) {
		store := newFakeStore()
		svc := &StoryService{store: store}

		attached, err := svc.AttachChoices(store, "node-1", []model.StoryChoice{
			{ChoiceText: "A"}, {ChoiceText: "B"}, {ChoiceText: "C"}, {ChoiceText: "D"},
		})

		assert.NoError(t, err)
		assert.Len(t, attached, 3)

		stored, _ := store.GetChoicesByNode("node-1")
		assert.Len(t, stored, 3)
	})
}

func TestMemoizeNext(t *testing.T) {
	t.Run("First resolution writes the link", func(t *testing.T) {
		store := newFakeStore()
		svc := &StoryService{store: store}
		choice := &model.StoryChoice{ID: "choice-1", NodeID: "node-1", ChoiceText: "Go"}
		_ = store.CreateChoice(choice)

		err := svc.MemoizeNext(store, choice, "node-2")

		assert.NoError(t, err)
		saved, _ := store.GetChoice("choice-1")
		assert.Equal(t, "node-2", *saved.NextNodeID)
	})

	t.Run("The link is write-once", func(t *testing.T) {
		store := newFakeStore()
		svc := &StoryService{store: store}
		choice := &model.StoryChoice{ID: "choice-1", NodeID: "node-1", ChoiceText: "Go"}
		_ = store.CreateChoice(choice)

		assert.NoError(t, svc.MemoizeNext(store, choice, "node-2"))
		assert.NoError(t, svc.MemoizeNext(store, choice, "node-3"))

		saved, _ := store.GetChoice("choice-1")
		assert.Equal(t, "node-2", *saved.NextNodeID)
	})
}

func TestNodeWithChoices(t *testing.T) {
	store := newFakeStore()
	svc := &StoryService{store: store}

	_ = store.CreateNode(&model.StoryNode{ID: "node-1", StoryID: "story-1", NarrativeText: "Text"})
	_ = store.CreateChoice(&model.StoryChoice{ID: "choice-1", NodeID: "node-1", ChoiceText: "Go"})

	t.Run("Loads the node and its choices", func(t *testing.T) {
		node, choices, err := svc.NodeWithChoices(store, "node-1")

		assert.NoError(t, err)
		assert.Equal(t, "node-1", node.ID)
		assert.Len(t, choices, 1)
	})

	t.Run("Missing node", func(t *testing.T) {
		_, _, err := svc.NodeWithChoices(store, "missing")

		_, ok := shared.GetAppError(err)
		assert.True(t, ok)
	})
}
