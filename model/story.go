package model

import (
	"encoding/json"
	"time"
)

// StoryGeneration is the generation context owning a tree of nodes.
type StoryGeneration struct {
	ID              string          `json:"id" gorm:"primaryKey"`
	PrimaryConflict string          `json:"primary_conflict" gorm:"size:255"`
	Setting         string          `json:"setting" gorm:"size:255"`
	NarrativeStyle  string          `json:"narrative_style" gorm:"size:100"`
	Mood            string          `json:"mood" gorm:"size:100"`
	GeneratedStory  json.RawMessage `json:"generated_story" gorm:"type:jsonb"`
	CreatedAt       time.Time       `json:"created_at"`
}

// StoryNode is one narrative beat. Immutable once created except for the
// endpoint flag and metadata patches.
type StoryNode struct {
	ID             string          `json:"id" gorm:"primaryKey"`
	StoryID        string          `json:"story_id" gorm:"index;not null"`
	NarrativeText  string          `json:"narrative_text" gorm:"not null"`
	CharacterID    *string         `json:"character_id,omitempty"`
	IsEndpoint     bool            `json:"is_endpoint"`
	ParentNodeID   *string         `json:"parent_node_id,omitempty"`
	BranchMetadata json.RawMessage `json:"branch_metadata" gorm:"type:jsonb"`
	GeneratedByAI  bool            `json:"generated_by_ai" gorm:"default:true"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NodeTypeOpening marks the first node of a mission's story.
const NodeTypeOpening = "opening"

// BranchMetadata is the mission linkage stamped on a story's opening node
// and carried down to every node generated on that branch.
type BranchMetadata struct {
	MissionID         string          `json:"mission_id,omitempty"`
	NodeType          string          `json:"node_type,omitempty"`
	CharactersPresent []string        `json:"characters_present,omitempty"`
	AIGenerationMeta  *GenerationMeta `json:"ai_generation_meta,omitempty"`
}

// GenerationMeta records how the opening narrative was produced.
type GenerationMeta struct {
	NarrativeStyle string `json:"narrative_style"`
	Mood           string `json:"mood"`
	GeneratedAt    string `json:"generated_at"`
}

func (n *StoryNode) Branch() BranchMetadata {
	var meta BranchMetadata
	if len(n.BranchMetadata) > 0 {
		_ = json.Unmarshal(n.BranchMetadata, &meta)
	}
	return meta
}

// ChoiceMetadata classifies an authored choice.
type ChoiceMetadata struct {
	Tier            string `json:"tier"`
	RiskLevel       string `json:"risk_level"`
	CharacterUsed   string `json:"character_used,omitempty"`
	Consequence     string `json:"consequence,omitempty"`
	NextNodeSummary string `json:"next_node_summary,omitempty"`
	AIGenerated     bool   `json:"ai_generated"`
}

// StoryChoice is a priced option attached to a node. NextNodeID is a
// single-assignment cache: once resolved it never changes, so replaying the
// choice can never regenerate content or duplicate nodes.
type StoryChoice struct {
	ID                   string          `json:"id" gorm:"primaryKey"`
	NodeID               string          `json:"node_id" gorm:"index;not null"`
	ChoiceText           string          `json:"choice_text" gorm:"not null"`
	NextNodeID           *string         `json:"next_node_id,omitempty"`
	CurrencyRequirements CurrencyMap     `json:"currency_requirements" gorm:"type:jsonb"`
	Metadata             json.RawMessage `json:"choice_metadata" gorm:"type:jsonb"`
	CreatedAt            time.Time       `json:"created_at"`
}

func (c *StoryChoice) ChoiceMetadata() ChoiceMetadata {
	var meta ChoiceMetadata
	if len(c.Metadata) > 0 {
		_ = json.Unmarshal(c.Metadata, &meta)
	}
	return meta
}
