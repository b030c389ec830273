package model

import (
	"encoding/json"
	"time"
)

// PlayerProgress is the one persistent game-state record per player. PlayerID
// identifies guests (a raw UUID) and authenticated players ("user_" + user ID)
// alike; UserID links the record to an account once one exists.
//
// CurrencyBalances is the single source of truth for balances; the transaction
// table is write-only history.
type PlayerProgress struct {
	ID               string  `json:"id" gorm:"primaryKey"`
	PlayerID         string  `json:"player_id" gorm:"uniqueIndex;not null"`
	UserID           *string `json:"user_id,omitempty" gorm:"index"`
	CurrentNodeID    *string `json:"current_node_id,omitempty"`
	CurrentStoryID   *string `json:"current_story_id,omitempty"`
	Level            int     `json:"level" gorm:"not null;default:1"`
	ExperiencePoints int     `json:"experience_points"`

	ChoiceHistory         ChoiceHistory `json:"choice_history" gorm:"type:jsonb"`
	CurrencyBalances      CurrencyMap   `json:"currency_balances" gorm:"type:jsonb"`
	EncounteredCharacters StringList    `json:"encountered_characters" gorm:"type:jsonb"`
	ActiveMissions        StringList    `json:"active_missions" gorm:"type:jsonb"`
	CompletedMissions     StringList    `json:"completed_missions" gorm:"type:jsonb"`
	FailedMissions        StringList    `json:"failed_missions" gorm:"type:jsonb"`

	// Free-form state handed to the content gateway as generation context.
	GameState json.RawMessage `json:"game_state" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *PlayerProgress) Balance(kind string) int {
	if p.CurrencyBalances == nil {
		return 0
	}
	return p.CurrencyBalances[kind]
}
