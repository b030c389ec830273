package model

import "time"

// Transaction is an immutable audit entry for a currency movement. It is
// write-only history: balances are never computed from it.
type Transaction struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	PlayerID    string    `json:"player_id" gorm:"index;not null"`
	Type        string    `json:"transaction_type" gorm:"size:50;not null"`
	Currency    string    `json:"currency" gorm:"size:10"`
	Amount      int       `json:"amount" gorm:"not null"`
	Description string    `json:"description"`
	StoryNodeID *string   `json:"story_node_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
