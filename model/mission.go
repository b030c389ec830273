package model

import "time"

type Mission struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	PlayerID       string     `json:"player_id" gorm:"index;not null"`
	Title          string     `json:"title" gorm:"size:200;not null"`
	Description    string     `json:"description"`
	GiverID        string     `json:"giver_id" gorm:"not null"`
	TargetID       *string    `json:"target_id,omitempty"`
	Objective      string     `json:"objective"`
	Status         string     `json:"status" gorm:"size:50;not null"`
	Difficulty     string     `json:"difficulty" gorm:"size:20"`
	RewardCurrency string     `json:"reward_currency" gorm:"size:10"`
	RewardAmount   int        `json:"reward_amount"`
	Deadline       string     `json:"deadline" gorm:"size:200"`
	StoryID        *string    `json:"story_id,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
