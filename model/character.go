package model

import (
	"encoding/json"
	"time"
)

const (
	RoleMissionGiver = "mission-giver"
	RoleVillain      = "villain"
	RolePartner      = "partner"
	RoleCivilian     = "civilian"
)

type Character struct {
	ID          string          `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"size:200;not null"`
	Role        string          `json:"role" gorm:"size:100;index"`
	Traits      json.RawMessage `json:"traits" gorm:"type:jsonb"`
	Backstory   string          `json:"backstory"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url" gorm:"size:500"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
