package dto

import "github.com/82deutschmark/Disavowed/model"

// ==================== GAME REQUEST DTOs ====================

type CreateMissionRequest struct {
	GiverID          string `json:"giver_id" validate:"required"`
	TargetID         string `json:"target_id" validate:"required"`
	PartnerID        string `json:"partner_id" validate:"required"`
	ExtraCharacterID string `json:"extra_character_id" validate:"required"`
	PlayerName       string `json:"player_name" validate:"required,max=100"`
	PlayerGender     string `json:"player_gender" validate:"omitempty,oneof=he/him she/her they/them"`
	NarrativeStyle   string `json:"narrative_style" validate:"omitempty,max=100"`
	Mood             string `json:"mood" validate:"omitempty,max=100"`
}

func (c CreateMissionRequest) Validate() error {
	return GetValidator().Struct(c)
}

type CreateBriefMissionRequest struct {
	GiverID string `json:"giver_id" validate:"required"`
}

func (c CreateBriefMissionRequest) Validate() error {
	return GetValidator().Struct(c)
}

type ChoiceRequest struct {
	ChoiceID string `json:"choice_id" validate:"required"`
}

func (c ChoiceRequest) Validate() error {
	return GetValidator().Struct(c)
}

type CustomChoiceRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}

func (c CustomChoiceRequest) Validate() error {
	return GetValidator().Struct(c)
}

// ==================== GAME RESPONSE DTOs ====================

// ChoiceOutcome is the state handed back after a node is resolved: the node
// the player now stands on, its outgoing choices and the wallet after any
// debit.
type ChoiceOutcome struct {
	Node     *model.StoryNode    `json:"node"`
	Choices  []model.StoryChoice `json:"choices"`
	Balances model.CurrencyMap   `json:"currency_balances"`
}

type MissionResponse struct {
	Mission *model.Mission `json:"mission"`
	Node    *NodeResponse  `json:"node,omitempty"`
}

type NodeResponse struct {
	Node      *model.StoryNode    `json:"node"`
	Choices   []model.StoryChoice `json:"choices"`
	Character *model.Character    `json:"character,omitempty"`
	Scene     *SceneImageResponse `json:"scene,omitempty"`
	Balances  model.CurrencyMap   `json:"currency_balances"`
}

type CurrencyCheckResponse struct {
	CanAfford bool              `json:"can_afford"`
	Cost      model.CurrencyMap `json:"cost"`
	Balances  model.CurrencyMap `json:"currency_balances"`
}
