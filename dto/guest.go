package dto

import "github.com/82deutschmark/Disavowed/model"

type CreateSessionRequest struct {
	DeviceID string `json:"device_id" validate:"required,min=1,max=100"`
}

func (c CreateSessionRequest) Validate() error {
	return GetValidator().Struct(c)
}

type CreateSessionResponse struct {
	PlayerID string                `json:"player_id"`
	Progress *model.PlayerProgress `json:"progress"`
}
