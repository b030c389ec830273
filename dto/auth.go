package dto

// ==================== AUTHENTICATION REQUEST DTOs ====================

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email" example:"agent@example.com"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum" example:"agent47"`
	Password string `json:"password" validate:"required,strong_password" example:"SecurePass123!"`
}

func (r RegisterRequest) Validate() error {
	return GetValidator().Struct(r)
}

type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username" validate:"required" example:"agent@example.com"`
	Password        string `json:"password" validate:"required" example:"SecurePass123!"`
}

func (l LoginRequest) Validate() error {
	return GetValidator().Struct(l)
}

// MergeProgressRequest attaches a guest session's progress to the
// authenticated account after login.
type MergeProgressRequest struct {
	GuestPlayerID string `json:"guest_player_id" validate:"required,uuid4"`
}

func (m MergeProgressRequest) Validate() error {
	return GetValidator().Struct(m)
}

// ==================== AUTHENTICATION RESPONSE DTOs ====================

type TokenPair struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type RegisterResponse struct {
	UserID   string `json:"user_id"`
	PlayerID string `json:"player_id"`
}

type LoginResponse struct {
	UserID   string     `json:"user_id"`
	PlayerID string     `json:"player_id"`
	Tokens   *TokenPair `json:"tokens"`
}
