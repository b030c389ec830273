package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/82deutschmark/Disavowed/dto"
	"github.com/82deutschmark/Disavowed/shared"

	"github.com/stretchr/testify/assert"
)

func newTestAuth(store *fakeStore) *AuthService {
	return &AuthService{
		store: store,
		jwtSvc: &JWTService{
			AccessTokenDuration: 24 * time.Hour,
			jwtSecretKey:        "test-secret",
		},
		progressSvc: newTestProgress(store),
	}
}

func registerRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:    "Agent@Example.com",
		Username: "agent47",
		Password: "correct horse battery",
	}
}

func TestRegister(t *testing.T) {
	t.Run("Creates the account and its progress record", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestAuth(store)

		resp, err := svc.Register(registerRequest())

		assert.NoError(t, err)
		assert.NotEmpty(t, resp.UserID)
		assert.Equal(t, "user_"+resp.UserID, resp.PlayerID)

		user, err := store.GetUserByEmailOrUsername("agent@example.com")
		assert.NoError(t, err)
		assert.Equal(t, "agent47", user.Username)
		assert.NotEqual(t, "correct horse battery", user.Password)

		progress, err := store.GetProgressByPlayerID(resp.PlayerID)
		assert.NoError(t, err)
		assert.Equal(t, shared.DefaultBalances[shared.CurrencyDollar], progress.Balance(shared.CurrencyDollar))
	})

	t.Run("Duplicate email conflicts, case-insensitively", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestAuth(store)

		_, err := svc.Register(registerRequest())
		assert.NoError(t, err)

		dup := registerRequest()
		dup.Email = "AGENT@example.COM"
		dup.Username = "someone_else"
		_, err = svc.Register(dup)

		appErr, ok := shared.GetAppError(err)
		assert.True(t, ok)
		assert.Equal(t, http.StatusConflict, appErr.StatusCode)
	})

	t.Run("Duplicate username conflicts", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestAuth(store)

		_, err := svc.Register(registerRequest())
		assert.NoError(t, err)

		dup := registerRequest()
		dup.Email = "other@example.com"
		_, err = svc.Register(dup)

		appErr, ok := shared.GetAppError(err)
		assert.True(t, ok)
		assert.Equal(t, http.StatusConflict, appErr.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	seed := func(t *testing.T) (*fakeStore, *AuthService, string) {
		store := newFakeStore()
		svc := newTestAuth(store)
		resp, err := svc.Register(registerRequest())
		assert.NoError(t, err)
		return store, svc, resp.UserID
	}

	t.Run("By username", func(t *testing.T) {
		_, svc, userID := seed(t)

		resp, err := svc.Login(&dto.LoginRequest{EmailOrUsername: "agent47", Password: "correct horse battery"})

		assert.NoError(t, err)
		assert.Equal(t, userID, resp.UserID)
		assert.Equal(t, "user_"+userID, resp.PlayerID)
		assert.NotEmpty(t, resp.Tokens.AccessToken)
	})

	t.Run("By email", func(t *testing.T) {
		_, svc, _ := seed(t)

		_, err := svc.Login(&dto.LoginRequest{EmailOrUsername: "agent@example.com", Password: "correct horse battery"})

		assert.NoError(t, err)
	})

	t.Run("Token round-trips through verification", func(t *testing.T) {
		_, svc, userID := seed(t)

		resp, err := svc.Login(&dto.LoginRequest{EmailOrUsername: "agent47", Password: "correct horse battery"})
		assert.NoError(t, err)

		verified, err := svc.jwtSvc.VerifyJWTToken(resp.Tokens.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, userID, verified)
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, svc, _ := seed(t)

		_, err := svc.Login(&dto.LoginRequest{EmailOrUsername: "agent47", Password: "wrong"})

		appErr, ok := shared.GetAppError(err)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
	})

	t.Run("Unknown account", func(t *testing.T) {
		_, svc, _ := seed(t)

		_, err := svc.Login(&dto.LoginRequest{EmailOrUsername: "nobody", Password: "whatever"})

		appErr, ok := shared.GetAppError(err)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
	})
}
