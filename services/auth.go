package services

import (
	"errors"
	"strings"
	"time"

	"github.com/82deutschmark/Disavowed/dto"
	"github.com/82deutschmark/Disavowed/model"
	"github.com/82deutschmark/Disavowed/shared"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles account registration and login. Accounts are optional;
// their purpose is durable progress and the guest-session merge.
type AuthService struct {
	appContext.DefaultService

	store       GameStore
	jwtSvc      *JWTService
	progressSvc *ProgressService
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *appContext.Context) error {
	svc.store = svc.Service(POSTGRES_SVC).(*PostgresService).Store()
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.progressSvc = svc.Service(PROGRESS_SVC).(*ProgressService)
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	return nil
}

func (svc *AuthService) Register(req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if _, err := svc.store.GetUserByEmailOrUsername(email); err == nil {
		return nil, shared.NewConflictError(nil, "email already registered")
	}
	if _, err := svc.store.GetUserByEmailOrUsername(username); err == nil {
		return nil, shared.NewConflictError(nil, "username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to hash password")
	}

	user := &model.User{
		ID:       uuid.NewString(),
		Email:    email,
		Username: username,
		Password: string(hashed),
	}
	if err := svc.store.CreateUser(user); err != nil {
		return nil, err
	}

	playerID := "user_" + user.ID
	if _, err := svc.progressSvc.GetOrCreate(playerID, &user.ID); err != nil {
		return nil, err
	}

	log.WithField("user_id", user.ID).Info("Account registered")
	return &dto.RegisterResponse{UserID: user.ID, PlayerID: playerID}, nil
}

func (svc *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := svc.store.GetUserByEmailOrUsername(strings.TrimSpace(req.EmailOrUsername))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, shared.NewUnauthorizedError(nil, "invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, shared.NewUnauthorizedError(nil, "invalid credentials")
	}

	tokens, err := svc.jwtSvc.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to issue tokens")
	}

	user.LastLogin = time.Now().UTC()
	if err := svc.store.SaveUser(user); err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		UserID:   user.ID,
		PlayerID: "user_" + user.ID,
		Tokens:   tokens,
	}, nil
}
