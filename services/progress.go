package services

import (
	"errors"

	"github.com/82deutschmark/Disavowed/model"
	"github.com/82deutschmark/Disavowed/shared"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ProgressService owns player progress records and the merge of a guest
// session into an account.
type ProgressService struct {
	appContext.DefaultService

	store GameStore
}

const PROGRESS_SVC = "progress_svc"

func (svc ProgressService) Id() string {
	return PROGRESS_SVC
}

func (svc *ProgressService) Configure(ctx *appContext.Context) error {
	svc.store = svc.Service(POSTGRES_SVC).(*PostgresService).Store()
	return svc.DefaultService.Configure(ctx)
}

func (svc *ProgressService) Start() error {
	return nil
}

// Get returns the player's progress record.
func (svc *ProgressService) Get(playerID string) (*model.PlayerProgress, error) {
	progress, err := svc.store.GetProgressByPlayerID(playerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, shared.NewNotFoundError(err, "player progress not found")
		}
		return nil, err
	}
	return progress, nil
}

// Transactions returns the player's audit trail, newest first.
func (svc *ProgressService) Transactions(playerID string) ([]model.Transaction, error) {
	return svc.store.ListTransactions(playerID)
}

// GetOrCreate returns the player's progress, creating a fresh record with
// the default wallet on first contact.
func (svc *ProgressService) GetOrCreate(playerID string, userID *string) (*model.PlayerProgress, error) {
	progress, err := svc.store.GetProgressByPlayerID(playerID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	progress = &model.PlayerProgress{
		ID:               uuid.NewString(),
		PlayerID:         playerID,
		UserID:           userID,
		Level:            1,
		ChoiceHistory:    model.ChoiceHistory{},
		CurrencyBalances: model.CurrencyMap{},
	}
	for kind, amount := range shared.DefaultBalances {
		progress.CurrencyBalances[kind] = amount
	}
	if err := svc.store.CreateProgress(progress); err != nil {
		return nil, err
	}

	log.WithField("player_id", playerID).Info("Progress record created")
	return progress, nil
}

// Merge folds a guest session into an account's progress: balances are
// summed, histories and mission lists concatenated, and the guest's story
// pointer wins when it has one. The guest record is deleted afterwards so
// the same session cannot be merged twice.
func (svc *ProgressService) Merge(guestPlayerID, userID string) (*model.PlayerProgress, error) {
	guest, err := svc.store.GetProgressByPlayerID(guestPlayerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, shared.NewNotFoundError(err, "guest session not found")
		}
		return nil, err
	}
	if guest.UserID != nil {
		return nil, shared.NewConflictError(nil, "session already belongs to an account")
	}

	accountPlayerID := "user_" + userID
	account, err := svc.GetOrCreate(accountPlayerID, &userID)
	if err != nil {
		return nil, err
	}

	err = svc.store.Transaction(func(tx GameStore) error {
		for kind, amount := range guest.CurrencyBalances {
			account.CurrencyBalances[kind] += amount
		}
		account.ChoiceHistory = append(account.ChoiceHistory, guest.ChoiceHistory...)
		for _, id := range guest.EncounteredCharacters {
			account.EncounteredCharacters = appendUnique(account.EncounteredCharacters, id)
		}
		account.ActiveMissions = append(account.ActiveMissions, guest.ActiveMissions...)
		account.CompletedMissions = append(account.CompletedMissions, guest.CompletedMissions...)
		account.FailedMissions = append(account.FailedMissions, guest.FailedMissions...)
		account.ExperiencePoints += guest.ExperiencePoints
		if guest.Level > account.Level {
			account.Level = guest.Level
		}
		if guest.CurrentNodeID != nil {
			account.CurrentNodeID = guest.CurrentNodeID
			account.CurrentStoryID = guest.CurrentStoryID
			account.GameState = guest.GameState
		}

		if err := tx.SaveProgress(account); err != nil {
			return err
		}
		return tx.DeleteProgress(guest.ID)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"guest_player_id": guestPlayerID,
		"user_id":         userID,
	}).Info("Guest session merged into account")
	return account, nil
}
