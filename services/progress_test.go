package services

import (
	"net/http"
	"testing"

	"github.com/82deutschmark/Disavowed/model"
	"github.com/82deutschmark/Disavowed/shared"

	"github.com/stretchr/testify/assert"
)

func newTestProgress(store *fakeStore) *ProgressService {
	return &ProgressService{store: store}
}

func TestGetOrCreate(t *testing.T) {
	t.Run("First contact creates the default wallet", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestProgress(store)

		progress, err := svc.GetOrCreate("guest-1", nil)

		assert.NoError(t, err)
		assert.Equal(t, "guest-1", progress.PlayerID)
		assert.Equal(t, 1, progress.Level)
		for kind, amount := range shared.DefaultBalances {
			assert.Equal(t, amount, progress.Balance(kind))
		}

		saved, err := store.GetProgressByPlayerID("guest-1")
		assert.NoError(t, err)
		assert.Equal(t, progress.ID, saved.ID)
	})

	t.Run("Second call returns the existing record", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestProgress(store)

		first, err := svc.GetOrCreate("guest-1", nil)
		assert.NoError(t, err)
		first.CurrencyBalances[shared.CurrencyDollar] = 7
		_ = store.SaveProgress(first)

		second, err := svc.GetOrCreate("guest-1", nil)

		assert.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 7, second.Balance(shared.CurrencyDollar))
	})
}

func TestMerge(t *testing.T) {
	nodeID := "node-guest"
	storyID := "story-guest"

	seedGuest := func(store *fakeStore) *model.PlayerProgress {
		guest := &model.PlayerProgress{
			ID:       "progress-guest",
			PlayerID: "guest-1",
			Level:    3,
			CurrencyBalances: model.CurrencyMap{
				shared.CurrencyDollar: 10,
			},
			ChoiceHistory: model.ChoiceHistory{
				{ChoiceID: "c-1", ChoiceText: "Guest move", NodeID: nodeID},
			},
			EncounteredCharacters: model.StringList{"char_a", "char_b"},
			ActiveMissions:        model.StringList{"mission-guest"},
			ExperiencePoints:      120,
			CurrentNodeID:         &nodeID,
			CurrentStoryID:        &storyID,
		}
		_ = store.CreateProgress(guest)
		return guest
	}

	t.Run("Balances sum, lists concatenate, guest pointer wins", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestProgress(store)
		seedGuest(store)

		account, err := svc.Merge("guest-1", "user-9")

		assert.NoError(t, err)
		assert.Equal(t, "user_user-9", account.PlayerID)
		assert.Equal(t, shared.DefaultBalances[shared.CurrencyDollar]+10, account.Balance(shared.CurrencyDollar))
		assert.Equal(t, shared.DefaultBalances[shared.CurrencyDiamond], account.Balance(shared.CurrencyDiamond))
		assert.Len(t, account.ChoiceHistory, 1)
		assert.Equal(t, model.StringList{"char_a", "char_b"}, account.EncounteredCharacters)
		assert.Equal(t, model.StringList{"mission-guest"}, account.ActiveMissions)
		assert.Equal(t, 120, account.ExperiencePoints)
		assert.Equal(t, 3, account.Level)
		assert.Equal(t, nodeID, *account.CurrentNodeID)
		assert.Equal(t, storyID, *account.CurrentStoryID)

		_, err = store.GetProgressByPlayerID("guest-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Existing account history precedes the guest's", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestProgress(store)

		account, err := svc.GetOrCreate("user_user-9", ptr("user-9"))
		assert.NoError(t, err)
		account.ChoiceHistory = model.ChoiceHistory{{ChoiceID: "c-0", ChoiceText: "Account move", NodeID: "node-old"}}
		_ = store.SaveProgress(account)

		seedGuest(store)

		merged, err := svc.Merge("guest-1", "user-9")

		assert.NoError(t, err)
		assert.Len(t, merged.ChoiceHistory, 2)
		assert.Equal(t, "c-0", merged.ChoiceHistory[0].ChoiceID)
		assert.Equal(t, "c-1", merged.ChoiceHistory[1].ChoiceID)
	})

	t.Run("Account keeps its pointer when the guest has none", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestProgress(store)

		account, err := svc.GetOrCreate("user_user-9", ptr("user-9"))
		assert.NoError(t, err)
		accountNode := "node-account"
		account.CurrentNodeID = &accountNode
		_ = store.SaveProgress(account)

		guest := seedGuest(store)
		guest.CurrentNodeID = nil
		guest.CurrentStoryID = nil
		_ = store.SaveProgress(guest)

		merged, err := svc.Merge("guest-1", "user-9")

		assert.NoError(t, err)
		assert.Equal(t, accountNode, *merged.CurrentNodeID)
	})

	t.Run("A session already bound to an account cannot merge again", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestProgress(store)

		guest := seedGuest(store)
		guest.UserID = ptr("user-8")
		_ = store.SaveProgress(guest)

		_, err := svc.Merge("guest-1", "user-9")

		appErr, ok := shared.GetAppError(err)
		assert.True(t, ok)
		assert.Equal(t, http.StatusConflict, appErr.StatusCode)
	})

	t.Run("Unknown guest session", func(t *testing.T) {
		svc := newTestProgress(newFakeStore())

		_, err := svc.Merge("nobody", "user-9")

		appErr, ok := shared.GetAppError(err)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	})
}

func TestTransactions(t *testing.T) {
	store := newFakeStore()
	svc := newTestProgress(store)
	ledger := &LedgerService{}

	_ = ledger.Record(store, "player-1", shared.TransactionTypeChoice, model.CurrencyMap{shared.CurrencyDollar: 5}, "first", nil)
	_ = ledger.Record(store, "player-1", shared.TransactionTypeReward, model.CurrencyMap{shared.CurrencyDiamond: 3}, "second", nil)
	_ = ledger.Record(store, "player-2", shared.TransactionTypeChoice, model.CurrencyMap{shared.CurrencyYen: 50}, "other player", nil)

	rows, err := svc.Transactions("player-1")

	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "second", rows[0].Description)
	assert.Equal(t, "first", rows[1].Description)
}

func ptr[T any](v T) *T {
	return &v
}
