package services

import (
	"time"

	"github.com/82deutschmark/Disavowed/model"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// LedgerService owns the currency rules. Balances live on the player's
// progress record; Record appends audit rows that are never read back for
// balance computation.
type LedgerService struct {
	context.DefaultService
}

const LEDGER_SVC = "ledger_svc"

func (svc LedgerService) Id() string {
	return LEDGER_SVC
}

func (svc *LedgerService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *LedgerService) Start() error {
	return nil
}

// Balance returns the player's balance for a currency kind, 0 when unknown.
func (svc *LedgerService) Balance(progress *model.PlayerProgress, kind string) int {
	return progress.Balance(kind)
}

// CanAfford reports whether every kind in the requirement is covered. An
// empty requirement is always affordable.
func (svc *LedgerService) CanAfford(progress *model.PlayerProgress, requirement model.CurrencyMap) bool {
	for kind, amount := range requirement {
		if progress.Balance(kind) < amount {
			return false
		}
	}
	return true
}

// Debit applies the requirement to the balances, flooring each kind at zero.
// Affordability is the caller's responsibility; the floor guarantees a
// negative balance can never be produced regardless.
func (svc *LedgerService) Debit(progress *model.PlayerProgress, requirement model.CurrencyMap) {
	if progress.CurrencyBalances == nil {
		progress.CurrencyBalances = model.CurrencyMap{}
	}
	for kind, amount := range requirement {
		balance := progress.CurrencyBalances[kind] - amount
		if balance < 0 {
			balance = 0
		}
		progress.CurrencyBalances[kind] = balance
	}
}

// Credit adds to a single kind. Used by session merge and mission rewards.
func (svc *LedgerService) Credit(progress *model.PlayerProgress, kind string, amount int) {
	if progress.CurrencyBalances == nil {
		progress.CurrencyBalances = model.CurrencyMap{}
	}
	progress.CurrencyBalances[kind] += amount
}

// Record appends one immutable audit entry per currency kind in the cost.
func (svc *LedgerService) Record(store GameStore, playerID, txType string, cost model.CurrencyMap, description string, nodeID *string) error {
	for kind, amount := range cost {
		entry := &model.Transaction{
			ID:          uuid.New().String(),
			PlayerID:    playerID,
			Type:        txType,
			Currency:    kind,
			Amount:      amount,
			Description: description,
			StoryNodeID: nodeID,
			CreatedAt:   time.Now().UTC(),
		}
		if err := store.CreateTransaction(entry); err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"player_id": playerID,
			"type":      txType,
			"currency":  kind,
			"amount":    amount,
		}).Debug("Ledger entry recorded")
	}
	return nil
}
