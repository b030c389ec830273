package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/82deutschmark/Disavowed/dto"
	"github.com/82deutschmark/Disavowed/model"
	"github.com/82deutschmark/Disavowed/shared"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EngineService resolves player choices: it gates on affordability, debits
// the wallet, records the audit trail, resolves or generates the next node
// and advances the player pointer. Everything after the gate runs inside one
// database transaction so a generation failure leaves no trace.
type EngineService struct {
	appContext.DefaultService

	store      GameStore
	ledger     *LedgerService
	story      *StoryService
	gateway    ContentGateway
	monitoring *MonitoringService

	// One mutex per player id. Serializes concurrent choice submissions for
	// the same player; players never contend with each other.
	playerLocks sync.Map
}

const ENGINE_SVC = "engine_svc"

func (svc EngineService) Id() string {
	return ENGINE_SVC
}

func (svc *EngineService) Configure(ctx *appContext.Context) error {
	svc.store = svc.Service(POSTGRES_SVC).(*PostgresService).Store()
	svc.ledger = svc.Service(LEDGER_SVC).(*LedgerService)
	svc.story = svc.Service(STORY_SVC).(*StoryService)
	svc.gateway = svc.Service(OPENAI_SVC).(ContentGateway)
	svc.monitoring = svc.Service(MONITORING_SVC).(*MonitoringService)
	return svc.DefaultService.Configure(ctx)
}

func (svc *EngineService) Start() error {
	return nil
}

func (svc *EngineService) lockPlayer(playerID string) func() {
	v, _ := svc.playerLocks.LoadOrStore(playerID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ProcessChoice resolves one authored choice for the player.
//
// Submitting a choice whose destination was already resolved for this player
// (the latest history entry references it) is treated as a retry and served
// as a free re-read; the wallet is only ever charged once per traversal.
func (svc *EngineService) ProcessChoice(ctx context.Context, playerID, choiceID string) (*dto.ChoiceOutcome, error) {
	unlock := svc.lockPlayer(playerID)
	defer unlock()

	progress, err := svc.store.GetProgressByPlayerID(playerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, shared.NewNotFoundError(err, "player progress not found")
		}
		return nil, err
	}

	choice, err := svc.store.GetChoice(choiceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, shared.NewNotFoundError(err, "choice not found")
		}
		return nil, err
	}

	if progress.CurrentNodeID == nil || choice.NodeID != *progress.CurrentNodeID {
		// Retry of the immediately preceding choice: the pointer already
		// moved past the choice's node. Serve the destination without
		// touching the wallet.
		if svc.isReplay(progress, choice) {
			node, choices, err := svc.story.NodeWithChoices(svc.store, *choice.NextNodeID)
			if err != nil {
				return nil, err
			}
			return &dto.ChoiceOutcome{Node: node, Choices: choices, Balances: progress.CurrencyBalances.Clone()}, nil
		}
		return nil, shared.NewConflictError(nil, "choice does not belong to the current story node")
	}

	cost := choice.CurrencyRequirements
	if !svc.ledger.CanAfford(progress, cost) {
		appErr := shared.NewPaymentRequiredError(nil, "insufficient funds for this choice")
		appErr.Data = map[string]interface{}{
			"cost":     cost,
			"balances": progress.CurrencyBalances,
		}
		return nil, appErr
	}

	var outcome *dto.ChoiceOutcome
	err = svc.store.Transaction(func(tx GameStore) error {
		svc.ledger.Debit(progress, cost)
		if err := svc.ledger.Record(tx, playerID, shared.TransactionTypeChoice, cost, choice.ChoiceText, &choice.NodeID); err != nil {
			return err
		}

		next, choices, err := svc.resolveNext(ctx, tx, progress, choice)
		if err != nil {
			return err
		}

		svc.advance(progress, next, model.ChoiceEntry{
			ChoiceID:   choice.ID,
			ChoiceText: choice.ChoiceText,
			NodeID:     choice.NodeID,
			Timestamp:  time.Now().UTC(),
		})
		if err := tx.SaveProgress(progress); err != nil {
			return err
		}

		outcome = &dto.ChoiceOutcome{Node: next, Choices: choices, Balances: progress.CurrencyBalances.Clone()}
		return nil
	})
	if err != nil {
		return nil, svc.wrapGatewayError(err)
	}

	svc.monitoring.RecordChoiceResolved("authored")
	svc.recordDebits(cost)

	log.WithFields(log.Fields{
		"player_id": playerID,
		"choice_id": choiceID,
		"node_id":   outcome.Node.ID,
	}).Info("Choice resolved")
	return outcome, nil
}

func (svc *EngineService) recordDebits(cost model.CurrencyMap) {
	for kind, amount := range cost {
		svc.monitoring.RecordDebit(kind, amount)
	}
}

// ProcessCustomChoice resolves a free-text player action. Custom actions
// carry a flat diamond cost, always generate a fresh node and are never
// memoized: the same text submitted twice produces two branches.
func (svc *EngineService) ProcessCustomChoice(ctx context.Context, playerID, text string) (*dto.ChoiceOutcome, error) {
	unlock := svc.lockPlayer(playerID)
	defer unlock()

	progress, err := svc.store.GetProgressByPlayerID(playerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, shared.NewNotFoundError(err, "player progress not found")
		}
		return nil, err
	}
	if progress.CurrentNodeID == nil {
		return nil, shared.NewConflictError(nil, "no active story to act in")
	}

	current, err := svc.store.GetNode(*progress.CurrentNodeID)
	if err != nil {
		return nil, err
	}

	cost := model.CurrencyMap{}
	for kind, amount := range shared.CurrencyTiers[shared.TierDiamond] {
		cost[kind] = amount
	}
	if !svc.ledger.CanAfford(progress, cost) {
		appErr := shared.NewPaymentRequiredError(nil, "insufficient diamonds for a custom action")
		appErr.Data = map[string]interface{}{
			"cost":     cost,
			"balances": progress.CurrencyBalances,
		}
		return nil, appErr
	}

	var outcome *dto.ChoiceOutcome
	err = svc.store.Transaction(func(tx GameStore) error {
		svc.ledger.Debit(progress, cost)
		if err := svc.ledger.Record(tx, playerID, shared.TransactionTypeCustomChoice, cost, text, progress.CurrentNodeID); err != nil {
			return err
		}

		result, err := svc.gateway.GenerateCustomResponse(ctx, ContinuationRequest{
			PreviousText: current.NarrativeText,
			ChosenAction: text,
			Character:    svc.characterContext(tx, current.CharacterID),
			GameState:    progress.GameState,
		})
		if err != nil {
			return err
		}

		next, err := svc.story.CreateNode(tx, current.StoryID, result.NarrativeText, current.CharacterID, progress.CurrentNodeID, current.BranchMetadata, false)
		if err != nil {
			return err
		}
		choices, err := svc.GenerateChoicesForNode(ctx, tx, progress, next)
		if err != nil {
			return err
		}

		svc.advance(progress, next, model.ChoiceEntry{
			ChoiceText: text,
			NodeID:     current.ID,
			Custom:     true,
			Timestamp:  time.Now().UTC(),
		})
		if err := tx.SaveProgress(progress); err != nil {
			return err
		}

		outcome = &dto.ChoiceOutcome{Node: next, Choices: choices, Balances: progress.CurrencyBalances.Clone()}
		return nil
	})
	if err != nil {
		return nil, svc.wrapGatewayError(err)
	}

	svc.monitoring.RecordChoiceResolved("custom")
	svc.recordDebits(cost)

	log.WithFields(log.Fields{
		"player_id": playerID,
		"node_id":   outcome.Node.ID,
	}).Info("Custom choice resolved")
	return outcome, nil
}

// CheckAffordability reports whether the player can take a choice, without
// taking it.
func (svc *EngineService) CheckAffordability(playerID, choiceID string) (bool, model.CurrencyMap, model.CurrencyMap, error) {
	progress, err := svc.store.GetProgressByPlayerID(playerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil, nil, shared.NewNotFoundError(err, "player progress not found")
		}
		return false, nil, nil, err
	}
	choice, err := svc.store.GetChoice(choiceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil, nil, shared.NewNotFoundError(err, "choice not found")
		}
		return false, nil, nil, err
	}

	return svc.ledger.CanAfford(progress, choice.CurrencyRequirements), choice.CurrencyRequirements, progress.CurrencyBalances.Clone(), nil
}

// CurrentNode returns the node the player currently stands on, with its
// choices and the player's balances.
func (svc *EngineService) CurrentNode(playerID string) (*dto.ChoiceOutcome, error) {
	progress, err := svc.store.GetProgressByPlayerID(playerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, shared.NewNotFoundError(err, "player progress not found")
		}
		return nil, err
	}
	if progress.CurrentNodeID == nil {
		return nil, shared.NewNotFoundError(nil, "no active story")
	}

	node, choices, err := svc.story.NodeWithChoices(svc.store, *progress.CurrentNodeID)
	if err != nil {
		return nil, err
	}
	return &dto.ChoiceOutcome{Node: node, Choices: choices, Balances: progress.CurrencyBalances.Clone()}, nil
}

// isReplay reports whether the choice is the one the player most recently
// resolved, with its destination already memoized.
func (svc *EngineService) isReplay(progress *model.PlayerProgress, choice *model.StoryChoice) bool {
	if choice.NextNodeID == nil || len(progress.ChoiceHistory) == 0 {
		return false
	}
	latest := progress.ChoiceHistory[len(progress.ChoiceHistory)-1]
	return latest.ChoiceID == choice.ID
}

// resolveNext returns the choice's destination node, generating and memoizing
// it on first traversal.
func (svc *EngineService) resolveNext(ctx context.Context, tx GameStore, progress *model.PlayerProgress, choice *model.StoryChoice) (*model.StoryNode, []model.StoryChoice, error) {
	if choice.NextNodeID != nil {
		return svc.story.NodeWithChoices(tx, *choice.NextNodeID)
	}

	current, err := tx.GetNode(choice.NodeID)
	if err != nil {
		return nil, nil, err
	}

	result, err := svc.gateway.GenerateContinuation(ctx, ContinuationRequest{
		PreviousText: current.NarrativeText,
		ChosenAction: choice.ChoiceText,
		Character:    svc.characterContext(tx, current.CharacterID),
		GameState:    progress.GameState,
	})
	if err != nil {
		return nil, nil, err
	}

	next, err := svc.story.CreateNode(tx, current.StoryID, result.NarrativeText, current.CharacterID, &current.ID, current.BranchMetadata, false)
	if err != nil {
		return nil, nil, err
	}
	choices, err := svc.GenerateChoicesForNode(ctx, tx, progress, next)
	if err != nil {
		return nil, nil, err
	}

	if err := svc.story.MemoizeNext(tx, choice, next.ID); err != nil {
		return nil, nil, err
	}
	return next, choices, nil
}

// GenerateChoicesForNode asks the gateway for the node's outgoing choices,
// prices them and persists them.
func (svc *EngineService) GenerateChoicesForNode(ctx context.Context, tx GameStore, progress *model.PlayerProgress, node *model.StoryNode) ([]model.StoryChoice, error) {
	pool, err := tx.RandomCharacters(6)
	if err != nil {
		return nil, err
	}
	contexts := make([]CharacterContext, 0, len(pool))
	for i := range pool {
		contexts = append(contexts, NewCharacterContext(&pool[i]))
	}

	result, err := svc.gateway.GenerateChoices(ctx, ChoicesRequest{
		Narrative:  node.NarrativeText,
		Character:  svc.characterContext(tx, node.CharacterID),
		GameState:  progress.GameState,
		Characters: contexts,
	})
	if err != nil {
		return nil, err
	}

	return svc.story.AttachChoices(tx, node.ID, svc.priceChoices(result.Choices))
}

// priceChoices assigns each generated choice a single-currency cost. The
// tier comes from the stated risk level; an unrecognized level falls back to
// the choice's position in the list (first low, second medium, third high,
// medium past that).
// The currency kind is picked uniformly at random from the tier.
func (svc *EngineService) priceChoices(generated []GeneratedChoice) []model.StoryChoice {
	out := make([]model.StoryChoice, 0, len(generated))
	for i, g := range generated {
		tier := g.RiskLevel
		if _, ok := shared.CurrencyTiers[tier]; !ok || tier == shared.TierDiamond {
			tier = shared.TierMedium
			if i < len(shared.CostTiers) {
				tier = shared.CostTiers[i]
			}
			log.WithFields(log.Fields{
				"risk_level": g.RiskLevel,
				"position":   i,
				"tier":       tier,
			}).Warn("Unrecognized risk level, falling back to positional tier")
		}

		prices := shared.CurrencyTiers[tier]
		kinds := make([]string, 0, len(prices))
		for kind := range prices {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		kind := kinds[rand.IntN(len(kinds))]

		meta, _ := json.Marshal(model.ChoiceMetadata{
			Tier:            tier,
			RiskLevel:       tier,
			CharacterUsed:   g.CharacterUsed,
			Consequence:     g.Consequence,
			NextNodeSummary: g.NextNodeSummary,
			AIGenerated:     true,
		})
		out = append(out, model.StoryChoice{
			ID:                   uuid.NewString(),
			ChoiceText:           g.Text,
			CurrencyRequirements: model.CurrencyMap{kind: prices[kind]},
			Metadata:             meta,
		})
	}
	return out
}

func (svc *EngineService) advance(progress *model.PlayerProgress, next *model.StoryNode, entry model.ChoiceEntry) {
	progress.CurrentNodeID = &next.ID
	progress.CurrentStoryID = &next.StoryID
	progress.ChoiceHistory = append(progress.ChoiceHistory, entry)
	if next.CharacterID != nil {
		progress.EncounteredCharacters = appendUnique(progress.EncounteredCharacters, *next.CharacterID)
	}
}

func (svc *EngineService) characterContext(tx GameStore, characterID *string) *CharacterContext {
	if characterID == nil {
		return nil
	}
	character, err := tx.GetCharacter(*characterID)
	if err != nil {
		return nil
	}
	ctx := NewCharacterContext(character)
	return &ctx
}

func (svc *EngineService) wrapGatewayError(err error) error {
	if errors.Is(err, ErrGatewayUnavailable) || errors.Is(err, ErrGatewayMalformed) {
		return shared.NewBadGatewayError(err, fmt.Sprintf("content generation failed: %v", err))
	}
	return err
}

func appendUnique(list model.StringList, value string) model.StringList {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
