package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/82deutschmark/Disavowed/model"

	log "github.com/sirupsen/logrus"
)

// Gateway failure taxonomy. The gateway never retries on its own; callers
// decide what a failure means for their transaction.
var (
	ErrGatewayUnavailable = errors.New("content gateway unavailable")
	ErrGatewayMalformed   = errors.New("content gateway returned malformed response")
)

// ContentGateway is the capability the game services use to obtain narrative
// content. Every method returns either a fully validated, length-normalized
// result or an error wrapping one of the gateway sentinels.
type ContentGateway interface {
	GenerateFullMission(ctx context.Context, req FullMissionRequest) (*FullMissionResult, error)
	GenerateMissionBrief(ctx context.Context, giver CharacterContext) (*MissionBriefResult, error)
	GenerateOpening(ctx context.Context, mission *model.Mission, giver *model.Character) (*OpeningResult, error)
	GenerateChoices(ctx context.Context, req ChoicesRequest) (*ChoicesResult, error)
	GenerateContinuation(ctx context.Context, req ContinuationRequest) (*NarrativeResult, error)
	GenerateCustomResponse(ctx context.Context, req ContinuationRequest) (*NarrativeResult, error)
}

// CharacterContext is the descriptor bundle handed to the prompt builder.
type CharacterContext struct {
	Name        string
	Role        string
	Traits      string
	Backstory   string
	Description string
	ImageURL    string
}

func NewCharacterContext(c *model.Character) CharacterContext {
	ctx := CharacterContext{
		Name:        c.Name,
		Role:        c.Role,
		Backstory:   c.Backstory,
		Description: c.Description,
		ImageURL:    c.ImageURL,
	}
	if len(c.Traits) > 0 {
		var traits []string
		if err := json.Unmarshal(c.Traits, &traits); err == nil {
			for i, t := range traits {
				if i > 0 {
					ctx.Traits += ", "
				}
				ctx.Traits += t
			}
		}
	}
	return ctx
}

type FullMissionRequest struct {
	Giver          CharacterContext
	Villain        CharacterContext
	Partner        CharacterContext
	Extra          CharacterContext
	PlayerName     string
	PlayerGender   string
	NarrativeStyle string
	Mood           string
}

type ChoicesRequest struct {
	Narrative  string
	Character  *CharacterContext
	GameState  json.RawMessage
	Characters []CharacterContext
}

type ContinuationRequest struct {
	PreviousText string
	ChosenAction string
	Character    *CharacterContext
	GameState    json.RawMessage
}

// GeneratedChoice is one AI-authored option before pricing.
type GeneratedChoice struct {
	Text            string `json:"text"`
	Consequence     string `json:"consequence"`
	CharacterUsed   string `json:"character_used"`
	RiskLevel       string `json:"risk_level"`
	NextNodeSummary string `json:"next_node_summary"`
}

type FullMissionResult struct {
	MissionTitle       string            `json:"mission_title"`
	MissionDescription string            `json:"mission_description"`
	Objective          string            `json:"objective"`
	Difficulty         string            `json:"difficulty"`
	Deadline           string            `json:"deadline"`
	Setting            string            `json:"setting"`
	NarrativeStyle     string            `json:"narrative_style"`
	Mood               string            `json:"mood"`
	OpeningNarrative   string            `json:"opening_narrative"`
	Choices            []GeneratedChoice `json:"choices"`
}

type MissionBriefResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Objective   string `json:"objective"`
	Difficulty  string `json:"difficulty"`
	Deadline    string `json:"deadline"`
}

type OpeningResult struct {
	OpeningNarrative string `json:"opening_narrative"`
}

type ChoicesResult struct {
	Choices []GeneratedChoice `json:"choices"`
}

type NarrativeResult struct {
	NarrativeText string `json:"narrative_text"`
}

// schemaLimits are the storage-schema field bounds. A longer generated value
// is truncated to the bound, never rejected.
var schemaLimits = map[string]int{
	"mission_title":       200,
	"mission_description": 1000,
	"objective":           255,
	"deadline":            200,
	"setting":             255,
	"narrative_style":     100,
	"mood":                100,
	"opening_narrative":   1500,
	"choice_text":         255,
	"primary_conflict":    255,
	"narrative_text":      1500,
	"character_name":      200,
	"next_node_summary":   255,
	"title":               200,
	"description":         1000,
}

// clip enforces the schema limit for one field, logging when it truncates.
// Limits count characters, not bytes.
func clip(field, value string) string {
	limit, ok := schemaLimits[field]
	if !ok {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	log.WithFields(log.Fields{
		"field": field,
		"from":  len(runes),
		"to":    limit,
	}).Warn("Truncating generated field to schema limit")
	return string(runes[:limit])
}

func clipChoices(choices []GeneratedChoice) {
	for i := range choices {
		choices[i].Text = clip("choice_text", choices[i].Text)
		choices[i].NextNodeSummary = clip("next_node_summary", choices[i].NextNodeSummary)
		choices[i].CharacterUsed = clip("character_name", choices[i].CharacterUsed)
	}
}

func malformed(reason string) error {
	return fmt.Errorf("%w: %s", ErrGatewayMalformed, reason)
}

func parseFullMissionResult(raw []byte) (*FullMissionResult, error) {
	var result FullMissionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayMalformed, err)
	}

	// The whole mission creation fails on any missing required field; no
	// partial mission is ever persisted from a partial result.
	switch {
	case result.MissionTitle == "":
		return nil, malformed("missing required field 'mission_title'")
	case result.MissionDescription == "":
		return nil, malformed("missing required field 'mission_description'")
	case result.Objective == "":
		return nil, malformed("missing required field 'objective'")
	case result.OpeningNarrative == "":
		return nil, malformed("missing required field 'opening_narrative'")
	case len(result.Choices) == 0:
		return nil, malformed("missing required field 'choices'")
	}

	result.MissionTitle = clip("mission_title", result.MissionTitle)
	result.MissionDescription = clip("mission_description", result.MissionDescription)
	result.Objective = clip("objective", result.Objective)
	result.Deadline = clip("deadline", result.Deadline)
	result.Setting = clip("setting", result.Setting)
	result.NarrativeStyle = clip("narrative_style", result.NarrativeStyle)
	result.Mood = clip("mood", result.Mood)
	result.OpeningNarrative = clip("opening_narrative", result.OpeningNarrative)
	clipChoices(result.Choices)

	return &result, nil
}

func parseMissionBriefResult(raw []byte) (*MissionBriefResult, error) {
	var result MissionBriefResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayMalformed, err)
	}
	if result.Title == "" || result.Objective == "" {
		return nil, malformed("missing required mission brief fields")
	}
	result.Title = clip("title", result.Title)
	result.Description = clip("description", result.Description)
	result.Objective = clip("objective", result.Objective)
	result.Deadline = clip("deadline", result.Deadline)
	return &result, nil
}

func parseOpeningResult(raw []byte) (*OpeningResult, error) {
	var result OpeningResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayMalformed, err)
	}
	if result.OpeningNarrative == "" {
		return nil, malformed("missing required field 'opening_narrative'")
	}
	result.OpeningNarrative = clip("opening_narrative", result.OpeningNarrative)
	return &result, nil
}

func parseChoicesResult(raw []byte) (*ChoicesResult, error) {
	var result ChoicesResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayMalformed, err)
	}
	if len(result.Choices) == 0 {
		return nil, malformed("missing required field 'choices'")
	}
	clipChoices(result.Choices)
	return &result, nil
}

func parseNarrativeResult(raw []byte) (*NarrativeResult, error) {
	var result NarrativeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayMalformed, err)
	}
	if result.NarrativeText == "" {
		return nil, malformed("missing required field 'narrative_text'")
	}
	result.NarrativeText = clip("narrative_text", result.NarrativeText)
	return &result, nil
}
