package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/82deutschmark/Disavowed/model"

	appContext "github.com/alphabatem/common/context"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

const systemPrompt = "You are a professional game narrative designer. You MUST return only valid JSON with no additional text or formatting. Do not include literal line breaks inside string values - use \\n for line breaks."

// OpenAIService implements ContentGateway over JSON-mode chat completions.
// Prompt wording is not part of the contract; the response schemas are.
type OpenAIService struct {
	appContext.DefaultService

	client     *openai.Client
	apiKey     string
	model      string
	timeout    time.Duration
	monitoring *MonitoringService
}

const OPENAI_SVC = "openai_svc"

func (svc OpenAIService) Id() string {
	return OPENAI_SVC
}

func (svc *OpenAIService) Configure(ctx *appContext.Context) error {
	svc.monitoring = svc.Service(MONITORING_SVC).(*MonitoringService)
	svc.apiKey = os.Getenv("OPENAI_API_KEY")

	svc.model = os.Getenv("OPENAI_MODEL")
	if svc.model == "" {
		svc.model = "gpt-4.1-nano-2025-04-14"
	}

	svc.timeout = 60 * time.Second
	if timeoutStr := os.Getenv("OPENAI_TIMEOUT_SECONDS"); timeoutStr != "" {
		if seconds, err := strconv.Atoi(timeoutStr); err == nil && seconds > 0 {
			svc.timeout = time.Duration(seconds) * time.Second
		}
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *OpenAIService) Start() error {
	if svc.apiKey == "" {
		return errors.New("OPENAI_API_KEY is not set")
	}
	svc.client = openai.NewClient(svc.apiKey)
	log.WithField("model", svc.model).Info("Content generation gateway ready")
	return nil
}

// chat performs one JSON-mode completion bounded by the service timeout. A
// timed-out request surfaces as a plain gateway failure; no retry here.
func (svc *OpenAIService) chat(ctx context.Context, kind, prompt string, maxTokens int) ([]byte, error) {
	if svc.client == nil {
		return nil, ErrGatewayUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, svc.timeout)
	defer cancel()

	start := time.Now()
	resp, err := svc.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: svc.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.8,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		svc.monitoring.RecordGeneration(kind, "error", time.Since(start))
		log.WithError(err).Error("Chat completion failed")
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	svc.monitoring.RecordGeneration(kind, "ok", time.Since(start))
	if len(resp.Choices) == 0 {
		return nil, malformed("completion returned no choices")
	}

	return []byte(resp.Choices[0].Message.Content), nil
}

func describeCharacter(c CharacterContext) string {
	var sb strings.Builder
	if c.Description != "" {
		sb.WriteString(c.Description)
	} else if c.ImageURL != "" {
		fmt.Fprintf(&sb, "[See character image at %s]", c.ImageURL)
	} else {
		sb.WriteString("Character appearance not described")
	}
	if c.Traits != "" {
		fmt.Fprintf(&sb, " TRAITS: %s.", c.Traits)
	}
	if c.Backstory != "" {
		fmt.Fprintf(&sb, " BACKSTORY: %s", c.Backstory)
	}
	return sb.String()
}

func pronounsFor(gender string) string {
	switch gender {
	case "he/him":
		return "he"
	case "she/her":
		return "she"
	default:
		return "they"
	}
}

func gameStateContext(state json.RawMessage) string {
	if len(state) == 0 {
		return "Starting mission"
	}
	return string(state)
}

func (svc *OpenAIService) GenerateFullMission(ctx context.Context, req FullMissionRequest) (*FullMissionResult, error) {
	if req.NarrativeStyle == "" {
		req.NarrativeStyle = "Modern Espionage Thriller"
	}
	if req.Mood == "" {
		req.Mood = "Action-packed and Suspenseful"
	}

	prompt := fmt.Sprintf(`You are creating a mission for an espionage thriller game. You MUST return ONLY a valid JSON object with the exact structure shown below.

CRITICAL CONSTRAINTS:
- mission_title: Maximum 200 characters
- deadline: Maximum 200 characters
- setting: Maximum 255 characters
- narrative_style: Maximum 100 characters
- mood: Maximum 100 characters
- opening_narrative: Keep under 2000 characters for readability
- choice text: Keep each choice under 255 characters for UI
- difficulty: Must be exactly one of: "low", "medium", "high"
- risk_level: Must be exactly one of: "low", "medium", "high"

CHARACTERS:
- Player: %s (pronouns: %s)
- Mission Giver: %s - %s
- Target/Villain: %s - %s
- Partner: %s - %s
- Additional Character: %s - %s

REQUIREMENTS:
1. Create a mission where %s briefs %s to target %s
2. %s is assigned as the partner for this mission
3. Write an opening narrative in %s style with %s mood that establishes the mission scenario using the character backgrounds
4. Generate exactly 3 distinct choices, each incorporating one of these characters: %s, %s, or another creative option
5. Each choice should represent different risk levels and approaches (cautious, moderate, aggressive)
6. Make it action-packed espionage with stakes and tension, maintaining the %s mood

RESPONSE FORMAT (JSON):
{"mission_title": "...", "mission_description": "2-3 paragraph mission briefing", "objective": "Clear, actionable mission goal", "difficulty": "medium", "deadline": "...", "setting": "...", "narrative_style": "%s", "mood": "%s", "opening_narrative": "...", "choices": [{"text": "...", "character_used": "...", "risk_level": "low", "next_node_summary": "..."}, {"text": "...", "character_used": "...", "risk_level": "medium", "next_node_summary": "..."}, {"text": "...", "character_used": "...", "risk_level": "high", "next_node_summary": "..."}]}`,
		req.PlayerName, pronounsFor(req.PlayerGender),
		req.Giver.Name, describeCharacter(req.Giver),
		req.Villain.Name, describeCharacter(req.Villain),
		req.Partner.Name, describeCharacter(req.Partner),
		req.Extra.Name, describeCharacter(req.Extra),
		req.Giver.Name, req.PlayerName, req.Villain.Name,
		req.Partner.Name,
		req.NarrativeStyle, req.Mood,
		req.Partner.Name, req.Extra.Name,
		req.Mood,
		req.NarrativeStyle, req.Mood)

	raw, err := svc.chat(ctx, "full_mission", prompt, 2000)
	if err != nil {
		return nil, err
	}
	return parseFullMissionResult(raw)
}

func (svc *OpenAIService) GenerateMissionBrief(ctx context.Context, giver CharacterContext) (*MissionBriefResult, error) {
	prompt := fmt.Sprintf(`You are creating a mission briefing for an irreverent espionage CYOA game.
The mission giver is: Name: %s, Role: %s, Traits: %s, Backstory: %s

Generate a mission that fits this character's devil-may-care personality and role. The game has a bold, risk-taking attitude with high stakes espionage themes.

Respond with JSON in this exact format:
{"title": "Mission title (<=200 chars)", "description": "Brief mission description (2-3 sentences)", "objective": "Clear objective statement", "difficulty": "easy/medium/hard", "deadline": "Narrative deadline description (<=200 chars)"}`,
		giver.Name, giver.Role, giver.Traits, giver.Backstory)

	raw, err := svc.chat(ctx, "mission_brief", prompt, 1000)
	if err != nil {
		return nil, err
	}
	return parseMissionBriefResult(raw)
}

func (svc *OpenAIService) GenerateOpening(ctx context.Context, mission *model.Mission, giver *model.Character) (*OpeningResult, error) {
	giverName := "ERROR"
	if giver != nil {
		giverName = giver.Name
	}

	prompt := fmt.Sprintf(`You are writing the opening scene for an irreverent espionage CYOA game.

Mission: %s
Description: %s
Mission Giver: %s

Write a 2-3 paragraph opening that:
1. Sets the scene with tension and espionage atmosphere
2. Has the mission giver brief the player (a disavowed spy)
3. Maintains a bold, risk-taking tone with high stakes
4. Ends with the player about to make their first decision

Respond with JSON in this exact format:
{"opening_narrative": "2-3 paragraphs setting the scene and immediate situation"}`,
		mission.Title, mission.Description, giverName)

	raw, err := svc.chat(ctx, "opening", prompt, 1000)
	if err != nil {
		return nil, err
	}
	return parseOpeningResult(raw)
}

func (svc *OpenAIService) GenerateChoices(ctx context.Context, req ChoicesRequest) (*ChoicesResult, error) {
	characterInfo := ""
	if req.Character != nil {
		characterInfo = fmt.Sprintf("Current character: %s (%s)", req.Character.Name, req.Character.Role)
	}

	var pool strings.Builder
	if len(req.Characters) > 0 {
		pool.WriteString("Available characters to incorporate into choices:\n")
		for _, c := range req.Characters {
			desc := c.Description
			if runes := []rune(desc); len(runes) > 100 {
				desc = string(runes[:100]) + "..."
			}
			fmt.Fprintf(&pool, "- %s: %s\n", c.Name, desc)
		}
	}

	prompt := fmt.Sprintf(`You are generating choices for an irreverent espionage CYOA game.

Current narrative: %s
%s
Game context: %s
%s

Generate exactly 3 distinct choices that:
1. Fit the espionage theme with bold, risky options
2. Have different risk/reward levels (cautious, moderate, aggressive)
3. Each choice should incorporate one of the available characters as an ally/contact/helper
4. Each choice should be 1-2 sentences, actionable and specific
5. Include potential consequences for each choice

Respond with JSON in this exact format:
{"choices": [{"text": "...", "consequence": "...", "character_used": "...", "risk_level": "low/medium/high"}, {"text": "...", "consequence": "...", "character_used": "...", "risk_level": "low/medium/high"}, {"text": "...", "consequence": "...", "character_used": "...", "risk_level": "low/medium/high"}]}`,
		req.Narrative, characterInfo, gameStateContext(req.GameState), pool.String())

	raw, err := svc.chat(ctx, "choices", prompt, 1500)
	if err != nil {
		return nil, err
	}
	return parseChoicesResult(raw)
}

func (svc *OpenAIService) GenerateContinuation(ctx context.Context, req ContinuationRequest) (*NarrativeResult, error) {
	characterInfo := ""
	if req.Character != nil {
		characterInfo = fmt.Sprintf("Current character: %s", req.Character.Name)
	}

	prompt := fmt.Sprintf(`Continue this espionage story based on the player's choice. Use the game state to maintain context.

Previous narrative: %s
Player's action: %s
%s
Game context: %s

Write a meaningful continuation that:
1. Shows the immediate consequences of the player's action
2. Advances the story with new complications or revelations
3. Maintains context with the mission
4. Sets up the next decision point
5. Keeps the bold, risk-taking tone

Respond with JSON in this exact format:
{"narrative_text": "Continuation of the story"}`,
		req.PreviousText, req.ChosenAction, characterInfo, gameStateContext(req.GameState))

	raw, err := svc.chat(ctx, "continuation", prompt, 1500)
	if err != nil {
		return nil, err
	}
	return parseNarrativeResult(raw)
}

func (svc *OpenAIService) GenerateCustomResponse(ctx context.Context, req ContinuationRequest) (*NarrativeResult, error) {
	characterInfo := ""
	if req.Character != nil {
		characterInfo = fmt.Sprintf("Current character: %s", req.Character.Name)
	}

	prompt := fmt.Sprintf(`Respond to a custom player action in this espionage story.

Current situation: %s
Player's custom action: %s
%s

Write a response that:
1. Acknowledges and incorporates the player's creative action
2. Shows realistic consequences (positive, negative, or mixed)
3. Maintains story coherence and espionage theme
4. Advances the plot in an interesting direction
5. Keeps the bold, irreverent tone

Respond with JSON in this exact format:
{"narrative_text": "Response to the custom choice"}`,
		req.PreviousText, req.ChosenAction, characterInfo)

	raw, err := svc.chat(ctx, "custom_response", prompt, 1500)
	if err != nil {
		return nil, err
	}
	return parseNarrativeResult(raw)
}
