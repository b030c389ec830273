package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClip(t *testing.T) {
	t.Run("Value at the limit passes through", func(t *testing.T) {
		value := strings.Repeat("a", schemaLimits["objective"])
		assert.Equal(t, value, clip("objective", value))
	})

	t.Run("Value over the limit is truncated", func(t *testing.T) {
		value := strings.Repeat("a", schemaLimits["objective"]+40)
		clipped := clip("objective", value)
		assert.Len(t, clipped, schemaLimits["objective"])
	})

	t.Run("Limits count characters, not bytes", func(t *testing.T) {
		value := strings.Repeat("💎", schemaLimits["mood"]+1)
		clipped := clip("mood", value)
		assert.Equal(t, schemaLimits["mood"], len([]rune(clipped)))
	})

	t.Run("Unknown field is untouched", func(t *testing.T) {
		value := strings.Repeat("a", 100000)
		assert.Equal(t, value, clip("no_such_field", value))
	})
}

func TestParseFullMissionResult(t *testing.T) {
	valid := `{
		"mission_title": "Operation Nightfall",
		"mission_description": "Recover the ledger before dawn.",
		"objective": "Steal the ledger",
		"difficulty": "hard",
		"deadline": "48 hours",
		"setting": "Vienna",
		"narrative_style": "Modern Espionage Thriller",
		"mood": "Tense",
		"opening_narrative": "Rain hammers the embassy windows.",
		"choices": [{"text": "Scale the wall", "risk_level": "high"}]
	}`

	t.Run("Valid payload", func(t *testing.T) {
		result, err := parseFullMissionResult([]byte(valid))

		assert.NoError(t, err)
		assert.Equal(t, "Operation Nightfall", result.MissionTitle)
		assert.Len(t, result.Choices, 1)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		_, err := parseFullMissionResult([]byte(`{"mission_title": `))
		assert.ErrorIs(t, err, ErrGatewayMalformed)
	})

	t.Run("Missing required field", func(t *testing.T) {
		_, err := parseFullMissionResult([]byte(`{"mission_title": "X"}`))
		assert.ErrorIs(t, err, ErrGatewayMalformed)
	})

	t.Run("Empty choices", func(t *testing.T) {
		payload := strings.Replace(valid, `[{"text": "Scale the wall", "risk_level": "high"}]`, `[]`, 1)
		_, err := parseFullMissionResult([]byte(payload))
		assert.ErrorIs(t, err, ErrGatewayMalformed)
	})

	t.Run("Overlong fields are clipped, not rejected", func(t *testing.T) {
		long := strings.Repeat("x", 5000)
		payload := strings.Replace(valid, "Recover the ledger before dawn.", long, 1)

		result, err := parseFullMissionResult([]byte(payload))

		assert.NoError(t, err)
		assert.Len(t, result.MissionDescription, schemaLimits["mission_description"])
	})
}

func TestParseChoicesResult(t *testing.T) {
	t.Run("Valid payload clips choice texts", func(t *testing.T) {
		long := strings.Repeat("y", 500)
		payload := `{"choices": [{"text": "` + long + `", "risk_level": "low"}]}`

		result, err := parseChoicesResult([]byte(payload))

		assert.NoError(t, err)
		assert.Len(t, result.Choices[0].Text, schemaLimits["choice_text"])
	})

	t.Run("No choices", func(t *testing.T) {
		_, err := parseChoicesResult([]byte(`{"choices": []}`))
		assert.ErrorIs(t, err, ErrGatewayMalformed)
	})
}

func TestParseNarrativeResult(t *testing.T) {
	t.Run("Valid payload", func(t *testing.T) {
		result, err := parseNarrativeResult([]byte(`{"narrative_text": "The line goes dead."}`))

		assert.NoError(t, err)
		assert.Equal(t, "The line goes dead.", result.NarrativeText)
	})

	t.Run("Empty narrative", func(t *testing.T) {
		_, err := parseNarrativeResult([]byte(`{"narrative_text": ""}`))
		assert.ErrorIs(t, err, ErrGatewayMalformed)
	})
}

func TestParseMissionBriefResult(t *testing.T) {
	t.Run("Valid payload", func(t *testing.T) {
		result, err := parseMissionBriefResult([]byte(`{"title": "Dead Drop", "objective": "Retrieve the cache"}`))

		assert.NoError(t, err)
		assert.Equal(t, "Dead Drop", result.Title)
	})

	t.Run("Missing objective", func(t *testing.T) {
		_, err := parseMissionBriefResult([]byte(`{"title": "Dead Drop"}`))
		assert.ErrorIs(t, err, ErrGatewayMalformed)
	})
}
