package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysisText(t *testing.T) {
	t.Run("agreement with all fields", func(t *testing.T) {
		text := `{
			"agreement_detected": true,
			"event_summary": "Team meeting",
			"event_datetime": "2026-09-10 15:00:00",
			"participants": ["Alice", "Bob"],
			"location": "Office",
			"event_type": "meeting",
			"confidence": 0.95,
			"source_message": "Let's meet tomorrow at 3 PM"
		}`

		result := parseAnalysisText(text)
		require.True(t, result.AgreementDetected)
		assert.Equal(t, "Team meeting", result.Summary)
		assert.True(t, result.EventDT.Equal(time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC)))
		assert.Equal(t, []string{"Alice", "Bob"}, result.Participants)
		assert.Equal(t, "Office", result.Location)
		assert.Equal(t, "meeting", result.EventType)
		assert.Equal(t, 0.95, result.Confidence)
		assert.Equal(t, "Let's meet tomorrow at 3 PM", result.SourceMessage)
	})

	t.Run("no agreement", func(t *testing.T) {
		result := parseAnalysisText(`{"agreement_detected": false}`)
		assert.False(t, result.AgreementDetected)
	})

	t.Run("fenced JSON", func(t *testing.T) {
		text := "```json\n{\"agreement_detected\": true, \"event_summary\": \"Lunch\", \"event_datetime\": \"2026-09-11T12:00:00Z\", \"confidence\": 0.9}\n```"
		result := parseAnalysisText(text)
		require.True(t, result.AgreementDetected)
		assert.Equal(t, "Lunch", result.Summary)
	})

	t.Run("malformed output degrades to no agreement", func(t *testing.T) {
		for _, text := range []string{
			"I could not find any agreement in this conversation.",
			`{"agreement_detected": true, "event_datetime":`,
			"",
		} {
			result := parseAnalysisText(text)
			assert.False(t, result.AgreementDetected, "input: %q", text)
		}
	})

	t.Run("invalid datetime degrades to no agreement", func(t *testing.T) {
		text := `{"agreement_detected": true, "event_summary": "Call", "event_datetime": "sometime next week", "confidence": 0.9}`
		result := parseAnalysisText(text)
		assert.False(t, result.AgreementDetected)
	})
}

func TestFormatChatHistory(t *testing.T) {
	messages := []ChatMessage{
		{
			UserID:    "u1",
			Username:  "Alice",
			Message:   "Meeting tomorrow?",
			Timestamp: time.Date(2026, 9, 9, 10, 30, 0, 0, time.UTC),
		},
		{
			UserID:    "u2",
			Username:  "Bob",
			Message:   "Works for me",
			Timestamp: time.Date(2026, 9, 9, 10, 31, 0, 0, time.UTC),
		},
	}

	formatted := formatChatHistory(messages)
	assert.Equal(t, "[2026-09-09 10:30:00] Alice: Meeting tomorrow?\n[2026-09-09 10:31:00] Bob: Works for me\n", formatted)
}
