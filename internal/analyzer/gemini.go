package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/user/reminder-bot/internal/httpclient"
)

// GeminiClient implements Client on top of the Gemini generateContent API.
type GeminiClient struct {
	httpClient *httpclient.Client
	model      string
	prompt     string
}

// NewClient creates a new analyzer client from the API and prompt
// configuration files.
func NewClient() (Client, error) {
	configs, err := httpclient.LoadConfig("configs/api.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to load API configuration: %w", err)
	}

	clientConfig, err := configs.GetClientConfig("gemini")
	if err != nil {
		return nil, fmt.Errorf("failed to get Gemini client configuration: %w", err)
	}

	client, err := clientConfig.CreateClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	settings, err := LoadSettings("configs/prompts.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to load analyzer settings: %w", err)
	}

	model := settings.Model
	if env := os.Getenv("GEMINI_MODEL"); env != "" {
		model = env
	}

	return &GeminiClient{
		httpClient: client,
		model:      model,
		prompt:     settings.AnalyzeChatPrompt,
	}, nil
}

type generateRequest struct {
	Contents []requestContent `json:"contents"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content requestContent `json:"content"`
	} `json:"candidates"`
}

// extractedEventJSON mirrors the JSON contract the prompt demands from the
// model.
type extractedEventJSON struct {
	AgreementDetected bool     `json:"agreement_detected"`
	EventSummary      string   `json:"event_summary"`
	EventDatetime     string   `json:"event_datetime"`
	Participants      []string `json:"participants"`
	Location          string   `json:"location"`
	EventType         string   `json:"event_type"`
	Confidence        float64  `json:"confidence"`
	SourceMessage     string   `json:"source_message"`
}

// AnalyzeChat sends the formatted conversation to the model and parses the
// structured verdict out of its reply.
func (c *GeminiClient) AnalyzeChat(ctx context.Context, messages []ChatMessage) (*ExtractedEvent, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages to analyze")
	}

	prompt := c.prompt + "\n\nAnalyze the following chat conversation and detect any agreements or scheduled events:\n\n" +
		formatChatHistory(messages) + "\n\nRespond only with valid JSON."

	req := generateRequest{
		Contents: []requestContent{
			{Parts: []requestPart{{Text: prompt}}},
		},
	}

	var resp generateResponse
	path := fmt.Sprintf("models/%s:generateContent", c.model)
	if err := c.httpClient.Post(ctx, path, req, &resp); err != nil {
		return nil, fmt.Errorf("analyzer request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Printf("[ANALYZER] empty model response, treating as no agreement")
		return &ExtractedEvent{}, nil
	}

	return parseAnalysisText(resp.Candidates[0].Content.Parts[0].Text), nil
}

func formatChatHistory(messages []ChatMessage) string {
	var b strings.Builder
	for _, msg := range messages {
		fmt.Fprintf(&b, "[%s] %s: %s\n", msg.Timestamp.Format("2006-01-02 15:04:05"), msg.Username, msg.Message)
	}
	return b.String()
}

// datetimeLayouts are the formats the model is allowed to answer with. The
// prompt asks for the first one.
var datetimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// parseAnalysisText turns raw model output into an ExtractedEvent. Any
// malformed payload degrades to a no-agreement result instead of an error.
func parseAnalysisText(text string) *ExtractedEvent {
	raw := stripCodeFences(text)

	var parsed extractedEventJSON
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Printf("[ANALYZER] unparseable model output, treating as no agreement: %v", err)
		return &ExtractedEvent{}
	}

	if !parsed.AgreementDetected {
		return &ExtractedEvent{}
	}

	eventDT, ok := parseEventDatetime(parsed.EventDatetime)
	if !ok {
		log.Printf("[ANALYZER] invalid event_datetime %q, treating as no agreement", parsed.EventDatetime)
		return &ExtractedEvent{}
	}

	return &ExtractedEvent{
		AgreementDetected: true,
		Summary:           parsed.EventSummary,
		EventDT:           eventDT,
		Participants:      parsed.Participants,
		Location:          parsed.Location,
		EventType:         parsed.EventType,
		Confidence:        parsed.Confidence,
		SourceMessage:     parsed.SourceMessage,
	}
}

func parseEventDatetime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// stripCodeFences unwraps the JSON body from a markdown code block, which
// models frequently emit despite instructions.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
