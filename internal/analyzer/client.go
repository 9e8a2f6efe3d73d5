package analyzer

import (
	"context"
	"time"
)

// ChatMessage is a single message handed to the analyzer. It is transient;
// this subsystem never persists raw chat messages.
type ChatMessage struct {
	UserID    string
	Username  string
	Message   string
	Timestamp time.Time
}

// ExtractedEvent is the analyzer's verdict on a batch of messages. When no
// scheduling agreement is present AgreementDetected is false and the other
// fields are zero; that is the expected common case, not an error.
type ExtractedEvent struct {
	AgreementDetected bool
	Summary           string
	EventDT           time.Time
	Participants      []string
	Location          string
	EventType         string
	Confidence        float64
	SourceMessage     string
}

// Client defines the boundary to the chat analyzer. Implementations must
// map malformed or unparseable model output to a no-agreement result;
// errors are reserved for transport failures.
type Client interface {
	AnalyzeChat(ctx context.Context, messages []ChatMessage) (*ExtractedEvent, error)
}
