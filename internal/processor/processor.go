package processor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/user/reminder-bot/internal/analyzer"
)

// EventStore is the slice of the event store the processor needs.
type EventStore interface {
	AddEvent(ctx context.Context, userID, sourceChatID, summary string,
		eventDT time.Time, reminder1DT, reminder2DT *time.Time) (int64, error)
}

// Result describes the outcome of processing one chat batch. Errors are
// carried as a value so the transport loop never has to recover from one
// bad batch.
type Result struct {
	EventDetected bool
	Confidence    float64
	ThresholdMet  bool
	EventID       int64
	Summary       string
	EventDT       time.Time
	Participants  []string
	Location      string
	EventType     string
	Reminder1DT   *time.Time
	Reminder2DT   *time.Time
	Error         bool
	Message       string
}

// Processor gates raw chat batches into durable events.
type Processor struct {
	store    EventStore
	analyzer analyzer.Client

	confidenceThreshold float64
	reminder1Offset     time.Duration
	reminder2Offset     time.Duration

	now func() time.Time
}

// New creates a chat processor. Offsets are the lead times before the
// event at which reminders 1 and 2 fire; a non-positive offset disables
// that reminder.
func New(store EventStore, analyzerClient analyzer.Client, confidenceThreshold float64,
	reminder1Offset, reminder2Offset time.Duration) *Processor {

	log.Printf("[PROCESSOR] initialized with confidence threshold %.2f", confidenceThreshold)

	return &Processor{
		store:               store,
		analyzer:            analyzerClient,
		confidenceThreshold: confidenceThreshold,
		reminder1Offset:     reminder1Offset,
		reminder2Offset:     reminder2Offset,
		now:                 time.Now,
	}
}

// ProcessChatMessages analyzes a message batch and persists a detected
// event when the confidence threshold is met. It returns nil when there is
// nothing to report (empty batch, no agreement) and never returns an
// error: failures come back as a Result with Error set.
func (p *Processor) ProcessChatMessages(ctx context.Context, messages []analyzer.ChatMessage, sourceChatID string) *Result {
	if len(messages) == 0 {
		log.Printf("[PROCESSOR] no messages provided for processing")
		return nil
	}

	log.Printf("[PROCESSOR] analyzing %d messages from chat %s", len(messages), sourceChatID)
	extracted, err := p.analyzer.AnalyzeChat(ctx, messages)
	if err != nil {
		log.Printf("[PROCESSOR] error analyzing chat %s: %v", sourceChatID, err)
		return &Result{
			Error:   true,
			Message: fmt.Sprintf("error processing chat messages: %v", err),
		}
	}

	if extracted == nil || !extracted.AgreementDetected {
		log.Printf("[PROCESSOR] no agreement detected in chat %s", sourceChatID)
		return nil
	}

	if extracted.Confidence < p.confidenceThreshold {
		log.Printf("[PROCESSOR] confidence %.2f below threshold %.2f, skipping event creation",
			extracted.Confidence, p.confidenceThreshold)
		return &Result{
			EventDetected: true,
			Confidence:    extracted.Confidence,
			ThresholdMet:  false,
			Summary:       extracted.Summary,
			Message: fmt.Sprintf("event detected but confidence %.2f below threshold %.2f",
				extracted.Confidence, p.confidenceThreshold),
		}
	}

	now := p.now()
	reminder1DT := p.reminderTime(extracted.EventDT, p.reminder1Offset, now)
	reminder2DT := p.reminderTime(extracted.EventDT, p.reminder2Offset, now)

	primaryUserID := primaryUserID(messages, extracted.Participants)

	eventID, err := p.store.AddEvent(ctx, primaryUserID, sourceChatID,
		extracted.Summary, extracted.EventDT, reminder1DT, reminder2DT)
	if err != nil {
		log.Printf("[PROCESSOR] error saving event for chat %s: %v", sourceChatID, err)
		return &Result{
			Error:   true,
			Message: fmt.Sprintf("error processing chat messages: %v", err),
		}
	}

	log.Printf("[PROCESSOR] event saved with id %d", eventID)

	return &Result{
		EventDetected: true,
		Confidence:    extracted.Confidence,
		ThresholdMet:  true,
		EventID:       eventID,
		Summary:       extracted.Summary,
		EventDT:       extracted.EventDT,
		Participants:  extracted.Participants,
		Location:      extracted.Location,
		EventType:     extracted.EventType,
		Reminder1DT:   reminder1DT,
		Reminder2DT:   reminder2DT,
		Message:       fmt.Sprintf("event successfully saved with id %d", eventID),
	}
}

// reminderTime computes a reminder time from the event time and an offset.
// Reminders that would land at or before now are dropped rather than
// scheduled in the past, so they cannot fire immediately on creation.
func (p *Processor) reminderTime(eventDT time.Time, offset time.Duration, now time.Time) *time.Time {
	if offset <= 0 {
		return nil
	}

	reminder := eventDT.Add(-offset)
	if !reminder.After(now) {
		log.Printf("[PROCESSOR] computed reminder time %s is in the past, skipping", reminder)
		return nil
	}

	return &reminder
}

// primaryUserID resolves who the reminders go to: a sender whose display
// name the analyzer listed as a participant, else the sender of the first
// message.
func primaryUserID(messages []analyzer.ChatMessage, participants []string) string {
	for _, msg := range messages {
		for _, participant := range participants {
			if msg.Username != "" && msg.Username == participant {
				return userIDOrUnknown(msg.UserID)
			}
		}
	}

	if len(messages) > 0 {
		return userIDOrUnknown(messages[0].UserID)
	}

	return "unknown"
}

func userIDOrUnknown(userID string) string {
	if userID == "" {
		return "unknown"
	}
	return userID
}
