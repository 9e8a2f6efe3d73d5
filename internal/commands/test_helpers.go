package commands

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/mock"
	"github.com/user/reminder-bot/internal/db"
)

// CreateCommandMessage is a helper function to create a Telegram message with a command
// for testing purposes. It properly sets up message entities required for commands.
func CreateCommandMessage(chatID, userID int64, commandText string, args ...string) *tgbotapi.Message {
	var fullText string
	if len(args) > 0 {
		fullText = commandText + " " + args[0]
	} else {
		fullText = commandText
	}

	// Command entity length is the length of the command, including the /
	commandLength := len(commandText)

	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{
			ID: chatID,
		},
		From: &tgbotapi.User{
			ID: userID,
		},
		Text: fullText,
		Entities: []tgbotapi.MessageEntity{
			{
				Type:   "bot_command",
				Offset: 0,
				Length: commandLength,
			},
		},
	}
}

// MockEventStore is a mock implementation of the EventStore interface.
type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) GetUserEvents(ctx context.Context, userID string) ([]db.Event, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]db.Event), args.Error(1)
}

func (m *MockEventStore) DeleteEvent(ctx context.Context, eventID int64) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventStore) GetDatabaseStats(ctx context.Context, now time.Time) (db.Stats, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(db.Stats), args.Error(1)
}

// MockBufferControl is a mock implementation of the BufferControl interface.
type MockBufferControl struct {
	mock.Mock
}

func (m *MockBufferControl) ForceFlush(chatID int64) bool {
	args := m.Called(chatID)
	return args.Bool(0)
}

func (m *MockBufferControl) BufferStats() BufferStats {
	args := m.Called()
	return args.Get(0).(BufferStats)
}
