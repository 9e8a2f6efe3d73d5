package bot

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/user/reminder-bot/internal/analyzer"
	"github.com/user/reminder-bot/internal/processor"
)

// MockProcessor is a mock implementation of the Processor interface.
type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) ProcessChatMessages(ctx context.Context, messages []analyzer.ChatMessage, sourceChatID string) *processor.Result {
	args := m.Called(ctx, messages, sourceChatID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*processor.Result)
}

func newTestBot(proc Processor, maxHistory int) *Bot {
	return &Bot{
		processor:  proc,
		maxHistory: maxHistory,
		histories:  make(map[int64][]analyzer.ChatMessage),
		stopCh:     make(chan struct{}),
	}
}

func chatMessage(chatID, userID int64, username, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: userID, UserName: username},
		Date: int(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC).Unix()),
		Text: text,
	}
}

func TestBufferMessage_FlushesAtThreshold(t *testing.T) {
	proc := new(MockProcessor)
	proc.On("ProcessChatMessages", mock.Anything, mock.Anything, "42").Return(nil)

	b := newTestBot(proc, 3)

	b.bufferMessage(chatMessage(42, 1, "alice", "first"))
	b.bufferMessage(chatMessage(42, 2, "bob", "second"))
	proc.AssertNumberOfCalls(t, "ProcessChatMessages", 0)

	b.bufferMessage(chatMessage(42, 1, "alice", "third"))
	proc.AssertNumberOfCalls(t, "ProcessChatMessages", 1)

	// The flushed batch carried all three messages in order.
	batch := proc.Calls[0].Arguments.Get(1).([]analyzer.ChatMessage)
	assert.Len(t, batch, 3)
	assert.Equal(t, "first", batch[0].Message)
	assert.Equal(t, "alice", batch[0].Username)
	assert.Equal(t, "1", batch[0].UserID)
	assert.Equal(t, "third", batch[2].Message)

	// The buffer was cleared by the flush.
	assert.Equal(t, 0, b.BufferStats().BufferedMessages)
}

func TestBufferMessage_SeparateChats(t *testing.T) {
	proc := new(MockProcessor)
	b := newTestBot(proc, 5)

	b.bufferMessage(chatMessage(1, 1, "alice", "chat one"))
	b.bufferMessage(chatMessage(2, 2, "bob", "chat two"))
	b.bufferMessage(chatMessage(2, 2, "bob", "chat two again"))

	stats := b.BufferStats()
	assert.Equal(t, 2, stats.Chats)
	assert.Equal(t, 3, stats.BufferedMessages)
	proc.AssertNumberOfCalls(t, "ProcessChatMessages", 0)
}

func TestForceFlush(t *testing.T) {
	proc := new(MockProcessor)
	proc.On("ProcessChatMessages", mock.Anything, mock.Anything, "42").Return(nil)

	b := newTestBot(proc, 30)

	// Nothing buffered yet.
	assert.False(t, b.ForceFlush(42))

	b.bufferMessage(chatMessage(42, 1, "alice", "hello"))
	assert.True(t, b.ForceFlush(42))
	proc.AssertNumberOfCalls(t, "ProcessChatMessages", 1)

	// The buffer is empty after a forced flush.
	assert.False(t, b.ForceFlush(42))
}

func TestFormatDetectionMessage(t *testing.T) {
	eventDT := time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC)
	reminder := eventDT.Add(-2 * time.Hour)

	t.Run("with location and both reminders", func(t *testing.T) {
		text := formatDetectionMessage(&processor.Result{
			Summary:     "Team meeting",
			EventDT:     eventDT,
			Location:    "Office",
			Reminder1DT: &reminder,
			Reminder2DT: &reminder,
		})
		assert.Contains(t, text, "✅ Event detected and scheduled: Team meeting")
		assert.Contains(t, text, "2026-09-10 at 15:00")
		assert.Contains(t, text, "📍 Office")
		assert.Contains(t, text, "two reminders")
	})

	t.Run("single reminder, no location", func(t *testing.T) {
		text := formatDetectionMessage(&processor.Result{
			Summary:     "Dinner",
			EventDT:     eventDT,
			Reminder2DT: &reminder,
		})
		assert.NotContains(t, text, "📍")
		assert.Contains(t, text, "a reminder before it starts")
	})

	t.Run("no reminders", func(t *testing.T) {
		text := formatDetectionMessage(&processor.Result{
			Summary: "Dinner",
			EventDT: eventDT,
		})
		assert.NotContains(t, text, "🔔")
	})
}
