package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/user/reminder-bot/internal/analyzer"
)

// MockAnalyzer is a mock implementation of the analyzer Client interface.
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) AnalyzeChat(ctx context.Context, messages []analyzer.ChatMessage) (*analyzer.ExtractedEvent, error) {
	args := m.Called(ctx, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analyzer.ExtractedEvent), args.Error(1)
}

// MockEventStore is a mock implementation of the EventStore interface.
type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) AddEvent(ctx context.Context, userID, sourceChatID, summary string,
	eventDT time.Time, reminder1DT, reminder2DT *time.Time) (int64, error) {
	args := m.Called(ctx, userID, sourceChatID, summary, eventDT, reminder1DT, reminder2DT)
	return args.Get(0).(int64), args.Error(1)
}

func testMessages() []analyzer.ChatMessage {
	ts := time.Date(2026, 9, 9, 10, 0, 0, 0, time.UTC)
	return []analyzer.ChatMessage{
		{UserID: "user1", Username: "Alice", Message: "Hey team, should we have a meeting tomorrow at 3 PM?", Timestamp: ts},
		{UserID: "user2", Username: "Bob", Message: "That works for me!", Timestamp: ts.Add(time.Minute)},
		{UserID: "user3", Username: "Charlie", Message: "I can make it too.", Timestamp: ts.Add(2 * time.Minute)},
	}
}

func newTestProcessor(store EventStore, analyzerClient analyzer.Client) *Processor {
	p := New(store, analyzerClient, 0.8, 120*time.Minute, 2880*time.Minute)
	p.now = func() time.Time { return time.Date(2026, 9, 9, 10, 5, 0, 0, time.UTC) }
	return p
}

func TestProcessChatMessages_EmptyBatch(t *testing.T) {
	p := newTestProcessor(new(MockEventStore), new(MockAnalyzer))

	result := p.ProcessChatMessages(context.Background(), nil, "chat1")
	assert.Nil(t, result)
}

func TestProcessChatMessages_NoAgreement(t *testing.T) {
	mockAnalyzer := new(MockAnalyzer)
	mockAnalyzer.On("AnalyzeChat", mock.Anything, mock.Anything).
		Return(&analyzer.ExtractedEvent{AgreementDetected: false}, nil)

	p := newTestProcessor(new(MockEventStore), mockAnalyzer)

	result := p.ProcessChatMessages(context.Background(), testMessages(), "chat1")
	assert.Nil(t, result)
}

func TestProcessChatMessages_ConfidenceBoundary(t *testing.T) {
	eventDT := time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC)

	t.Run("0.79 is rejected", func(t *testing.T) {
		mockAnalyzer := new(MockAnalyzer)
		mockAnalyzer.On("AnalyzeChat", mock.Anything, mock.Anything).
			Return(&analyzer.ExtractedEvent{
				AgreementDetected: true,
				Summary:           "Team meeting",
				EventDT:           eventDT,
				Confidence:        0.79,
			}, nil)

		mockStore := new(MockEventStore)
		p := newTestProcessor(mockStore, mockAnalyzer)

		result := p.ProcessChatMessages(context.Background(), testMessages(), "chat1")
		require.NotNil(t, result)
		assert.True(t, result.EventDetected)
		assert.False(t, result.ThresholdMet)
		assert.Equal(t, 0.79, result.Confidence)
		mockStore.AssertNotCalled(t, "AddEvent")
	})

	t.Run("0.80 is accepted", func(t *testing.T) {
		mockAnalyzer := new(MockAnalyzer)
		mockAnalyzer.On("AnalyzeChat", mock.Anything, mock.Anything).
			Return(&analyzer.ExtractedEvent{
				AgreementDetected: true,
				Summary:           "Team meeting",
				EventDT:           eventDT,
				Participants:      []string{"Alice", "Bob"},
				Confidence:        0.80,
			}, nil)

		mockStore := new(MockEventStore)
		mockStore.On("AddEvent", mock.Anything, "user1", "chat1", "Team meeting",
			eventDT, mock.Anything, mock.Anything).Return(int64(7), nil)

		p := newTestProcessor(mockStore, mockAnalyzer)

		result := p.ProcessChatMessages(context.Background(), testMessages(), "chat1")
		require.NotNil(t, result)
		assert.True(t, result.ThresholdMet)
		assert.Equal(t, int64(7), result.EventID)
		mockStore.AssertExpectations(t)
	})
}

func TestProcessChatMessages_ReminderTimes(t *testing.T) {
	t.Run("both reminders in the future", func(t *testing.T) {
		// Event far enough out that both offsets land in the future.
		eventDT := time.Date(2026, 9, 12, 15, 0, 0, 0, time.UTC)

		mockAnalyzer := new(MockAnalyzer)
		mockAnalyzer.On("AnalyzeChat", mock.Anything, mock.Anything).
			Return(&analyzer.ExtractedEvent{
				AgreementDetected: true,
				Summary:           "Offsite",
				EventDT:           eventDT,
				Confidence:        0.95,
			}, nil)

		mockStore := new(MockEventStore)
		mockStore.On("AddEvent", mock.Anything, "user1", "chat1", "Offsite",
			eventDT, mock.Anything, mock.Anything).Return(int64(1), nil)

		p := newTestProcessor(mockStore, mockAnalyzer)

		result := p.ProcessChatMessages(context.Background(), testMessages(), "chat1")
		require.NotNil(t, result)
		require.NotNil(t, result.Reminder1DT)
		assert.True(t, result.Reminder1DT.Equal(eventDT.Add(-2*time.Hour)))
		require.NotNil(t, result.Reminder2DT)
		assert.True(t, result.Reminder2DT.Equal(eventDT.Add(-48*time.Hour)))
	})

	t.Run("past reminder is dropped", func(t *testing.T) {
		// Event 10 minutes from now: the 120-minute offset would land in
		// the past, so reminder 1 must be absent.
		eventDT := time.Date(2026, 9, 9, 10, 15, 0, 0, time.UTC)

		mockAnalyzer := new(MockAnalyzer)
		mockAnalyzer.On("AnalyzeChat", mock.Anything, mock.Anything).
			Return(&analyzer.ExtractedEvent{
				AgreementDetected: true,
				Summary:           "Quick sync",
				EventDT:           eventDT,
				Confidence:        0.9,
			}, nil)

		mockStore := new(MockEventStore)
		mockStore.On("AddEvent", mock.Anything, "user1", "chat1", "Quick sync",
			eventDT, (*time.Time)(nil), (*time.Time)(nil)).Return(int64(2), nil)

		p := newTestProcessor(mockStore, mockAnalyzer)

		result := p.ProcessChatMessages(context.Background(), testMessages(), "chat1")
		require.NotNil(t, result)
		assert.Nil(t, result.Reminder1DT)
		assert.Nil(t, result.Reminder2DT)
		mockStore.AssertExpectations(t)
	})
}

func TestProcessChatMessages_AnalyzerError(t *testing.T) {
	mockAnalyzer := new(MockAnalyzer)
	mockAnalyzer.On("AnalyzeChat", mock.Anything, mock.Anything).
		Return(nil, errors.New("model unavailable"))

	p := newTestProcessor(new(MockEventStore), mockAnalyzer)

	result := p.ProcessChatMessages(context.Background(), testMessages(), "chat1")
	require.NotNil(t, result)
	assert.True(t, result.Error)
	assert.Contains(t, result.Message, "model unavailable")
}

func TestProcessChatMessages_StoreError(t *testing.T) {
	eventDT := time.Date(2026, 9, 12, 15, 0, 0, 0, time.UTC)

	mockAnalyzer := new(MockAnalyzer)
	mockAnalyzer.On("AnalyzeChat", mock.Anything, mock.Anything).
		Return(&analyzer.ExtractedEvent{
			AgreementDetected: true,
			Summary:           "Offsite",
			EventDT:           eventDT,
			Confidence:        0.95,
		}, nil)

	mockStore := new(MockEventStore)
	mockStore.On("AddEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("disk full"))

	p := newTestProcessor(mockStore, mockAnalyzer)

	result := p.ProcessChatMessages(context.Background(), testMessages(), "chat1")
	require.NotNil(t, result)
	assert.True(t, result.Error)
	assert.Contains(t, result.Message, "disk full")
}

func TestPrimaryUserID(t *testing.T) {
	messages := testMessages()

	testCases := []struct {
		name         string
		messages     []analyzer.ChatMessage
		participants []string
		expected     string
	}{
		{
			name:         "participant match wins",
			messages:     messages,
			participants: []string{"Bob"},
			expected:     "user2",
		},
		{
			name:         "no participant match falls back to first sender",
			messages:     messages,
			participants: []string{"Dave"},
			expected:     "user1",
		},
		{
			name:         "no participants falls back to first sender",
			messages:     messages,
			participants: nil,
			expected:     "user1",
		},
		{
			name:     "no messages",
			messages: nil,
			expected: "unknown",
		},
		{
			name:         "matched sender without user id",
			messages:     []analyzer.ChatMessage{{Username: "Alice", Message: "hi"}},
			participants: []string{"Alice"},
			expected:     "unknown",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, primaryUserID(tc.messages, tc.participants))
		})
	}
}
