package commands

import (
	"context"
	"time"

	"github.com/user/reminder-bot/internal/db"
)

// EventStore defines the database operations needed by commands
type EventStore interface {
	GetUserEvents(ctx context.Context, userID string) ([]db.Event, error)
	DeleteEvent(ctx context.Context, eventID int64) (bool, error)
	GetDatabaseStats(ctx context.Context, now time.Time) (db.Stats, error)
}

// BufferStats describes the in-memory chat buffers held by the bot.
type BufferStats struct {
	Chats            int
	BufferedMessages int
}

// BufferControl lets commands reach into the bot's chat history buffers
// without importing the bot package.
type BufferControl interface {
	// ForceFlush runs analysis on a chat's buffered messages immediately,
	// reporting whether there was anything to analyze.
	ForceFlush(chatID int64) bool
	BufferStats() BufferStats
}
