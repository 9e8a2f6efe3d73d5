package commands

import (
	"context"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// StatsCommand handles /stats and reports database and buffer counters
type StatsCommand struct {
	store   EventStore
	buffers BufferControl
	now     func() time.Time
}

func NewStatsCommand(store EventStore, buffers BufferControl) *StatsCommand {
	return &StatsCommand{store: store, buffers: buffers, now: time.Now}
}

func (c *StatsCommand) Name() string {
	return "stats"
}

func (c *StatsCommand) Description() string {
	return "Show event and buffer statistics"
}

func (c *StatsCommand) Execute(message *tgbotapi.Message) *tgbotapi.MessageConfig {
	stats, err := c.store.GetDatabaseStats(context.Background(), c.now())
	if err != nil {
		log.Printf("[COMMANDS] error fetching stats: %v", err)
		msg := tgbotapi.NewMessage(message.Chat.ID, "❌ Could not fetch statistics, please try again later.")
		return &msg
	}

	text := fmt.Sprintf(
		"📊 Statistics\n\nTotal events: %d\nEvents with reminders: %d\nUpcoming (7 days): %d",
		stats.TotalEvents, stats.EventsWithReminders, stats.UpcomingEvents)

	if c.buffers != nil {
		bs := c.buffers.BufferStats()
		text += fmt.Sprintf("\n\nBuffered chats: %d\nBuffered messages: %d", bs.Chats, bs.BufferedMessages)
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	return &msg
}
