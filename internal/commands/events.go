package commands

import (
	"context"
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/reminder-bot/internal/db"
)

// EventsCommand handles /events and lists the caller's saved events
type EventsCommand struct {
	store EventStore
}

func NewEventsCommand(store EventStore) *EventsCommand {
	return &EventsCommand{store: store}
}

func (c *EventsCommand) Name() string {
	return "events"
}

func (c *EventsCommand) Description() string {
	return "List your saved events"
}

func (c *EventsCommand) Execute(message *tgbotapi.Message) *tgbotapi.MessageConfig {
	userID := strconv.FormatInt(message.From.ID, 10)

	events, err := c.store.GetUserEvents(context.Background(), userID)
	if err != nil {
		log.Printf("[COMMANDS] error fetching events for user %s: %v", userID, err)
		msg := tgbotapi.NewMessage(message.Chat.ID, "❌ Could not fetch your events, please try again later.")
		return &msg
	}

	if len(events) == 0 {
		msg := tgbotapi.NewMessage(message.Chat.ID, "You have no saved events yet.")
		return &msg
	}

	text := fmt.Sprintf("📅 Your events (%d):\n\n", len(events))
	for _, ev := range events {
		text += formatEventLine(ev)
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	return &msg
}

func formatEventLine(ev db.Event) string {
	line := fmt.Sprintf("#%d %s on %s", ev.ID, ev.Summary, ev.EventDT.Format("2006-01-02 15:04"))
	switch ev.Status {
	case db.StatusReminded1:
		line += " (reminded once)"
	case db.StatusReminded2:
		line += " (fully reminded)"
	}
	return line + "\n"
}
