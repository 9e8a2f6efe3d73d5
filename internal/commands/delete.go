package commands

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DeleteCommand handles /delete <event_id>
type DeleteCommand struct {
	store EventStore
}

func NewDeleteCommand(store EventStore) *DeleteCommand {
	return &DeleteCommand{store: store}
}

func (c *DeleteCommand) Name() string {
	return "delete"
}

func (c *DeleteCommand) Description() string {
	return "Delete an event by id, e.g. /delete 42"
}

func (c *DeleteCommand) Execute(message *tgbotapi.Message) *tgbotapi.MessageConfig {
	arg := strings.TrimSpace(message.CommandArguments())
	if arg == "" {
		msg := tgbotapi.NewMessage(message.Chat.ID, "Usage: /delete <event_id>")
		return &msg
	}

	eventID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("'%s' is not a valid event id.", arg))
		return &msg
	}

	ok, err := c.store.DeleteEvent(context.Background(), eventID)
	if err != nil {
		log.Printf("[COMMANDS] error deleting event %d: %v", eventID, err)
		msg := tgbotapi.NewMessage(message.Chat.ID, "❌ Could not delete the event, please try again later.")
		return &msg
	}

	if !ok {
		msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("Event #%d was not found.", eventID))
		return &msg
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("🗑 Event #%d deleted.", eventID))
	return &msg
}
