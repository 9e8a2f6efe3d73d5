package messenger

import (
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram delivers reminder messages through the Telegram Bot API.
type Telegram struct {
	api *tgbotapi.BotAPI
}

// NewTelegram creates a Telegram messenger. A missing or invalid token is
// a configuration error; ordinary delivery failures later are not.
func NewTelegram(token string) (*Telegram, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram messenger: %w", err)
	}

	return &Telegram{api: api}, nil
}

// NewTelegramWithAPI wraps an existing bot API client, so the ingest bot
// and the messenger can share one connection.
func NewTelegramWithAPI(api *tgbotapi.BotAPI) *Telegram {
	return &Telegram{api: api}
}

// SendMessage delivers text to the given user or chat id. It reports
// failure instead of returning an error so the scheduler's poll loop can
// treat delivery as a plain per-event outcome.
func (t *Telegram) SendMessage(destinationID, text string) bool {
	chatID, err := strconv.ParseInt(destinationID, 10, 64)
	if err != nil {
		log.Printf("[MESSENGER] invalid destination id %q: %v", destinationID, err)
		return false
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := t.api.Send(msg); err != nil {
		log.Printf("[MESSENGER] error sending message to %s: %v", destinationID, err)
		return false
	}

	log.Printf("[MESSENGER] message sent to %s", destinationID)
	return true
}
