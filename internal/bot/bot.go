package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/reminder-bot/internal/analyzer"
	"github.com/user/reminder-bot/internal/commands"
	"github.com/user/reminder-bot/internal/processor"
)

// Processor turns a buffered chat batch into a processing result.
type Processor interface {
	ProcessChatMessages(ctx context.Context, messages []analyzer.ChatMessage, sourceChatID string) *processor.Result
}

// Bot listens for Telegram updates, buffers ordinary chat messages per
// chat, and hands full buffers to the processor for event detection.
type Bot struct {
	api             *tgbotapi.BotAPI
	commandRegistry *commands.Registry
	processor       Processor
	maxHistory      int

	histories    map[int64][]analyzer.ChatMessage
	historyMutex sync.Mutex

	wg     sync.WaitGroup
	stopCh chan struct{}
}

// New creates the bot and wires up its command registry.
func New(telegramToken string, store commands.EventStore, proc Processor, maxHistory int) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(telegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	b := &Bot{
		api:        api,
		processor:  proc,
		maxHistory: maxHistory,
		histories:  make(map[int64][]analyzer.ChatMessage),
		stopCh:     make(chan struct{}),
	}

	registry := commands.NewRegistry()
	registry.Register(commands.NewStartCommand())
	registry.Register(commands.NewHelpCommand(registry))
	registry.Register(commands.NewEventsCommand(store))
	registry.Register(commands.NewStatsCommand(store, b))
	registry.Register(commands.NewProcessCommand(b))
	registry.Register(commands.NewDeleteCommand(store))
	b.commandRegistry = registry

	return b, nil
}

// API exposes the underlying bot client so the reminder messenger can
// share its connection.
func (b *Bot) API() *tgbotapi.BotAPI {
	return b.api
}

// Start begins listening for updates from Telegram
func (b *Bot) Start() error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.handleUpdates(updates)
	}()

	log.Printf("[BOT] authorized as @%s", b.api.Self.UserName)
	return nil
}

// Stop gracefully shuts down the bot
func (b *Bot) Stop() {
	close(b.stopCh)
	b.api.StopReceivingUpdates()
	b.wg.Wait()
}

// handleUpdates processes incoming updates from Telegram
func (b *Bot) handleUpdates(updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-b.stopCh:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleMessage(update.Message)
			}
		}
	}
}

// handleMessage processes a single message from a user
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	log.Printf("[%s] %s", message.From.UserName, message.Text)

	if message.IsCommand() {
		commandName := message.Command()
		log.Printf("[COMMAND] %s: %s", message.From.UserName, commandName)
		command, exists := b.commandRegistry.Get(commandName)

		if !exists {
			b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
			return
		}

		responseMsg := command.Execute(message)
		b.sendResponse(responseMsg)
		return
	}

	if message.Text == "" {
		return
	}

	b.bufferMessage(message)
}

// bufferMessage appends a chat message to its chat's history and flushes
// the buffer for analysis once it reaches maxHistory messages.
func (b *Bot) bufferMessage(message *tgbotapi.Message) {
	chatMsg := analyzer.ChatMessage{
		UserID:    strconv.FormatInt(message.From.ID, 10),
		Username:  message.From.UserName,
		Message:   message.Text,
		Timestamp: time.Unix(int64(message.Date), 0).UTC(),
	}

	b.historyMutex.Lock()
	b.histories[message.Chat.ID] = append(b.histories[message.Chat.ID], chatMsg)
	full := len(b.histories[message.Chat.ID]) >= b.maxHistory
	b.historyMutex.Unlock()

	if full {
		log.Printf("[BOT] chat %d buffer full, analyzing", message.Chat.ID)
		b.flushChat(message.Chat.ID)
	}
}

// ForceFlush analyzes a chat's buffered messages immediately. It reports
// false when the buffer is empty.
func (b *Bot) ForceFlush(chatID int64) bool {
	b.historyMutex.Lock()
	empty := len(b.histories[chatID]) == 0
	b.historyMutex.Unlock()

	if empty {
		return false
	}

	b.flushChat(chatID)
	return true
}

// BufferStats reports the current buffer sizes across all chats.
func (b *Bot) BufferStats() commands.BufferStats {
	b.historyMutex.Lock()
	defer b.historyMutex.Unlock()

	stats := commands.BufferStats{}
	for _, history := range b.histories {
		if len(history) == 0 {
			continue
		}
		stats.Chats++
		stats.BufferedMessages += len(history)
	}
	return stats
}

// flushChat drains one chat's buffer and runs it through the processor.
// The buffer is cleared up front so a slow analysis never blocks new
// messages from being buffered.
func (b *Bot) flushChat(chatID int64) {
	b.historyMutex.Lock()
	history := b.histories[chatID]
	delete(b.histories, chatID)
	b.historyMutex.Unlock()

	if len(history) == 0 {
		return
	}

	result := b.processor.ProcessChatMessages(context.Background(), history, strconv.FormatInt(chatID, 10))
	if result == nil {
		return
	}

	if result.Error {
		log.Printf("[BOT] processing failed for chat %d: %s", chatID, result.Message)
		return
	}

	if !result.ThresholdMet {
		log.Printf("[BOT] event candidate in chat %d below threshold (confidence %.2f)", chatID, result.Confidence)
		return
	}

	b.sendMessage(chatID, formatDetectionMessage(result))
}

// formatDetectionMessage builds the confirmation sent to the source chat
// when a detected event has been saved.
func formatDetectionMessage(result *processor.Result) string {
	text := fmt.Sprintf("✅ Event detected and scheduled: %s\n📅 %s",
		result.Summary, result.EventDT.Format("2006-01-02 at 15:04"))

	if result.Location != "" {
		text += fmt.Sprintf("\n📍 %s", result.Location)
	}

	switch {
	case result.Reminder1DT != nil && result.Reminder2DT != nil:
		text += "\n🔔 You will get two reminders before it starts."
	case result.Reminder1DT != nil || result.Reminder2DT != nil:
		text += "\n🔔 You will get a reminder before it starts."
	}

	return text
}

// sendResponse sends a message with debugging logs
func (b *Bot) sendResponse(msgConfig *tgbotapi.MessageConfig) {
	if msgConfig == nil {
		return
	}

	_, err := b.api.Send(msgConfig)
	if err != nil {
		log.Printf("Error sending message: %v", err)
		log.Printf("Message text was: %s", msgConfig.Text)
	}
}

// sendMessage simplified method for sending text messages
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	b.sendResponse(&msg)
}
