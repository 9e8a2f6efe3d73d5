package commands

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// StartCommand handles /start
type StartCommand struct{}

func NewStartCommand() *StartCommand {
	return &StartCommand{}
}

func (c *StartCommand) Name() string {
	return "start"
}

func (c *StartCommand) Description() string {
	return "Start working with the bot"
}

func (c *StartCommand) Execute(message *tgbotapi.Message) *tgbotapi.MessageConfig {
	text := "👋 Hi! I watch this chat for plans and agreements.\n\n" +
		"When I spot a confirmed event I save it and remind you before it starts.\n" +
		"Use /help to see what I can do."
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	return &msg
}

// HelpCommand handles /help
type HelpCommand struct {
	registry *Registry
}

func NewHelpCommand(registry *Registry) *HelpCommand {
	return &HelpCommand{registry: registry}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "Show available commands"
}

func (c *HelpCommand) Execute(message *tgbotapi.Message) *tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(message.Chat.ID, c.registry.GenerateHelpText())
	msg.ParseMode = tgbotapi.ModeMarkdown
	return &msg
}
