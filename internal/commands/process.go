package commands

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ProcessCommand handles /process and forces analysis of the current
// chat's buffered messages without waiting for the buffer to fill
type ProcessCommand struct {
	buffers BufferControl
}

func NewProcessCommand(buffers BufferControl) *ProcessCommand {
	return &ProcessCommand{buffers: buffers}
}

func (c *ProcessCommand) Name() string {
	return "process"
}

func (c *ProcessCommand) Description() string {
	return "Analyze buffered chat messages now"
}

func (c *ProcessCommand) Execute(message *tgbotapi.Message) *tgbotapi.MessageConfig {
	if !c.buffers.ForceFlush(message.Chat.ID) {
		msg := tgbotapi.NewMessage(message.Chat.ID, "Nothing buffered for this chat yet.")
		return &msg
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "🔍 Analyzing buffered messages...")
	return &msg
}
