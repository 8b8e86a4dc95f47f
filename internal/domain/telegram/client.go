package telegram

import "gopkg.in/telebot.v3"

// Client sends messages to a Telegram chat outside of a handler context.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
