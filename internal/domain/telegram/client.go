package telegram

import "gopkg.in/telebot.v3"

// Client sends messages to Telegram chats. Services depend on this instead
// of the bot library.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
