package store

import "time"

type ConversationMessageAuthor string

const (
	ConversationMessageAuthorUser ConversationMessageAuthor = "user"
	ConversationMessageAuthorBot  ConversationMessageAuthor = "bot"
)

type ConversationMessage struct {
	ID      string                    `json:"id"`
	Message string                    `json:"msg"`
	At      time.Time                 `json:"at"`
	Author  ConversationMessageAuthor `json:"author"` // user or bot
}

type Storage interface {
	AddConversationMessage(id string, msg ConversationMessage) error // add conversation message
	GetConversation(id string) ([]ConversationMessage, error)        // get conversation messages from oldest to newest
	ResetConversation(id string) error                               // reset conversation - delete all messages
}
