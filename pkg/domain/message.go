package domain

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is a single entry of the chat history.
// Messages are never mutated once appended.
type Message struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// UserMessage creates a message authored by the user.
func UserMessage(text string) Message {
	return Message{Sender: SenderUser, Text: text, CreatedAt: time.Now().UTC()}
}

// BotMessage creates a message authored by the assistant. Text may contain markdown.
func BotMessage(text string) Message {
	return Message{Sender: SenderBot, Text: text, CreatedAt: time.Now().UTC()}
}

// WarningMessage creates a bot message prefixed with the warning marker.
func WarningMessage(text string) Message {
	return BotMessage(WarningMarker + text)
}
