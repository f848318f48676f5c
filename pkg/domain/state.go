package domain

import "time"

// Conversation represents the current snapshot of a chat session.
type Conversation struct {
	// SessionID identifies the conversation in a store. Empty for ephemeral sessions.
	SessionID string `json:"session_id,omitempty"`

	// Messages is the append-only chat history.
	Messages []Message `json:"messages"`

	// Stage is the active phase of the booking flow.
	Stage Stage `json:"stage"`

	// PendingInput holds the text being submitted. It survives a backend error
	// so the host can offer it again.
	PendingInput string `json:"pending_input,omitempty"`

	// Generation is bumped on every reset. A reset timer armed for an older
	// generation is ignored.
	Generation int `json:"generation"`

	UpdatedAt time.Time `json:"updated_at"`

	// Sealed holds the encrypted conversation when a store middleware keeps
	// it opaque at rest. Messages and PendingInput are empty in that case.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewConversation creates a fresh session with the welcome message.
func NewConversation(sessionID string) *Conversation {
	return &Conversation{
		SessionID: sessionID,
		Messages:  []Message{BotMessage(WelcomeText)},
		Stage:     StageBooking,
		UpdatedAt: time.Now().UTC(),
	}
}

// Clone returns a copy whose message slice can be appended to without
// affecting the original.
func (c *Conversation) Clone() *Conversation {
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return &out
}

// Append adds messages to the end of the history.
func (c *Conversation) Append(msgs ...Message) {
	c.Messages = append(c.Messages, msgs...)
	c.UpdatedAt = time.Now().UTC()
}

// Reset discards the history and returns to the booking stage with the
// welcome-back message.
func (c *Conversation) Reset() {
	c.Messages = []Message{BotMessage(WelcomeBackText)}
	c.Stage = StageBooking
	c.PendingInput = ""
	c.Generation++
	c.UpdatedAt = time.Now().UTC()
}

// LastMessage returns the most recent message, if any.
func (c *Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}
