package domain

// ConversationDiff represents the changes between two conversation snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type ConversationDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	// Stage is set when the stage changed.
	Stage *Stage `json:"stage,omitempty"`

	// Replaced is true when the history was rewritten (reset). Appended then
	// holds the complete new history.
	Replaced bool `json:"replaced,omitempty"`

	// Appended contains messages added since the old snapshot.
	Appended []Message `json:"appended,omitempty"`

	// PendingInput is set when the pending input changed.
	PendingInput *string `json:"pending_input,omitempty"`
}

// Diff calculates the difference between oldConv and newConv.
// If oldConv is nil, it returns a diff representing the entire newConv (initial load).
// It returns nil when nothing changed.
func Diff(oldConv, newConv *Conversation) *ConversationDiff {
	if newConv == nil {
		return nil
	}

	diff := &ConversationDiff{SessionID: newConv.SessionID}

	if oldConv == nil || oldConv.Stage != newConv.Stage {
		stage := newConv.Stage
		diff.Stage = &stage
	}

	if oldConv == nil || oldConv.PendingInput != newConv.PendingInput {
		pending := newConv.PendingInput
		diff.PendingInput = &pending
	}

	switch {
	case oldConv == nil:
		diff.Appended = newConv.Messages
	case oldConv.Generation != newConv.Generation || len(newConv.Messages) < len(oldConv.Messages):
		diff.Replaced = true
		diff.Appended = newConv.Messages
	case len(newConv.Messages) > len(oldConv.Messages):
		diff.Appended = newConv.Messages[len(oldConv.Messages):]
	}

	if diff.Stage == nil && diff.PendingInput == nil && !diff.Replaced && len(diff.Appended) == 0 {
		return nil
	}
	if oldConv == nil && diff.PendingInput != nil && *diff.PendingInput == "" {
		diff.PendingInput = nil
	}
	return diff
}
