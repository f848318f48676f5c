package domain

import "time"

const (
	// WelcomeText greets the user when a session starts.
	WelcomeText = "👋 Welcome to Hotel Bot! How can I help you today?"

	// WelcomeBackText replaces the history after a completed booking.
	WelcomeBackText = "👋 Would you like to make another booking?"

	// WarningMarker prefixes bot messages that report a problem.
	WarningMarker = "⚠️ "

	// ConnectionWarning is shown when the backend cannot be reached or its reply cannot be read.
	ConnectionWarning = "Could not connect to backend."

	// DefaultResetDelay is how long the "done" stage lingers before the conversation resets.
	DefaultResetDelay = 5 * time.Second
)
