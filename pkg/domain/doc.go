/*
Package domain contains the core domain models of the hotelbot conversation.

It defines the entities the controller works with: chat Messages, the booking
Stage, the Conversation snapshot and the decoded backend Reply. This package is
kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Message: A single chat bubble, authored by the user or the bot.
  - Stage: The current phase of the booking flow (booking, selecting, confirming, done).
  - Conversation: The runtime snapshot of a session (Messages, Stage, PendingInput).
  - Reply: The structured response returned by the booking backend.
*/
package domain
