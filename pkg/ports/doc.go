/*
Package ports defines the driven ports (interfaces) for the hotelbot controller.

These interfaces decouple the conversation logic from external implementations,
allowing the controller to work with various booking backends and storage backends.

# Key Interfaces

  - Backend: Sends the user's text to a booking service endpoint and returns its Reply.
  - ConversationStore: Responsible for persisting and loading session Conversations.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
