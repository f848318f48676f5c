// Package runtime holds the conversation state machine.
//
// Each stage maps to a backend endpoint and an interpretation of the reply.
// The Engine never keeps conversation state of its own; callers pass a
// snapshot in and receive the next snapshot back.
package runtime
