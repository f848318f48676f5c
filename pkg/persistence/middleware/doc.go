// Package middleware decorates a ports.ConversationStore with encryption at
// rest and masking of personal data typed by the user.
package middleware
