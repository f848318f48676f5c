package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/hotelbot/pkg/domain"
	"github.com/aretw0/hotelbot/pkg/ports"
)

// ConversationStoreContractTest is a reusable test suite that verifies if an adapter complies with ports.ConversationStore.
func ConversationStoreContractTest(t *testing.T, store ports.ConversationStore) {
	t.Helper()
	ctx := context.Background()
	sessionID := "contract-session"

	// 1. Load non-existent session
	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, sessionID)
		if !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})

	// 2. Save and Load
	t.Run("Save_Load", func(t *testing.T) {
		conv := domain.NewConversation(sessionID)
		conv.Append(domain.UserMessage("Two nights in Durban"))
		conv.Stage = domain.StageSelecting
		conv.PendingInput = "retry me"

		if err := store.Save(ctx, sessionID, conv); err != nil {
			t.Fatalf("failed to save conversation: %v", err)
		}

		loaded, err := store.Load(ctx, sessionID)
		if err != nil {
			t.Fatalf("failed to load conversation: %v", err)
		}
		if loaded.Stage != domain.StageSelecting {
			t.Errorf("expected stage %q, got %q", domain.StageSelecting, loaded.Stage)
		}
		if len(loaded.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(loaded.Messages))
		}
		if loaded.Messages[1].Text != "Two nights in Durban" || loaded.Messages[1].Sender != domain.SenderUser {
			t.Errorf("unexpected message: %+v", loaded.Messages[1])
		}
		if loaded.PendingInput != "retry me" {
			t.Errorf("expected pending input to round-trip, got %q", loaded.PendingInput)
		}
	})

	// 3. Stored copy is isolated from the caller
	t.Run("Isolation", func(t *testing.T) {
		conv := domain.NewConversation(sessionID)
		if err := store.Save(ctx, sessionID, conv); err != nil {
			t.Fatal(err)
		}
		conv.Append(domain.UserMessage("not saved"))

		loaded, err := store.Load(ctx, sessionID)
		if err != nil {
			t.Fatal(err)
		}
		if len(loaded.Messages) != 1 {
			t.Errorf("store shares memory with caller: %d messages", len(loaded.Messages))
		}
	})

	// 4. List
	t.Run("List", func(t *testing.T) {
		sessions, err := store.List(ctx)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		found := false
		for _, id := range sessions {
			if id == sessionID {
				found = true
			}
		}
		if !found {
			t.Errorf("session %s missing from list %v", sessionID, sessions)
		}
	})

	// 5. Delete
	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(ctx, sessionID); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, err := store.Load(ctx, sessionID); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
		}
		// Deleting twice is not an error
		if err := store.Delete(ctx, sessionID); err != nil {
			t.Errorf("second delete failed: %v", err)
		}
	})
}
