package memory_test

import (
	"testing"

	"github.com/aretw0/hotelbot/pkg/adapters/memory"
	"github.com/aretw0/hotelbot/pkg/ports"
	"github.com/aretw0/hotelbot/pkg/ports/tests"
)

var _ ports.ConversationStore = (*memory.Store)(nil)

func TestMemoryStore_Contract(t *testing.T) {
	tests.ConversationStoreContractTest(t, memory.NewStore())
}
