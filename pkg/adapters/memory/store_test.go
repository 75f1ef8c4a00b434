package memory_test

import (
	"testing"

	"github.com/aretw0/flowedit/pkg/adapters/memory"
	"github.com/aretw0/flowedit/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunDocumentStoreContract(t, store)
}
