package workspace

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/flowedit/pkg/adapters/memory"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	count := 1000

	for i := 0; i < count; i++ {
		name := fmt.Sprintf("doc-%d", i)
		_ = mgr.Create(ctx, name)
		_ = mgr.Delete(ctx, name)
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
