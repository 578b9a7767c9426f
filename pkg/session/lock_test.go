package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/uranai/pkg/adapters/memory"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore(), WithSerialization(true))
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		uid := fmt.Sprintf("U%d", i)
		_ = mgr.WithLock(ctx, uid, func(ctx context.Context) error {
			return mgr.Delete(ctx, uid)
		})
	}

	mgr.mu.Lock()
	lockCount := len(mgr.locks)
	mgr.mu.Unlock()

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after turns completed", lockCount)
	}
}
