package turn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/uranai/pkg/domain"
	"github.com/aretw0/uranai/pkg/ports"
)

// replyHandle wraps the platform reply token. It can deliver at most once
// and never after its deadline.
type replyHandle struct {
	replier  ports.Replier
	token    string
	deadline time.Time
	now      func() time.Time

	mu       sync.Mutex
	consumed bool
}

func newReplyHandle(replier ports.Replier, token string, deadline time.Time, now func() time.Time) *replyHandle {
	return &replyHandle{replier: replier, token: token, deadline: deadline, now: now}
}

// Remaining is the time left before the token expires.
func (h *replyHandle) Remaining() time.Duration {
	return h.deadline.Sub(h.now())
}

// Usable reports whether Send could still attempt delivery.
func (h *replyHandle) Usable() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.usableLocked() == nil
}

func (h *replyHandle) usableLocked() error {
	switch {
	case h.token == "":
		return fmt.Errorf("%w: no reply token", domain.ErrReplyUnavailable)
	case h.consumed:
		return fmt.Errorf("%w: already consumed", domain.ErrReplyUnavailable)
	case !h.now().Before(h.deadline):
		return fmt.Errorf("%w: expired", domain.ErrReplyUnavailable)
	}
	return nil
}

// Send delivers msgs. The handle is consumed only by a successful delivery.
func (h *replyHandle) Send(ctx context.Context, msgs []domain.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.usableLocked(); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	ctx, cancel := context.WithDeadline(ctx, h.deadline)
	defer cancel()

	if err := h.replier.Reply(ctx, h.token, msgs); err != nil {
		return fmt.Errorf("reply failed: %w", err)
	}
	h.consumed = true
	return nil
}
