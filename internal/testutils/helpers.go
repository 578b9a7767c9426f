// Package testutils holds recording fakes for the collaborator ports.
package testutils

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/uranai/pkg/domain"
	"github.com/stretchr/testify/require"
)

// GenerateCall records one Generate invocation.
type GenerateCall struct {
	Name, Birth string
	Theme       domain.Theme
}

// FakeGenerator returns Report, or Err when set. Fn overrides both.
type FakeGenerator struct {
	Report string
	Err    error
	Fn     func(ctx context.Context, name, birth string, theme domain.Theme) (string, error)

	mu    sync.Mutex
	calls []GenerateCall
}

func (g *FakeGenerator) Generate(ctx context.Context, name, birth string, theme domain.Theme) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, GenerateCall{Name: name, Birth: birth, Theme: theme})
	g.mu.Unlock()

	if g.Fn != nil {
		return g.Fn(ctx, name, birth, theme)
	}
	if g.Err != nil {
		return "", g.Err
	}
	return g.Report, nil
}

func (g *FakeGenerator) Calls() []GenerateCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]GenerateCall(nil), g.calls...)
}

// FakeLedger keeps appended entries in memory.
type FakeLedger struct {
	Err error

	mu      sync.Mutex
	entries []domain.LedgerEntry
}

func (l *FakeLedger) Append(ctx context.Context, e domain.LedgerEntry) error {
	if l.Err != nil {
		return l.Err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return nil
}

func (l *FakeLedger) Entries() []domain.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.LedgerEntry(nil), l.entries...)
}

func (l *FakeLedger) Close() error { return nil }

// Reply records one delivered reply.
type Reply struct {
	Token    string
	Messages []domain.Message
}

// FakeReplier records replies. Fail makes the call with that index (0-based) fail with Err.
type FakeReplier struct {
	Err  error
	Fail map[int]bool

	mu       sync.Mutex
	attempts int
	replies  []Reply
}

func (r *FakeReplier) Reply(ctx context.Context, token string, msgs []domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.attempts
	r.attempts++
	if r.Err != nil && (r.Fail == nil || r.Fail[n]) {
		return r.Err
	}
	r.replies = append(r.replies, Reply{Token: token, Messages: msgs})
	return nil
}

func (r *FakeReplier) Replies() []Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Reply(nil), r.replies...)
}

func (r *FakeReplier) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

// ReplyTexts flattens every delivered message to its text.
func (r *FakeReplier) ReplyTexts() []string {
	var out []string
	for _, rep := range r.Replies() {
		for _, m := range rep.Messages {
			out = append(out, MessageText(m))
		}
	}
	return out
}

// MessageText returns the visible text of a message.
func MessageText(m domain.Message) string {
	switch m := m.(type) {
	case domain.TextMessage:
		return m.Text
	case domain.ThemePrompt:
		return m.Text
	}
	return ""
}

// SingleReplyText asserts exactly one reply with one message and returns its text.
func SingleReplyText(t *testing.T, r *FakeReplier) string {
	t.Helper()
	replies := r.Replies()
	require.Len(t, replies, 1, "expected exactly one reply")
	require.Len(t, replies[0].Messages, 1)
	return MessageText(replies[0].Messages[0])
}
