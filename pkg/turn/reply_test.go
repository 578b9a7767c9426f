package turn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/uranai/internal/testutils"
	"github.com/aretw0/uranai/pkg/domain"
	"github.com/stretchr/testify/assert"
)

var hello = []domain.Message{domain.TextMessage{Text: "hello"}}

func TestReplyHandle_OneShot(t *testing.T) {
	r := &testutils.FakeReplier{}
	h := newReplyHandle(r, "tok", time.Now().Add(time.Minute), time.Now)

	assert.NoError(t, h.Send(context.Background(), hello))
	assert.ErrorIs(t, h.Send(context.Background(), hello), domain.ErrReplyUnavailable)
	assert.Equal(t, 1, r.Attempts())
	assert.False(t, h.Usable())
}

func TestReplyHandle_FailedDeliveryDoesNotConsume(t *testing.T) {
	r := &testutils.FakeReplier{Err: errors.New("network"), Fail: map[int]bool{0: true}}
	h := newReplyHandle(r, "tok", time.Now().Add(time.Minute), time.Now)

	assert.Error(t, h.Send(context.Background(), hello))
	assert.True(t, h.Usable())
	assert.NoError(t, h.Send(context.Background(), hello))
}

func TestReplyHandle_Expired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	r := &testutils.FakeReplier{}
	h := newReplyHandle(r, "tok", now.Add(time.Second), clock)

	assert.Equal(t, time.Second, h.Remaining())
	now = now.Add(time.Second)
	assert.ErrorIs(t, h.Send(context.Background(), hello), domain.ErrReplyUnavailable)
	assert.Equal(t, 0, r.Attempts())
}

func TestReplyHandle_NoToken(t *testing.T) {
	h := newReplyHandle(&testutils.FakeReplier{}, "", time.Now().Add(time.Minute), time.Now)
	assert.ErrorIs(t, h.Send(context.Background(), hello), domain.ErrReplyUnavailable)
}

func TestUnwind(t *testing.T) {
	s := domain.Session{UserID: "U1", Step: domain.StepGenerating, Name: "花子", Birth: "1993-07-21", Theme: "恋愛運"}
	got := unwind(s)
	assert.Equal(t, domain.StepAwaitingTheme, got.Step)
	assert.Equal(t, "恋愛運", got.Theme)

	other := domain.Session{Step: domain.StepAwaitingBirth, Name: "花子"}
	assert.Equal(t, other, unwind(other))
}
