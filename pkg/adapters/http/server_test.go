package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/uranai/internal/testutils"
	httpadapter "github.com/aretw0/uranai/pkg/adapters/http"
	"github.com/aretw0/uranai/pkg/adapters/line"
	"github.com/aretw0/uranai/pkg/adapters/redis"
	"github.com/aretw0/uranai/pkg/dispatch"
	"github.com/aretw0/uranai/pkg/domain"
	"github.com/aretw0/uranai/pkg/observability"
	"github.com/aretw0/uranai/pkg/session"
	"github.com/aretw0/uranai/pkg/turn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "channel-secret"

type stack struct {
	mr       *miniredis.Miniredis
	store    *redis.Store
	replier  *testutils.FakeReplier
	metrics  *observability.Metrics
	recorder *recordingDispatcher
	handler  http.Handler
}

// recordingDispatcher counts batches before handing them to the real dispatcher.
type recordingDispatcher struct {
	next    httpadapter.Dispatcher
	batches int
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, events []domain.Event) []domain.Outcome {
	d.batches++
	return d.next.Dispatch(ctx, events)
}

func newStack(t *testing.T) *stack {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := redis.New("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	sessions := session.NewManager(store, session.WithReadiness(1, 0))
	replier := &testutils.FakeReplier{}
	metrics := observability.NewMetrics()
	orch := turn.New(sessions, &testutils.FakeGenerator{Report: "良い一年になります。"}, &testutils.FakeLedger{}, replier,
		turn.WithHooks(metrics.Hooks()))
	recorder := &recordingDispatcher{next: dispatch.New(orch)}

	return &stack{
		mr:       mr,
		store:    store,
		replier:  replier,
		metrics:  metrics,
		recorder: recorder,
		handler: httpadapter.NewHandler(recorder, sessions,
			httpadapter.WithChannelSecret(secret),
			httpadapter.WithMetrics(metrics),
		),
	}
}

func textEvent(userID, token, text string) string {
	return fmt.Sprintf(`{"type":"message","timestamp":%d,"webhookEventId":"ev-%s","source":{"type":"user","userId":%q},"replyToken":%q,"message":{"id":"1","type":"text","text":%q}}`,
		time.Now().UnixMilli(), token, userID, token, text)
}

func batch(events ...string) []byte {
	return []byte(`{"destination":"Ubot","events":[` + strings.Join(events, ",") + `]}`)
}

func post(h http.Handler, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(line.SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_ProcessesBatch(t *testing.T) {
	s := newStack(t)
	body := batch(textEvent("U1", "tok-1", "こんにちは"), textEvent("U2", "tok-2", "こんにちは"))

	rec := post(s.handler, body, line.Sign(secret, body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Outcomes []domain.Outcome             `json:"outcomes"`
		Summary  map[domain.OutcomeStatus]int `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Outcomes, 2)
	assert.Equal(t, "U1", resp.Outcomes[0].UserID)
	assert.Equal(t, "U2", resp.Outcomes[1].UserID)
	assert.Equal(t, 2, resp.Summary[domain.OutcomeHandled])

	assert.Len(t, s.replier.Replies(), 2)
	for _, id := range []string{"U1", "U2"} {
		stored, err := s.store.Load(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.StepAwaitingName, stored.Step)
	}
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	s := newStack(t)
	body := batch(textEvent("U1", "tok-1", "こんにちは"))

	rec := post(s.handler, body, line.Sign("other-secret", body))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(s.handler, body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Zero(t, s.recorder.batches)
	assert.Empty(t, s.replier.Replies())
}

func TestWebhook_StoreUnavailable(t *testing.T) {
	s := newStack(t)
	s.mr.Close()
	body := batch(textEvent("U1", "tok-1", "こんにちは"))

	rec := post(s.handler, body, line.Sign(secret, body))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"message":"Session store is temporarily unavailable."}`, rec.Body.String())
	assert.Zero(t, s.recorder.batches, "no event may run while the store is down")
	assert.Empty(t, s.replier.Replies())
	assert.Contains(t, scrape(t, s.handler), "uranai_store_unavailable_total 1")
}

func TestWebhook_InvalidPayload(t *testing.T) {
	s := newStack(t)
	body := []byte(`{"events":`)

	rec := post(s.handler, body, line.Sign(secret, body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhook_BodyTooLarge(t *testing.T) {
	s := newStack(t)
	h := httpadapter.NewHandler(s.recorder, session.NewManager(s.store), httpadapter.WithMaxBodyBytes(16))
	body := batch(textEvent("U1", "tok-1", "こんにちは"))

	rec := post(h, body, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestWebhook_EmptyBatchVerification(t *testing.T) {
	s := newStack(t)
	body := batch()

	rec := post(s.handler, body, line.Sign(secret, body))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"outcomes":[],"summary":{}}`, rec.Body.String())
}

func TestHealthAndReady(t *testing.T) {
	s := newStack(t)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, get("/health").Code)
	assert.Equal(t, http.StatusOK, get("/ready").Code)

	s.mr.Close()
	assert.Equal(t, http.StatusOK, get("/health").Code, "liveness ignores the store")
	assert.Equal(t, http.StatusServiceUnavailable, get("/ready").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newStack(t)
	body := batch(textEvent("U1", "tok-1", "こんにちは"))
	require.Equal(t, http.StatusOK, post(s.handler, body, line.Sign(secret, body)).Code)

	out := scrape(t, s.handler)
	assert.Contains(t, out, `uranai_turns_total{event_type="message",status="handled"} 1`)
	assert.Contains(t, out, `uranai_webhook_batches_total{code="200"} 1`)
}

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
