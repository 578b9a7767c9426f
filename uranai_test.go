package uranai_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/uranai"
	"github.com/aretw0/uranai/internal/config"
	"github.com/aretw0/uranai/internal/testutils"
	"github.com/aretw0/uranai/pkg/adapters/ledger"
	"github.com/aretw0/uranai/pkg/adapters/line"
	"github.com/aretw0/uranai/pkg/dialogue"
	"github.com/aretw0/uranai/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.LINE.ChannelSecret = "secret"
	cfg.LINE.ChannelAccessToken = "token"
	cfg.Generation.APIKey = "sk-test"
	cfg.Ledger.DSN = filepath.Join(t.TempDir(), "ledger.db")
	return cfg
}

type conversation struct {
	t       *testing.T
	handler http.Handler
	secret  string
	userID  string
	n       int
}

func (c *conversation) send(event string) {
	c.t.Helper()
	c.n++
	body := []byte(`{"destination":"Ubot","events":[` + event + `]}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set(line.SignatureHeader, line.Sign(c.secret, body))
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
}

func (c *conversation) say(text string) {
	c.t.Helper()
	c.send(fmt.Sprintf(`{"type":"message","timestamp":%d,"webhookEventId":"ev-%d","source":{"type":"user","userId":%q},"replyToken":"tok-%d","message":{"id":"m","type":"text","text":%q}}`,
		time.Now().UnixMilli(), c.n, c.userID, c.n, text))
}

func (c *conversation) tap(theme domain.Theme) {
	c.t.Helper()
	c.send(fmt.Sprintf(`{"type":"postback","timestamp":%d,"webhookEventId":"ev-%d","source":{"type":"user","userId":%q},"replyToken":"tok-%d","postback":{"data":%q}}`,
		time.Now().UnixMilli(), c.n, c.userID, c.n, dialogue.EncodeThemePostback(theme)))
}

func TestApp_FullConversation(t *testing.T) {
	cfg := testConfig(t)
	generator := &testutils.FakeGenerator{Report: "今年は新しい出会いに恵まれます。"}
	replier := &testutils.FakeReplier{}

	app, err := uranai.New(cfg, uranai.WithGenerator(generator), uranai.WithReplier(replier))
	require.NoError(t, err)
	defer app.Close()

	c := &conversation{t: t, handler: app.Handler, secret: cfg.LINE.ChannelSecret, userID: "U-full"}
	c.say("こんにちは")
	c.say("花子")
	c.say("1993/7/21")
	c.tap(domain.ThemeLove)

	texts := replier.ReplyTexts()
	require.Len(t, texts, 4)
	assert.Contains(t, texts[0], "お名前")
	assert.Contains(t, texts[1], "花子さんですね")
	assert.Contains(t, texts[3], "「恋愛運」")

	assert.Equal(t, []testutils.GenerateCall{{Name: "花子", Birth: "1993-07-21", Theme: domain.ThemeLove}}, generator.Calls())

	sink, err := ledger.Open(cfg.Ledger.DSN)
	require.NoError(t, err)
	defer sink.Close()
	entries, err := sink.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "U-full", entries[0].UserID)
	assert.Equal(t, "今年は新しい出会いに恵まれます。", entries[0].Report)

	s, fresh := app.Sessions.Load(context.Background(), "U-full")
	assert.True(t, s.IsDefault())
	assert.False(t, fresh)
}

func TestApp_RedisWithEncryption(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Session.KVURL = "redis://" + mr.Addr()
	cfg.Session.EncryptionKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=" // 32 ASCII bytes
	cfg.Session.SerializeTurn = true

	app, err := uranai.New(cfg,
		uranai.WithGenerator(&testutils.FakeGenerator{Report: "ok"}),
		uranai.WithReplier(&testutils.FakeReplier{}),
		uranai.WithLedger(&testutils.FakeLedger{}),
	)
	require.NoError(t, err)
	defer app.Close()
	assert.True(t, app.Sessions.Serialized())

	c := &conversation{t: t, handler: app.Handler, secret: cfg.LINE.ChannelSecret, userID: "U-enc"}
	c.say("こんにちは")
	c.say("花子")

	raw, err := mr.Get("fortuneAppUserSession:U-enc")
	require.NoError(t, err)
	assert.NotContains(t, raw, "花子")
	assert.Contains(t, raw, `"step":2`)

	s, _ := app.Sessions.Load(context.Background(), "U-enc")
	assert.Equal(t, "花子", s.Name)
}

func TestApp_InvalidEncryptionKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.EncryptionKey = "c2hvcnQ="

	_, err := uranai.New(cfg, uranai.WithReplier(&testutils.FakeReplier{}))
	assert.ErrorContains(t, err, "SESSION_ENCRYPTION_KEY")
}

func TestApp_MissingAPIKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Generation.APIKey = ""

	_, err := uranai.New(cfg)
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}
