package line_test

import (
	"testing"
	"time"

	"github.com/aretw0/uranai/pkg/adapters/line"
	"github.com/aretw0/uranai/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWebhook = `{
  "destination": "Uxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx",
  "events": [
    {
      "type": "message",
      "mode": "active",
      "timestamp": 1700000000000,
      "webhookEventId": "01HAAAA",
      "deliveryContext": {"isRedelivery": false},
      "source": {"type": "user", "userId": "U1"},
      "replyToken": "tok-1",
      "message": {"id": "1", "type": "text", "text": "花子"}
    },
    {
      "type": "message",
      "timestamp": 1700000000001,
      "webhookEventId": "01HBBBB",
      "deliveryContext": {"isRedelivery": true},
      "source": {"type": "user", "userId": "U2"},
      "replyToken": "tok-2",
      "message": {"id": "2", "type": "sticker", "packageId": "1", "stickerId": "1"}
    },
    {
      "type": "postback",
      "timestamp": 1700000000002,
      "webhookEventId": "01HCCCC",
      "source": {"type": "user", "userId": "U3"},
      "replyToken": "tok-3",
      "postback": {"data": "action=select_theme&theme=%E6%81%8B%E6%84%9B%E9%81%8B"}
    },
    {
      "type": "postback",
      "webhookEventId": "01HDDDD",
      "source": {"type": "user", "userId": "U4"},
      "replyToken": "tok-4",
      "postback": {"data": "action=richmenu"}
    },
    {"type": "unfollow", "webhookEventId": "01HEEEE", "source": {"type": "user", "userId": "U5"}},
    {"type": "join", "webhookEventId": "01HFFFF", "source": {"type": "group", "groupId": "G1"}, "replyToken": "tok-6"}
  ]
}`

func TestDecodeWebhook(t *testing.T) {
	events, err := line.DecodeWebhook([]byte(sampleWebhook))
	require.NoError(t, err)
	require.Len(t, events, 6)

	assert.Equal(t, domain.Event{
		ID:         "01HAAAA",
		Type:       domain.EventMessage,
		UserID:     "U1",
		ReplyToken: "tok-1",
		ReceivedAt: time.UnixMilli(1700000000000),
		Input:      domain.TextInput{Text: "花子"},
	}, events[0])

	assert.Equal(t, domain.UnsupportedInput{Kind: "sticker"}, events[1].Input)
	assert.True(t, events[1].Redelivery)

	assert.Equal(t, domain.ThemeInput{Theme: domain.ThemeLove}, events[2].Input)
	assert.Equal(t, domain.UnknownPostback{Data: "action=richmenu"}, events[3].Input)

	assert.Equal(t, domain.EventUnfollow, events[4].Type)
	assert.True(t, events[4].Departure())
	assert.Nil(t, events[4].Input)

	assert.Empty(t, events[5].UserID, "group events carry no user")
	assert.False(t, events[5].Type.Supported())
}

func TestDecodeWebhook_FollowAndGroupMember(t *testing.T) {
	body := `{"destination":"U0","events":[
	  {"type":"follow","timestamp":1700000000000,"webhookEventId":"01HGGGG","source":{"type":"user","userId":"U7"},"replyToken":"tok-7","follow":{"isUnblocked":false}},
	  {"type":"message","webhookEventId":"01HHHHH","source":{"type":"group","groupId":"G1","userId":"U8"},"replyToken":"tok-8","message":{"id":"3","type":"text","text":"hi"}}
	]}`
	events, err := line.DecodeWebhook([]byte(body))
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, domain.EventFollow, events[0].Type)
	assert.Equal(t, "U7", events[0].UserID)
	assert.Equal(t, "tok-7", events[0].ReplyToken)
	assert.Nil(t, events[0].Input)

	assert.Equal(t, "U8", events[1].UserID, "group members with a shared profile keep their user id")
	assert.Equal(t, domain.TextInput{Text: "hi"}, events[1].Input)
	assert.True(t, events[1].ReceivedAt.IsZero())
}

func TestDecodeWebhook_Empty(t *testing.T) {
	// The console's "Verify" button posts an empty batch.
	events, err := line.DecodeWebhook([]byte(`{"destination":"U0","events":[]}`))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDecodeWebhook_Invalid(t *testing.T) {
	_, err := line.DecodeWebhook([]byte(`{"events":`))
	assert.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	body := []byte(sampleWebhook)
	sig := line.Sign("secret", body)

	assert.True(t, line.VerifySignature("secret", body, sig))
	assert.False(t, line.VerifySignature("other", body, sig))
	assert.False(t, line.VerifySignature("secret", append(body, ' '), sig))
	assert.False(t, line.VerifySignature("secret", body, "not base64!"))
	assert.False(t, line.VerifySignature("secret", body, ""))
}
