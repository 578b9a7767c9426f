// Package line adapts the LINE Messaging API to the bot's domain types.
package line

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/uranai/pkg/dialogue"
	"github.com/aretw0/uranai/pkg/domain"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

// DecodeWebhook converts a webhook body into domain events, preserving order.
// Events without a user source keep an empty UserID and are skipped downstream.
func DecodeWebhook(body []byte) ([]domain.Event, error) {
	var cb webhook.CallbackRequest
	if err := json.Unmarshal(body, &cb); err != nil {
		return nil, fmt.Errorf("invalid webhook body: %w", err)
	}

	events := make([]domain.Event, 0, len(cb.Events))
	for _, we := range cb.Events {
		events = append(events, toDomain(we))
	}
	return events, nil
}

// envelope holds the fields every event type repeats.
type envelope struct {
	id         string
	timestamp  int64
	source     webhook.SourceInterface
	delivery   *webhook.DeliveryContext
	replyToken string
}

func toDomain(we webhook.EventInterface) domain.Event {
	var env envelope
	var input domain.Input

	switch e := we.(type) {
	case webhook.MessageEvent:
		env = envelope{e.WebhookEventId, e.Timestamp, e.Source, e.DeliveryContext, e.ReplyToken}
		input = messageInput(e.Message)
	case webhook.PostbackEvent:
		env = envelope{e.WebhookEventId, e.Timestamp, e.Source, e.DeliveryContext, e.ReplyToken}
		data := ""
		if e.Postback != nil {
			data = e.Postback.Data
		}
		input = dialogue.ParsePostback(data)
	case webhook.FollowEvent:
		env = envelope{e.WebhookEventId, e.Timestamp, e.Source, e.DeliveryContext, e.ReplyToken}
	case webhook.UnfollowEvent:
		env = envelope{id: e.WebhookEventId, timestamp: e.Timestamp, source: e.Source, delivery: e.DeliveryContext}
	case webhook.JoinEvent:
		env = envelope{e.WebhookEventId, e.Timestamp, e.Source, e.DeliveryContext, e.ReplyToken}
	case webhook.LeaveEvent:
		env = envelope{id: e.WebhookEventId, timestamp: e.Timestamp, source: e.Source, delivery: e.DeliveryContext}
	}

	ev := domain.Event{
		ID:         env.id,
		Type:       domain.EventType(we.GetType()),
		UserID:     sourceUser(env.source),
		ReplyToken: env.replyToken,
		Input:      input,
	}
	if env.delivery != nil {
		ev.Redelivery = env.delivery.IsRedelivery
	}
	if env.timestamp > 0 {
		ev.ReceivedAt = time.UnixMilli(env.timestamp)
	}
	return ev
}

func messageInput(content webhook.MessageContentInterface) domain.Input {
	switch m := content.(type) {
	case nil:
		return domain.UnsupportedInput{Kind: "unknown"}
	case webhook.TextMessageContent:
		return domain.TextInput{Text: m.Text}
	default:
		return domain.UnsupportedInput{Kind: m.GetType()}
	}
}

// sourceUser returns source.userId. Group and room sources omit it
// unless the member has consented to sharing their profile.
func sourceUser(src webhook.SourceInterface) string {
	switch s := src.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	}
	return ""
}
