package line

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aretw0/uranai/pkg/dialogue"
	"github.com/aretw0/uranai/pkg/domain"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// DefaultBaseURL is the Messaging API host.
const DefaultBaseURL = "https://api.line.me"

// maxMessages is the platform limit per reply.
const maxMessages = 5

// Client sends replies through the Messaging API. It implements ports.Replier.
type Client struct {
	accessToken string
	opts        []messaging_api.MessagingApiAPIOption
}

// Config holds client configuration.
type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

// NewClient creates a new Messaging API client.
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		accessToken: cfg.AccessToken,
		opts: []messaging_api.MessagingApiAPIOption{
			messaging_api.WithEndpoint(baseURL),
			messaging_api.WithHTTPClient(&http.Client{Timeout: timeout}),
		},
	}
	if _, err := c.api(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// api builds a request-scoped SDK client; WithContext mutates its receiver.
func (c *Client) api(ctx context.Context) (*messaging_api.MessagingApiAPI, error) {
	api, err := messaging_api.NewMessagingApiAPI(c.accessToken, c.opts...)
	if err != nil {
		return nil, fmt.Errorf("messaging api client: %w", err)
	}
	return api.WithContext(ctx), nil
}

// APIError is a non-2xx answer from the platform.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("messaging api returned %d: %s", e.StatusCode, e.Body)
}

// Reply delivers msgs using the one-time reply token.
func (c *Client) Reply(ctx context.Context, replyToken string, msgs []domain.Message) error {
	if len(msgs) > maxMessages {
		return fmt.Errorf("too many messages: %d (max %d)", len(msgs), maxMessages)
	}

	api, err := c.api(ctx)
	if err != nil {
		return err
	}
	resp, _, err := api.ReplyMessageWithHttpInfo(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   render(msgs),
	})
	if resp != nil && resp.StatusCode/100 != 2 {
		return apiError(resp, err)
	}
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

func apiError(resp *http.Response, cause error) *APIError {
	var body []byte
	if resp.Body != nil {
		body, _ = io.ReadAll(io.LimitReader(resp.Body, 4096))
	}
	if len(body) == 0 && cause != nil {
		body = []byte(cause.Error())
	}
	return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
}

func render(msgs []domain.Message) []messaging_api.MessageInterface {
	out := make([]messaging_api.MessageInterface, 0, len(msgs))
	for _, m := range msgs {
		switch m := m.(type) {
		case domain.TextMessage:
			out = append(out, messaging_api.TextMessage{Text: m.Text})
		case domain.ThemePrompt:
			items := make([]messaging_api.QuickReplyItem, 0, len(m.Themes))
			for _, th := range m.Themes {
				items = append(items, messaging_api.QuickReplyItem{
					Type: "action",
					Action: &messaging_api.PostbackAction{
						Label:       string(th),
						Data:        dialogue.EncodeThemePostback(th),
						DisplayText: dialogue.ThemeDisplayText(th),
					},
				})
			}
			out = append(out, messaging_api.TextMessage{
				Text:       m.Text,
				QuickReply: &messaging_api.QuickReply{Items: items},
			})
		}
	}
	return out
}
