package notification

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// ChatField is a short label/value pair shown under a chat message.
type ChatField struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// ChatMessage is a channel post for the agency team.
type ChatMessage struct {
	Text   string      `json:"text"`
	Color  string      `json:"color,omitempty"`
	Fields []ChatField `json:"fields,omitempty"`
}

// ChatPoster posts messages to the team channel.
type ChatPoster interface {
	Post(ctx context.Context, msg ChatMessage) error
}

// NoopPoster drops every message.
type NoopPoster struct{}

func (NoopPoster) Post(context.Context, ChatMessage) error { return nil }

// SlackWebhook posts to a Slack incoming webhook.
type SlackWebhook struct {
	url string
}

// NewSlackWebhook creates a poster for the given webhook URL.
func NewSlackWebhook(url string) *SlackWebhook {
	return &SlackWebhook{url: url}
}

func (s *SlackWebhook) Post(ctx context.Context, msg ChatMessage) error {
	if err := slack.PostWebhookContext(ctx, s.url, toWebhookMessage(msg)); err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	return nil
}

func toWebhookMessage(msg ChatMessage) *slack.WebhookMessage {
	out := &slack.WebhookMessage{Text: msg.Text}
	if len(msg.Fields) == 0 {
		return out
	}
	fields := make([]slack.AttachmentField, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		fields = append(fields, slack.AttachmentField{Title: f.Title, Value: f.Value, Short: true})
	}
	out.Attachments = []slack.Attachment{{Color: msg.Color, Fields: fields}}
	return out
}
