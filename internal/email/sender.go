// Package email renders and delivers the transactional mails of the CRM.
package email

import "context"

// Attachment is a file delivered alongside a message.
type Attachment struct {
	FileName string `json:"fileName"`
	Content  []byte `json:"content"`
}

// Message is a rendered mail ready for delivery.
type Message struct {
	To          string       `json:"to"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Sender delivers rendered messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NoopSender drops every message. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) Send(context.Context, Message) error { return nil }
