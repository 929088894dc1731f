package notification

import (
	"context"
	"errors"
	"fmt"

	"agency_crm_backend/internal/email"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Delivery is one notification fanned out to its channels. It is the payload
// of the asynq delivery task, so every field must survive JSON encoding.
type Delivery struct {
	EventID uuid.UUID       `json:"eventId"`
	Kind    string          `json:"kind"`
	Emails  []email.Message `json:"emails,omitempty"`
	Chat    *ChatMessage    `json:"chat,omitempty"`
}

// Empty reports whether the delivery has nothing to send.
func (d Delivery) Empty() bool {
	return len(d.Emails) == 0 && d.Chat == nil
}

// Queue defers deliveries to a background worker.
type Queue interface {
	EnqueueNotification(ctx context.Context, d Delivery) error
}

// Dispatcher sends deliveries over email and chat concurrently.
type Dispatcher struct {
	email email.Sender
	chat  ChatPoster
}

// NewDispatcher creates a Dispatcher. A nil sender or poster disables the channel.
func NewDispatcher(sender email.Sender, chat ChatPoster) *Dispatcher {
	if sender == nil {
		sender = email.NoopSender{}
	}
	if chat == nil {
		chat = NoopPoster{}
	}
	return &Dispatcher{email: sender, chat: chat}
}

// Deliver sends every part of d. One failing channel does not stop the others;
// the returned error joins all failures.
func (d *Dispatcher) Deliver(ctx context.Context, delivery Delivery) error {
	var g errgroup.Group
	errs := make([]error, len(delivery.Emails)+1)

	for i, msg := range delivery.Emails {
		g.Go(func() error {
			if err := d.email.Send(ctx, msg); err != nil {
				errs[i] = fmt.Errorf("email %s: %w", msg.To, err)
			}
			return nil
		})
	}
	if delivery.Chat != nil {
		g.Go(func() error {
			if err := d.chat.Post(ctx, *delivery.Chat); err != nil {
				errs[len(errs)-1] = fmt.Errorf("chat: %w", err)
			}
			return nil
		})
	}

	_ = g.Wait()
	return errors.Join(errs...)
}
