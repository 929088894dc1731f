// Package notification turns lifecycle events into client mails and agency
// alerts. Domain modules publish events; they never know about SMTP or Slack.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"agency_crm_backend/internal/email"
	"agency_crm_backend/internal/events"
	"agency_crm_backend/internal/pricing"
	"agency_crm_backend/platform/config"
	"agency_crm_backend/platform/logger"
	"agency_crm_backend/platform/metrics"

	"github.com/shopspring/decimal"
)

const (
	colorGood    = "good"
	colorDanger  = "danger"
	colorNeutral = "#439FE0"
)

// Module handles the notification event subscriptions.
type Module struct {
	dispatcher *Dispatcher
	queue      Queue
	cfg        config.NotificationConfig
	log        *logger.Logger
}

// New creates the notification module.
func New(dispatcher *Dispatcher, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{dispatcher: dispatcher, cfg: cfg, log: log}
}

// SetQueue routes deliveries through a background queue instead of sending inline.
func (m *Module) SetQueue(q Queue) { m.queue = q }

// RegisterHandlers subscribes the module to the events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), m)
	bus.Subscribe(events.QuoteSent{}.EventName(), m)
	bus.Subscribe(events.QuoteAccepted{}.EventName(), m)
	bus.Subscribe(events.QuoteRejected{}.EventName(), m)
	bus.Subscribe(events.InvoiceCreated{}.EventName(), m)
	bus.Subscribe(events.InvoicePaid{}.EventName(), m)
	bus.Subscribe(events.InvoiceCancelled{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the matching builder and dispatches the result.
// Delivery failures are logged and counted; they never fail the publisher.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	delivery, err := m.build(event)
	if err != nil {
		m.fail(ctx, event.EventName(), err)
		return nil
	}
	if delivery.Empty() {
		return nil
	}
	delivery.EventID = event.EventID()

	if m.queue != nil {
		err := m.queue.EnqueueNotification(ctx, delivery)
		if err == nil {
			return nil
		}
		m.log.WithContext(ctx).Warn("notification enqueue failed, sending inline",
			slog.String("kind", delivery.Kind),
			slog.String("error", err.Error()),
		)
	}

	if err := m.dispatcher.Deliver(ctx, delivery); err != nil {
		m.fail(ctx, delivery.Kind, err)
	}
	return nil
}

func (m *Module) fail(ctx context.Context, kind string, err error) {
	metrics.RecordSideEffectFailure("notification")
	m.log.WithContext(ctx).SideEffectFailed("notify "+kind, err)
}

func (m *Module) build(event events.Event) (Delivery, error) {
	switch e := event.(type) {
	case events.LeadCreated:
		return m.leadCreated(e), nil
	case events.QuoteSent:
		return m.quoteSent(e)
	case events.QuoteAccepted:
		return m.quoteAccepted(e)
	case events.QuoteRejected:
		return m.quoteRejected(e)
	case events.InvoiceCreated:
		return m.invoiceCreated(e)
	case events.InvoicePaid:
		return m.invoicePaid(e)
	case events.InvoiceCancelled:
		return m.invoiceCancelled(e), nil
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return Delivery{}, nil
	}
}

func (m *Module) leadCreated(e events.LeadCreated) Delivery {
	return Delivery{
		Kind: e.EventName(),
		Chat: &ChatMessage{
			Text:  fmt.Sprintf("New lead: %s", e.Name),
			Color: colorNeutral,
			Fields: []ChatField{
				{Title: "Email", Value: e.Email},
			},
		},
	}
}

func (m *Module) quoteSent(e events.QuoteSent) (Delivery, error) {
	total := money(e.Total, e.Currency, e.Language)
	d := Delivery{
		Kind: e.EventName(),
		Chat: &ChatMessage{
			Text:  fmt.Sprintf("Quote %s sent to %s", e.QuoteNumber, e.ClientName),
			Color: colorNeutral,
			Fields: []ChatField{
				{Title: "Total", Value: total},
				{Title: "Valid until", Value: e.ValidUntil.Format("2006-01-02")},
			},
		},
	}
	if e.ClientEmail == "" {
		return d, nil
	}

	msg, err := email.RenderQuoteProposal(email.QuoteProposal{
		To:          e.ClientEmail,
		Locale:      e.Language,
		AgencyName:  m.cfg.GetAgencyName(),
		ClientName:  e.ClientName,
		QuoteNumber: e.QuoteNumber,
		Total:       total,
		ValidUntil:  e.ValidUntil.Format("2006-01-02"),
		DocumentURL: e.DocumentURL,
	})
	if err != nil {
		return Delivery{}, err
	}
	d.Emails = append(d.Emails, msg)
	return d, nil
}

func (m *Module) quoteAccepted(e events.QuoteAccepted) (Delivery, error) {
	total := money(e.Total, e.Currency, e.Language)
	clientLabel := e.ClientName
	if e.IsNewClient {
		clientLabel += " (new client)"
	}
	d := Delivery{
		Kind: e.EventName(),
		Chat: &ChatMessage{
			Text:  fmt.Sprintf("Quote %s accepted, invoice %s issued", e.QuoteNumber, e.InvoiceNumber),
			Color: colorGood,
			Fields: []ChatField{
				{Title: "Client", Value: clientLabel},
				{Title: "Total", Value: total},
			},
		},
	}

	if e.ClientEmail != "" {
		msg, err := email.RenderQuoteAccepted(email.QuoteAccepted{
			To:            e.ClientEmail,
			Locale:        e.Language,
			AgencyName:    m.cfg.GetAgencyName(),
			ClientName:    e.ClientName,
			QuoteNumber:   e.QuoteNumber,
			InvoiceNumber: e.InvoiceNumber,
			Total:         total,
		})
		if err != nil {
			return Delivery{}, err
		}
		d.Emails = append(d.Emails, msg)
	}

	return m.withAgencyMail(d, fmt.Sprintf("Quote %s accepted", e.QuoteNumber), []email.Row{
		{Label: "Client", Value: clientLabel},
		{Label: "Invoice", Value: e.InvoiceNumber},
		{Label: "Total", Value: total},
	})
}

func (m *Module) quoteRejected(e events.QuoteRejected) (Delivery, error) {
	d := Delivery{
		Kind: e.EventName(),
		Chat: &ChatMessage{
			Text:  fmt.Sprintf("Quote %s rejected by %s", e.QuoteNumber, e.RejectedBy),
			Color: colorDanger,
			Fields: []ChatField{
				{Title: "Client", Value: e.ClientName},
			},
		},
	}
	return m.withAgencyMail(d, fmt.Sprintf("Quote %s rejected", e.QuoteNumber), []email.Row{
		{Label: "Client", Value: e.ClientName},
		{Label: "Rejected by", Value: e.RejectedBy},
	})
}

// invoiceCreated only announces invoices spawned by recurrence; the first
// invoice of a client is covered by the quote acceptance notice.
func (m *Module) invoiceCreated(e events.InvoiceCreated) (Delivery, error) {
	if !e.Recurring {
		return Delivery{}, nil
	}
	total := money(e.Total, e.Currency, "en")
	due := e.DueDate.Format("2006-01-02")
	d := Delivery{
		Kind: e.EventName(),
		Chat: &ChatMessage{
			Text:  fmt.Sprintf("Recurring invoice %s issued", e.InvoiceNumber),
			Color: colorNeutral,
			Fields: []ChatField{
				{Title: "Total", Value: total},
				{Title: "Due", Value: due},
			},
		},
	}
	return m.withAgencyMail(d, fmt.Sprintf("Recurring invoice %s issued", e.InvoiceNumber), []email.Row{
		{Label: "Total", Value: total},
		{Label: "Due", Value: due},
	})
}

func (m *Module) invoicePaid(e events.InvoicePaid) (Delivery, error) {
	total := money(e.Total, e.Currency, "en")
	fields := []ChatField{{Title: "Total", Value: total}}
	rows := []email.Row{{Label: "Total", Value: total}}
	if e.PaymentMethod != "" {
		fields = append(fields, ChatField{Title: "Method", Value: e.PaymentMethod})
		rows = append(rows, email.Row{Label: "Method", Value: e.PaymentMethod})
	}
	if e.NextInvoiceNumber != "" {
		fields = append(fields, ChatField{Title: "Next invoice", Value: e.NextInvoiceNumber})
		rows = append(rows, email.Row{Label: "Next invoice", Value: e.NextInvoiceNumber})
	}
	if e.ReceiptURL != "" {
		rows = append(rows, email.Row{Label: "Receipt", Value: e.ReceiptURL})
	}

	d := Delivery{
		Kind: e.EventName(),
		Chat: &ChatMessage{
			Text:   fmt.Sprintf("Invoice %s paid", e.InvoiceNumber),
			Color:  colorGood,
			Fields: fields,
		},
	}
	return m.withAgencyMail(d, fmt.Sprintf("Invoice %s paid", e.InvoiceNumber), rows)
}

func (m *Module) invoiceCancelled(e events.InvoiceCancelled) Delivery {
	return Delivery{
		Kind: e.EventName(),
		Chat: &ChatMessage{
			Text:  fmt.Sprintf("Invoice %s cancelled", e.InvoiceNumber),
			Color: colorDanger,
		},
	}
}

func (m *Module) withAgencyMail(d Delivery, subject string, rows []email.Row) (Delivery, error) {
	to := m.cfg.GetNotifyEmail()
	if to == "" {
		return d, nil
	}
	msg, err := email.RenderAgencyUpdate(to, m.cfg.GetAgencyName(), subject, rows)
	if err != nil {
		return Delivery{}, err
	}
	d.Emails = append(d.Emails, msg)
	return d, nil
}

func money(amount decimal.Decimal, currency, locale string) string {
	return pricing.Format(amount, pricing.Currency(currency), locale)
}
