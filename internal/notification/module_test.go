package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"agency_crm_backend/internal/email"
	"agency_crm_backend/internal/events"
	"agency_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type testNotificationConfig struct {
	notifyEmail string
}

func (testNotificationConfig) GetAgencyName() string      { return "Acme Studio" }
func (c testNotificationConfig) GetNotifyEmail() string   { return c.notifyEmail }
func (testNotificationConfig) GetSlackWebhookURL() string { return "" }

type testSender struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (s *testSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type testPoster struct {
	mu    sync.Mutex
	posts []ChatMessage
}

func (p *testPoster) Post(_ context.Context, msg ChatMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posts = append(p.posts, msg)
	return nil
}

type testQueue struct {
	deliveries []Delivery
	err        error
}

func (q *testQueue) EnqueueNotification(_ context.Context, d Delivery) error {
	if q.err != nil {
		return q.err
	}
	q.deliveries = append(q.deliveries, d)
	return nil
}

const testClientEmail = "client@example.com"

func newTestModule(notifyEmail string) (*Module, *testSender, *testPoster) {
	sender := &testSender{}
	poster := &testPoster{}
	m := New(NewDispatcher(sender, poster), testNotificationConfig{notifyEmail: notifyEmail}, logger.Discard())
	return m, sender, poster
}

func quoteSentEvent() events.QuoteSent {
	return events.QuoteSent{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     uuid.New(),
		QuoteNumber: "QT-001",
		ClientName:  "Jane Doe",
		ClientEmail: testClientEmail,
		Total:       decimal.RequireFromString("1250"),
		Currency:    "USD",
		ValidUntil:  time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		Language:    "en",
	}
}

func TestHandleQuoteSentMailsClientAndPostsChat(t *testing.T) {
	m, sender, poster := newTestModule("")

	if err := m.Handle(context.Background(), quoteSentEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}
	if sender.sent[0].To != testClientEmail {
		t.Fatalf("expected mail to client, got %s", sender.sent[0].To)
	}
	if sender.sent[0].Subject != "Quote QT-001 from Acme Studio" {
		t.Fatalf("unexpected subject %q", sender.sent[0].Subject)
	}
	if !strings.Contains(sender.sent[0].HTML, "$1,250.00") {
		t.Fatalf("expected formatted total in body")
	}
	if len(poster.posts) != 1 || poster.posts[0].Text != "Quote QT-001 sent to Jane Doe" {
		t.Fatalf("unexpected chat posts: %+v", poster.posts)
	}
}

func TestHandleQuoteSentWithoutClientEmailOnlyPostsChat(t *testing.T) {
	m, sender, poster := newTestModule("")
	event := quoteSentEvent()
	event.ClientEmail = ""

	if err := m.Handle(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no email, got %d", len(sender.sent))
	}
	if len(poster.posts) != 1 {
		t.Fatalf("expected chat post, got %d", len(poster.posts))
	}
}

func TestHandleQuoteAcceptedMailsClientAndAgency(t *testing.T) {
	m, sender, _ := newTestModule("ops@example.com")

	err := m.Handle(context.Background(), events.QuoteAccepted{
		BaseEvent:     events.NewBaseEvent(),
		QuoteNumber:   "QT-002",
		InvoiceNumber: "INV-001",
		ClientName:    "Jane Doe",
		ClientEmail:   testClientEmail,
		IsNewClient:   true,
		Total:         decimal.RequireFromString("99.5"),
		Currency:      "USD",
		Language:      "es",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recipients := map[string]email.Message{}
	for _, msg := range sender.sent {
		recipients[msg.To] = msg
	}
	if len(recipients) != 2 {
		t.Fatalf("expected client and agency mail, got %+v", sender.sent)
	}
	if got := recipients[testClientEmail].Subject; got != "Gracias por aceptar la cotización QT-002" {
		t.Fatalf("unexpected client subject %q", got)
	}
	if got := recipients["ops@example.com"].Subject; got != "Quote QT-002 accepted" {
		t.Fatalf("unexpected agency subject %q", got)
	}
	if !strings.Contains(recipients["ops@example.com"].HTML, "(new client)") {
		t.Fatalf("expected new client marker in agency mail")
	}
}

func TestHandleInvoiceCreatedIgnoresFirstInvoice(t *testing.T) {
	m, sender, poster := newTestModule("ops@example.com")

	err := m.Handle(context.Background(), events.InvoiceCreated{
		BaseEvent:     events.NewBaseEvent(),
		InvoiceNumber: "INV-001",
		Total:         decimal.NewFromInt(10),
		Currency:      "USD",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 || len(poster.posts) != 0 {
		t.Fatalf("expected no notifications, got %d mails and %d posts", len(sender.sent), len(poster.posts))
	}
}

func TestHandleRecurringInvoiceCreatedNotifiesAgency(t *testing.T) {
	m, sender, poster := newTestModule("ops@example.com")

	err := m.Handle(context.Background(), events.InvoiceCreated{
		BaseEvent:     events.NewBaseEvent(),
		InvoiceNumber: "INV-007",
		Total:         decimal.NewFromInt(10),
		Currency:      "USD",
		DueDate:       time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Recurring:     true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].To != "ops@example.com" {
		t.Fatalf("expected one agency mail, got %+v", sender.sent)
	}
	if len(poster.posts) != 1 || poster.posts[0].Text != "Recurring invoice INV-007 issued" {
		t.Fatalf("unexpected chat posts: %+v", poster.posts)
	}
}

func TestHandleInvoicePaidIncludesNextInvoice(t *testing.T) {
	m, _, poster := newTestModule("")

	err := m.Handle(context.Background(), events.InvoicePaid{
		BaseEvent:         events.NewBaseEvent(),
		InvoiceNumber:     "INV-003",
		Total:             decimal.NewFromInt(40),
		Currency:          "USD",
		PaymentMethod:     "card",
		NextInvoiceNumber: "INV-004",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(poster.posts) != 1 {
		t.Fatalf("expected 1 chat post, got %d", len(poster.posts))
	}
	fields := map[string]string{}
	for _, f := range poster.posts[0].Fields {
		fields[f.Title] = f.Value
	}
	if fields["Next invoice"] != "INV-004" || fields["Method"] != "card" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestHandleEmailFailureDoesNotFailPublisher(t *testing.T) {
	m, sender, poster := newTestModule("")
	sender.err = errors.New("smtp down")

	if err := m.Handle(context.Background(), quoteSentEvent()); err != nil {
		t.Fatalf("expected delivery failure to be swallowed, got %v", err)
	}
	if len(poster.posts) != 1 {
		t.Fatalf("expected chat to be posted despite email failure")
	}
}

func TestHandleUsesQueueWhenConfigured(t *testing.T) {
	m, sender, poster := newTestModule("")
	queue := &testQueue{}
	m.SetQueue(queue)

	event := quoteSentEvent()
	if err := m.Handle(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queue.deliveries) != 1 {
		t.Fatalf("expected 1 queued delivery, got %d", len(queue.deliveries))
	}
	if queue.deliveries[0].Kind != "quotes.quote.sent" {
		t.Fatalf("unexpected kind %q", queue.deliveries[0].Kind)
	}
	if queue.deliveries[0].EventID != event.EventID() {
		t.Fatalf("expected delivery keyed by event id %s, got %s", event.EventID(), queue.deliveries[0].EventID)
	}
	if len(sender.sent) != 0 || len(poster.posts) != 0 {
		t.Fatalf("expected nothing sent inline")
	}
}

func TestHandleFallsBackInlineWhenQueueFails(t *testing.T) {
	m, sender, _ := newTestModule("")
	m.SetQueue(&testQueue{err: errors.New("redis down")})

	if err := m.Handle(context.Background(), quoteSentEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected inline email after enqueue failure, got %d", len(sender.sent))
	}
}

func TestRegisterHandlersReceivesPublishedEvents(t *testing.T) {
	m, _, poster := newTestModule("")
	bus := events.NewInMemoryBus(logger.Discard())
	m.RegisterHandlers(bus)

	if err := bus.PublishSync(context.Background(), events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		Name:      "Sam",
		Email:     "sam@example.com",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(poster.posts) != 1 || poster.posts[0].Text != "New lead: Sam" {
		t.Fatalf("unexpected chat posts: %+v", poster.posts)
	}
}

func TestDispatcherJoinsChannelErrors(t *testing.T) {
	sender := &testSender{err: errors.New("smtp down")}
	d := NewDispatcher(sender, nil)

	err := d.Deliver(context.Background(), Delivery{
		Emails: []email.Message{{To: "a@example.com"}, {To: "b@example.com"}},
		Chat:   &ChatMessage{Text: "hello"},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "a@example.com") || !strings.Contains(err.Error(), "b@example.com") {
		t.Fatalf("expected both failures in %q", err.Error())
	}
}

func TestSlackWebhookPostsAttachmentFields(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewSlackWebhook(srv.URL).Post(context.Background(), ChatMessage{
		Text:   "Invoice INV-001 paid",
		Color:  colorGood,
		Fields: []ChatField{{Title: "Total", Value: "$10.00"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body["text"] != "Invoice INV-001 paid" {
		t.Fatalf("unexpected text: %v", body["text"])
	}
	attachments, ok := body["attachments"].([]any)
	if !ok || len(attachments) != 1 {
		t.Fatalf("expected one attachment, got %v", body["attachments"])
	}
}

func TestSlackWebhookReportsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := NewSlackWebhook(srv.URL).Post(context.Background(), ChatMessage{Text: "x"}); err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
}
