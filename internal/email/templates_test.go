package email

import (
	"context"
	"strings"
	"testing"
)

func TestRenderQuoteProposalEnglish(t *testing.T) {
	msg, err := RenderQuoteProposal(QuoteProposal{
		To:          "client@example.com",
		Locale:      "en",
		AgencyName:  "Acme Studio",
		ClientName:  "Jane <Doe>",
		QuoteNumber: "QT-001",
		Total:       "$1,250.00",
		ValidUntil:  "2024-01-16",
		DocumentURL: "https://files.example.com/q.pdf",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Subject != "Quote QT-001 from Acme Studio" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if msg.To != "client@example.com" {
		t.Fatalf("unexpected recipient %q", msg.To)
	}
	for _, want := range []string{"QT-001", "$1,250.00", "View quote", "https://files.example.com/q.pdf", "Jane &lt;Doe&gt;"} {
		if !strings.Contains(msg.HTML, want) {
			t.Fatalf("expected body to contain %q", want)
		}
	}
}

func TestRenderQuoteProposalWithoutDocumentOmitsButton(t *testing.T) {
	msg, err := RenderQuoteProposal(QuoteProposal{To: "c@example.com", AgencyName: "Acme", QuoteNumber: "QT-002"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(msg.HTML, "View quote") {
		t.Fatalf("expected no call to action without a document url")
	}
}

func TestRenderQuoteAcceptedSpanish(t *testing.T) {
	msg, err := RenderQuoteAccepted(QuoteAccepted{
		To:            "cliente@example.com",
		Locale:        "es",
		AgencyName:    "Acme",
		ClientName:    "Ana",
		QuoteNumber:   "QT-003",
		InvoiceNumber: "INV-001",
		Total:         "$100.00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Subject != "Gracias por aceptar la cotización QT-003" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "INV-001") || !strings.Contains(msg.HTML, "Factura") {
		t.Fatalf("expected spanish invoice row in body")
	}
}

func TestRenderAgencyUpdateRows(t *testing.T) {
	msg, err := RenderAgencyUpdate("ops@example.com", "Acme", "Invoice INV-004 paid", []Row{
		{Label: "Total", Value: "$40.00"},
		{Label: "Method", Value: "card"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Subject != "Invoice INV-004 paid" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "$40.00") || !strings.Contains(msg.HTML, "card") {
		t.Fatalf("expected rows in body")
	}
}

func TestNoopSender(t *testing.T) {
	if err := (NoopSender{}).Send(context.Background(), Message{To: "x@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
