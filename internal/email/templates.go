package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
	AgencyName string
	Text       copyText
}

type quoteProposalEmailData struct {
	baseEmailData
	ClientName  string
	QuoteNumber string
	Total       string
	ValidUntil  string
}

type quoteAcceptedEmailData struct {
	baseEmailData
	ClientName    string
	QuoteNumber   string
	InvoiceNumber string
	Total         string
}

type agencyUpdateEmailData struct {
	baseEmailData
	Rows []Row
}

// Row is one label/value pair of an internal update mail.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// QuoteProposal describes the mail that delivers a sent quote to the client.
type QuoteProposal struct {
	To          string
	Locale      string
	AgencyName  string
	ClientName  string
	QuoteNumber string
	Total       string
	ValidUntil  string
	DocumentURL string
}

// QuoteAccepted describes the thank-you mail sent after conversion.
type QuoteAccepted struct {
	To            string
	Locale        string
	AgencyName    string
	ClientName    string
	QuoteNumber   string
	InvoiceNumber string
	Total         string
}

// RenderQuoteProposal renders the client-facing quote mail.
func RenderQuoteProposal(p QuoteProposal) (Message, error) {
	text := copyFor(p.Locale)
	html, err := renderEmailTemplate("quote_proposal.html", quoteProposalEmailData{
		baseEmailData: baseEmailData{
			Title:      fmt.Sprintf(text.proposalSubjectFmt, p.QuoteNumber, p.AgencyName),
			Heading:    text.proposalHeading,
			Subheading: fmt.Sprintf(text.proposalIntroFmt, p.AgencyName),
			CTALabel:   text.proposalCTA,
			CTAURL:     p.DocumentURL,
			AgencyName: p.AgencyName,
			Text:       text,
		},
		ClientName:  p.ClientName,
		QuoteNumber: p.QuoteNumber,
		Total:       p.Total,
		ValidUntil:  p.ValidUntil,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      p.To,
		Subject: fmt.Sprintf(text.proposalSubjectFmt, p.QuoteNumber, p.AgencyName),
		HTML:    html,
	}, nil
}

// RenderQuoteAccepted renders the thank-you mail for a converted quote.
func RenderQuoteAccepted(p QuoteAccepted) (Message, error) {
	text := copyFor(p.Locale)
	html, err := renderEmailTemplate("quote_accepted.html", quoteAcceptedEmailData{
		baseEmailData: baseEmailData{
			Title:      fmt.Sprintf(text.acceptedSubjectFmt, p.QuoteNumber),
			Heading:    text.acceptedHeading,
			Subheading: fmt.Sprintf(text.acceptedIntroFmt, p.AgencyName),
			AgencyName: p.AgencyName,
			Text:       text,
		},
		ClientName:    p.ClientName,
		QuoteNumber:   p.QuoteNumber,
		InvoiceNumber: p.InvoiceNumber,
		Total:         p.Total,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      p.To,
		Subject: fmt.Sprintf(text.acceptedSubjectFmt, p.QuoteNumber),
		HTML:    html,
	}, nil
}

// RenderAgencyUpdate renders an internal notice for the agency inbox.
func RenderAgencyUpdate(to, agencyName, subject string, rows []Row) (Message, error) {
	html, err := renderEmailTemplate("agency_update.html", agencyUpdateEmailData{
		baseEmailData: baseEmailData{
			Title:      subject,
			Heading:    subject,
			AgencyName: agencyName,
			Text:       englishCopy,
		},
		Rows: rows,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subject, HTML: html}, nil
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
