package email

import "strings"

type copyText struct {
	proposalSubjectFmt string
	proposalHeading    string
	proposalIntroFmt   string
	proposalCTA        string
	acceptedSubjectFmt string
	acceptedHeading    string
	acceptedIntroFmt   string

	QuoteLabel      string
	InvoiceLabel    string
	TotalLabel      string
	ValidUntilLabel string
	Greeting        string
	SignOff         string
}

var englishCopy = copyText{
	proposalSubjectFmt: "Quote %s from %s",
	proposalHeading:    "Your quote is ready",
	proposalIntroFmt:   "%s has prepared a quote for you.",
	proposalCTA:        "View quote",
	acceptedSubjectFmt: "Thank you for accepting quote %s",
	acceptedHeading:    "Welcome aboard",
	acceptedIntroFmt:   "We received your approval and %s has issued your first invoice.",
	QuoteLabel:         "Quote",
	InvoiceLabel:       "Invoice",
	TotalLabel:         "Total",
	ValidUntilLabel:    "Valid until",
	Greeting:           "Hello",
	SignOff:            "Kind regards",
}

var spanishCopy = copyText{
	proposalSubjectFmt: "Cotización %s de %s",
	proposalHeading:    "Su cotización está lista",
	proposalIntroFmt:   "%s ha preparado una cotización para usted.",
	proposalCTA:        "Ver cotización",
	acceptedSubjectFmt: "Gracias por aceptar la cotización %s",
	acceptedHeading:    "Bienvenido",
	acceptedIntroFmt:   "Recibimos su aprobación y %s ha emitido su primera factura.",
	QuoteLabel:         "Cotización",
	InvoiceLabel:       "Factura",
	TotalLabel:         "Total",
	ValidUntilLabel:    "Válida hasta",
	Greeting:           "Hola",
	SignOff:            "Saludos cordiales",
}

func copyFor(locale string) copyText {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(locale)), "es") {
		return spanishCopy
	}
	return englishCopy
}
