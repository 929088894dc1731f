package pricing

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var currencySymbols = map[Currency]string{
	CurrencyUSD: "$",
	CurrencyTTD: "TT$",
	CurrencyEUR: "€",
}

var decimalSeparators = map[language.Tag]string{
	language.English: ".",
	language.Spanish: ",",
}

// Format renders an amount for documents and notifications using the
// grouping and decimal separators of locale ("en" or "es"). The cents come
// straight from the decimal; only the whole part goes through the printer.
func Format(amount decimal.Decimal, currency Currency, locale string) string {
	tag := language.English
	if locale == "es" {
		tag = language.Spanish
	}

	rounded := amount.Round(centsPlaces)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	fixed := rounded.StringFixed(centsPlaces)
	cents := fixed[len(fixed)-int(centsPlaces):]
	whole := message.NewPrinter(tag).Sprint(number.Decimal(rounded.Truncate(0).IntPart()))

	return sign + currencySymbols[currency] + whole + decimalSeparators[tag] + cents
}
