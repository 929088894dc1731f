// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizeE164 formats a phone number to E.164, reading numbers without a
// country prefix as belonging to region. If parsing fails, it returns the
// trimmed input.
func NormalizeE164(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, strings.ToUpper(region))
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// NormalizePtr is NormalizeE164 for optional fields. Blank input becomes nil.
func NormalizePtr(input *string, region string) *string {
	if input == nil {
		return nil
	}
	normalized := NormalizeE164(*input, region)
	if normalized == "" {
		return nil
	}
	return &normalized
}
