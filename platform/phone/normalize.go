// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// WhatsApp identities arrive without a region prefix marker, so parsing
// assumes an international number first and falls back to the default region.
const defaultRegion = "US"

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns
// the trimmed input unchanged.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	candidate := trimmed
	if !strings.HasPrefix(candidate, "+") && len(candidate) > 10 {
		candidate = "+" + candidate
	}

	number, err := phonenumbers.Parse(candidate, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// WhatsAppID strips the leading "+" from an E.164 number, which is the form
// WhatsApp transports use as the user identity.
func WhatsAppID(input string) string {
	return strings.TrimPrefix(NormalizeE164(input), "+")
}
