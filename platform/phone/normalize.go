// Package phone provides South African phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "ZA"

var (
	separators   = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
	saPhoneShape = regexp.MustCompile(`^(\+27|27|0)[1-9]\d{8}$`)
)

// IsSouthAfrican reports whether input has the shape of a South African
// number (local 0XX, 27XX or +27XX with nine subscriber digits).
func IsSouthAfrican(input string) bool {
	compact := separators.Replace(strings.TrimSpace(input))
	if !saPhoneShape.MatchString(compact) {
		return false
	}

	if strings.HasPrefix(compact, "27") {
		compact = "+" + compact
	}

	number, err := phonenumbers.Parse(compact, defaultRegion)
	if err != nil {
		return false
	}
	return phonenumbers.IsPossibleNumber(number)
}

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}
