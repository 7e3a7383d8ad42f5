// Package phone canonicalises regional mobile numbers to their local
// 10-digit form ("0" trunk code + mobile prefix + 8 subscriber digits).
//
//	phone.Normalize("+254 712 345 678") // "0712345678", nil
//	phone.Normalize("712345678")        // "0712345678", nil
//	phone.Normalize("12345")            // "", ErrInvalidFormat
package phone

import (
	"errors"
	"strings"
	"unicode"
)

var (
	// ErrEmpty is returned for empty or whitespace-only input.
	ErrEmpty = errors.New("phone: number is empty")

	// ErrInvalidFormat is returned when the digits match none of the
	// accepted local, shorthand or international shapes.
	ErrInvalidFormat = errors.New("phone: invalid number format")
)

const (
	trunkCode        = "0"
	subscriberDigits = 8
)

// Normalizer holds the regional parameters. The zero value is not usable;
// build one with New or use the package-level Normalize.
type Normalizer struct {
	countryCode  string
	mobilePrefix string
}

// New returns a Normalizer for the given country calling code (e.g. "254")
// and single-digit mobile prefix (e.g. "7").
func New(countryCode, mobilePrefix string) Normalizer {
	return Normalizer{
		countryCode:  digitsOnly(countryCode),
		mobilePrefix: digitsOnly(mobilePrefix),
	}
}

// Default is the Kenyan mobile normalizer (+254 7XX XXX XXX).
var Default = New("254", "7")

// Normalize runs Default.Normalize.
func Normalize(raw string) (string, error) {
	return Default.Normalize(raw)
}

// Normalize strips every non-digit from raw and maps the remaining digits
// onto the canonical local form.
func (n Normalizer) Normalize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmpty
	}

	digits := digitsOnly(raw)
	national := n.mobilePrefix
	nationalLen := len(national) + subscriberDigits

	switch {
	case len(digits) == len(trunkCode)+nationalLen &&
		strings.HasPrefix(digits, trunkCode+national):
		return digits, nil

	case len(digits) == nationalLen && strings.HasPrefix(digits, national):
		return trunkCode + digits, nil

	case n.countryCode != "" &&
		len(digits) == len(n.countryCode)+nationalLen &&
		strings.HasPrefix(digits, n.countryCode+national):
		return trunkCode + digits[len(n.countryCode):], nil
	}

	return "", ErrInvalidFormat
}

// Valid reports whether raw normalizes without error.
func (n Normalizer) Valid(raw string) bool {
	_, err := n.Normalize(raw)
	return err == nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
