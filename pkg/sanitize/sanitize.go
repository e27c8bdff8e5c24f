// Package sanitize normalizes submitted form fields before they are logged
// or forwarded downstream.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	htmlPolicy = bluemonday.StrictPolicy()
	nonDigits  = regexp.MustCompile(`\D`)
)

// Text strips all HTML/script content and surrounding whitespace. Used for
// free-text fields (names, postcode).
func Text(s string) string {
	return htmlPolicy.Sanitize(strings.TrimSpace(s))
}

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// PhoneDigits strips every non-digit character from a phone number.
func PhoneDigits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}
