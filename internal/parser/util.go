package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/bank-notify/internal/models"
)

// amountDigits matches a VND amount written with comma thousands separators,
// e.g. "750,000" or "1,500,000".
const amountDigits = `\d{1,3}(?:,\d{3})*`

// amountEnd must follow an amountDigits group so that an ungrouped run such
// as "300000" is rejected instead of being cut to its first digits.
const amountEnd = `(?:[^\d,]|$)`

// Normalize strips the sign prefix and thousands separators from a captured
// amount, leaving a bare digit string. It does not validate or trim zeros.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "+", "")
	s = strings.ReplaceAll(s, ",", "")
	return s
}

// extractWith returns the normalized first capture group of re in text.
func extractWith(re *regexp.Regexp, text string) models.ExtractionResult {
	if text == "" {
		return models.NotFound
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return models.NotFound
	}
	amount := Normalize(m[1])
	if amount == "" {
		return models.NotFound
	}
	return models.AmountOf(amount)
}
