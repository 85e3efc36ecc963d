package extraction

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const maxLabelLen = 50

var (
	labelPrefixRe  = regexp.MustCompile(`(?i)^(pos |eftpos |visa |mastercard |amex |paypal \*)`)
	labelSuffixRe  = regexp.MustCompile(`(?i)\s+(pty|ltd|inc|corp|llc)\.?$`)
	longNumbersRe  = regexp.MustCompile(`\d{6,}`)
	specialCharsRe = regexp.MustCompile(`[*#]+`)
)

// CleanLabel normalizes a raw statement-line remainder into a display label:
// card-terminal prefixes, company suffixes, reference numbers, and filler
// characters are stripped, then the words are title-cased.
func CleanLabel(raw string) string {
	cleaned := labelPrefixRe.ReplaceAllString(raw, "")
	cleaned = labelSuffixRe.ReplaceAllString(cleaned, "")
	cleaned = longNumbersRe.ReplaceAllString(cleaned, "")
	cleaned = specialCharsRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	caser := cases.Title(language.English)
	words := strings.Fields(cleaned)
	for i, word := range words {
		if len(word) > 2 {
			words[i] = caser.String(strings.ToLower(word))
		} else {
			words[i] = strings.ToUpper(word)
		}
	}

	result := strings.Join(words, " ")
	if len(result) > maxLabelLen {
		result = result[:maxLabelLen]
	}
	return result
}
