package extraction

import (
	"regexp"
	"strconv"
	"strings"
)

// Receipt amount cascade, most reliable first. Tier 1 anchors on a total
// keyword with the number to its right (or left), tier 2 scans line by line,
// tier 3 takes the largest currency-looking number anywhere.
var (
	amountAfterKeywordRe  = regexp.MustCompile(`(?i)(?:total\s*(?:due)?|amount\s*due|grand\s*total)[^\d$€£]*([$€£]?\s*\d{1,3}(?:[,\s]\d{3})*(?:\.\d{1,2})?)`)
	amountBeforeKeywordRe = regexp.MustCompile(`(?i)([$€£]?\s*\d{1,3}(?:[,\s]\d{3})*(?:\.\d{1,2})?)\s*(?:total|amount\s*due)`)
	amountLineRe          = regexp.MustCompile(`(?i)(?:total|balance\s*due|amount\s*due)\D*([$€£]?\s*\d{1,3}(?:[,\s]\d{3})*(?:\.\d{1,2})?)`)
	currencyNumberRe      = regexp.MustCompile(`\d{1,3}(?:[,\s]\d{3})*(?:\.\d{1,2})?`)
	amountSanitizeRe      = regexp.MustCompile(`[^0-9.]`)
)

// Receipt date patterns, tried in order; the first hit wins even if it later
// fails to resolve against the layout list.
var receiptDateRes = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}`),
	regexp.MustCompile(`\d{4}-\d{1,2}-\d{1,2}`),
	regexp.MustCompile(`\d{1,2}\s+[A-Za-z]{3,9}\s+\d{2,4}`),
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2}`),
}

// Category keyword groups in priority order.
var categoryRules = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`(?i)grocery|supermarket|market|mart|food|restaurant|cafe|eat|meal`), "Food"},
	{regexp.MustCompile(`(?i)fuel|gas|petrol|diesel|uber|transport|bus|train|taxi`), "Transport"},
	{regexp.MustCompile(`(?i)pharmacy|medical|clinic|health|medicine`), "Health"},
	{regexp.MustCompile(`(?i)clothes|apparel|fashion|shoe|mall|retail`), "Shopping"},
	{regexp.MustCompile(`(?i)utility|electric|water|internet|wifi|phone|bill`), "Utilities"},
}

// Statement line patterns: a row needs a date and a signed number on the same
// line. The number search runs on the line with the date span removed so a
// leading ISO date is never mistaken for the amount.
var (
	statementDateRe   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{2}[/\-]\d{2}[/\-]\d{2,4}`)
	statementAmountRe = regexp.MustCompile(`-?\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?`)
)

// RowCandidate is one statement transaction proposed by an extractor, not yet
// validated or persisted.
type RowCandidate struct {
	Type     string // "income" or "expense"
	Amount   float64
	DateISO  string
	Category string // expenses
	Source   string // income
}

// HeuristicExtractor derives transaction fields from raw text with regex
// cascades. It never fails: fields it cannot find are simply absent.
type HeuristicExtractor struct {
	dateOrder DateOrder
}

func NewHeuristicExtractor(order DateOrder) *HeuristicExtractor {
	if order != MonthFirst {
		order = DayFirst
	}
	return &HeuristicExtractor{dateOrder: order}
}

// ExtractReceipt scans receipt text for an amount, a date and a category.
func (h *HeuristicExtractor) ExtractReceipt(text string) CandidateFields {
	lines := splitLines(text)
	fullText := strings.Join(lines, " ")

	var fields CandidateFields
	if amount, ok := findAmount(fullText, lines); ok {
		fields.Amount = &amount
	}
	fields.DateISO = h.findDate(fullText)
	fields.Category = findCategory(fullText)
	return fields
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func findAmount(fullText string, lines []string) (float64, bool) {
	m := amountAfterKeywordRe.FindStringSubmatch(fullText)
	if m == nil {
		m = amountBeforeKeywordRe.FindStringSubmatch(fullText)
	}
	if m != nil {
		if v, ok := parseAmount(m[1]); ok {
			return v, true
		}
	}

	for _, line := range lines {
		if lm := amountLineRe.FindStringSubmatch(line); lm != nil {
			if v, ok := parseAmount(lm[1]); ok {
				return v, true
			}
		}
	}

	// No keyword anchor: take the largest currency-looking number.
	var max float64
	found := false
	for _, raw := range currencyNumberRe.FindAllString(fullText, -1) {
		if v, ok := parseAmount(raw); ok && (!found || v > max) {
			max = v
			found = true
		}
	}
	return max, found
}

func (h *HeuristicExtractor) findDate(fullText string) string {
	for _, re := range receiptDateRes {
		if raw := re.FindString(fullText); raw != "" {
			if iso, ok := ResolveDate(raw, h.dateOrder); ok {
				return iso
			}
			return ""
		}
	}
	return ""
}

func findCategory(fullText string) string {
	for _, rule := range categoryRules {
		if rule.re.MatchString(fullText) {
			return rule.label
		}
	}
	return ""
}

// ExtractStatement parses statement text line by line. A line yields a row
// only when both a date and a signed amount are present; negative amounts
// become expenses with the sign dropped, the rest become income.
func (h *HeuristicExtractor) ExtractStatement(text string) []RowCandidate {
	var rows []RowCandidate
	for _, line := range splitLines(text) {
		dateSpan := statementDateRe.FindStringIndex(line)
		if dateSpan == nil {
			continue
		}
		rawDate := line[dateSpan[0]:dateSpan[1]]
		remainder := line[:dateSpan[0]] + " " + line[dateSpan[1]:]

		amountSpan := statementAmountRe.FindStringIndex(remainder)
		if amountSpan == nil {
			continue
		}
		amount, ok := parseSignedAmount(remainder[amountSpan[0]:amountSpan[1]])
		if !ok {
			continue
		}

		label := CleanLabel(remainder[:amountSpan[0]] + " " + remainder[amountSpan[1]:])
		dateISO, _ := ResolveDate(rawDate, h.dateOrder)

		row := RowCandidate{Amount: amount, DateISO: dateISO}
		if amount < 0 {
			row.Type = "expense"
			row.Amount = -amount
			row.Category = label
		} else {
			row.Type = "income"
			row.Source = label
		}
		rows = append(rows, row)
	}
	return rows
}

func parseAmount(raw string) (float64, bool) {
	cleaned := amountSanitizeRe.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseSignedAmount(raw string) (float64, bool) {
	negative := strings.HasPrefix(strings.TrimSpace(raw), "-")
	v, ok := parseAmount(raw)
	if !ok {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}
