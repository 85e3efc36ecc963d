package extraction

import (
	"strings"
	"time"
)

// DateOrder selects which side of an ambiguous numeric date is the day.
// Resolution order is a configured priority list, not a guessed locale:
// "03/04/2024" resolves to April 3 under DayFirst and March 4 under
// MonthFirst.
type DateOrder string

const (
	DayFirst   DateOrder = "dmy"
	MonthFirst DateOrder = "mdy"
)

// strictLayoutsDayFirst is the default layout priority list.
var strictLayoutsDayFirst = []string{
	"02/01/2006", // DD/MM/YYYY
	"2/1/2006",   // D/M/YYYY
	"02-01-2006", // DD-MM-YYYY
	"2-1-2006",   // D-M-YYYY
	"2006-01-02", // YYYY-MM-DD
	"02/01/06",   // DD/MM/YY
	"2/1/06",     // D/M/YY
	"02 Jan 2006",
	"2 Jan 2006",
	"02 January 2006",
	"2 January 2006",
	"01/02/2006", // MM/DD/YYYY
	"1/2/2006",   // M/D/YYYY
	"01-02-2006", // MM-DD-YYYY
	"1-2-2006",   // M-D-YYYY
}

var strictLayoutsMonthFirst = []string{
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"2006-01-02",
	"01/02/06",
	"1/2/06",
	"Jan 02 2006",
	"Jan 2 2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
}

// lenientLayouts is tried only after every strict layout fails. YY-MM-DD
// comes first so that truncated ISO dates ("24-06-01") resolve the way the
// surrounding text intended.
var lenientLayouts = []string{
	"06-01-02", // YY-MM-DD
	"06/01/02",
	"2006-1-2",
	"2006/1/2",
	"2-1-06", // D-M-YY
	"1-2-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 06",
}

func strictLayouts(order DateOrder) []string {
	if order == MonthFirst {
		return strictLayoutsMonthFirst
	}
	return strictLayoutsDayFirst
}

// ResolveDate parses a raw date substring against the configured layout
// priority list (strict first, then lenient) and normalizes it to
// YYYY-MM-DD. Returns false if no layout matches.
func ResolveDate(raw string, order DateOrder) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	for _, layout := range strictLayouts(order) {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	for _, layout := range lenientLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// parseISODate parses a strict YYYY-MM-DD calendar date.
func parseISODate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	return t, err == nil
}

// validISODate reports whether s is a strict YYYY-MM-DD calendar date.
func validISODate(s string) bool {
	_, ok := parseISODate(s)
	return ok
}
