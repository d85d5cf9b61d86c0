// Package daterange pulls an explicit "YYYY-MM-DD to YYYY-MM-DD" range out of
// a free-text question.
package daterange

import (
	"regexp"
	"strings"
)

var rangeRe = regexp.MustCompile(`(?i)(\d{4}-\d{2}-\d{2})\s*to\s*(\d{4}-\d{2}-\d{2})`)

// Range is the literal "start to end" text of a matched range. The zero
// value means no range was found.
type Range struct {
	Start string
	End   string
}

// String renders the range as "start to end", or "" for the zero value.
func (r Range) String() string {
	if r.IsZero() {
		return ""
	}
	return r.Start + " to " + r.End
}

func (r Range) IsZero() bool {
	return r.Start == "" && r.End == ""
}

// OrDefault returns the range text, or fallback when no range was extracted.
func (r Range) OrDefault(fallback string) string {
	if r.IsZero() {
		return fallback
	}
	return r.String()
}

// Extract finds the first date range in text. When found, the range and an
// optional leading "from" are removed from the returned query. Dates are not
// validated or reordered.
func Extract(text string) (string, Range, bool) {
	loc := rangeRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, Range{}, false
	}

	r := Range{
		Start: text[loc[2]:loc[3]],
		End:   text[loc[4]:loc[5]],
	}

	matched := text[loc[0]:loc[1]]
	fromRe := regexp.MustCompile(`(?i)\s*from\s*` + regexp.QuoteMeta(matched))
	cleaned := fromRe.ReplaceAllString(text, "")
	if cleaned == text {
		cleaned = text[:loc[0]] + text[loc[1]:]
	}
	return strings.TrimSpace(cleaned), r, true
}
