package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/attendai/attendai/internal/service"
)

// NoData is the report body for an empty result.
const NoData = "No data found"

// FormatText renders the result as a pipe table for the chat. ok is false
// when there is nothing to export.
func FormatText(question, dates string, rs *service.ResultSet) (text string, ok bool) {
	if rs.Empty() {
		return NoData, false
	}

	var sb strings.Builder
	sb.WriteString("Report for: " + question + "\n")
	sb.WriteString("Dates: " + dates + "\n\n")

	titles := make([]string, len(rs.Columns))
	dashes := make([]string, len(rs.Columns))
	for i, col := range rs.Columns {
		titles[i] = Title(col)
		dashes[i] = strings.Repeat("-", len(col))
	}
	sb.WriteString("| " + strings.Join(titles, " | ") + " |\n")
	sb.WriteString("|-" + strings.Join(dashes, "-|-") + "-|\n")

	cells := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		for i, col := range rs.Columns {
			cells[i] = FormatValue(row[col])
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return sb.String(), true
}

// Title upper-cases the first letter of every letter run and lower-cases the
// rest, so "empName" becomes "Empname" and "staff_status_id" becomes
// "Staff_Status_Id".
func Title(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inWord := false
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			inWord = false
		case inWord:
			r = unicode.ToLower(r)
		default:
			r = unicode.ToTitle(r)
			inWord = true
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// FormatValue renders one cell value as text.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	case float64:
		return formatFloat(x, 64)
	case float32:
		return formatFloat(float64(x), 32)
	case bool:
		if x {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(x)
	}
}

// formatFloat writes the shortest round-trip form with at least one decimal,
// switching to an exponent below 1e-4 and from 1e16 up: 1 -> "1.0",
// 0.5 -> "0.5", 1e16 -> "1e+16".
func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, bits)
	}
	s := strconv.FormatFloat(f, 'f', -1, bits)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
