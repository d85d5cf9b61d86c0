package security

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrRejected is wrapped by Check when a statement fails validation.
var ErrRejected = errors.New("SQL rejected")

// sqlDangerousPatterns run against the statement with literals blanked out.
var sqlDangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bUNION\s+SELECT\b`), // UNION ALL SELECT is allowed; UNION SELECT is injection
	regexp.MustCompile(`(?i)\bLOAD_FILE\s*\(`),
	regexp.MustCompile(`(?i)\bBENCHMARK\s*\(`),
	regexp.MustCompile(`(?i)\bSLEEP\s*\(`),
	regexp.MustCompile(`(?i)\bPG_SLEEP\s*\(`),
	regexp.MustCompile(`(?i)\bWAITFOR\s+(DELAY|TIME)\b`),
	regexp.MustCompile(`(?i)\b(XP|SP)_\w+`),
	regexp.MustCompile(`(?i)\bor\s+1\s*=\s*1\b`),
	regexp.MustCompile(`(?i)\band\s+1\s*=\s*1\b`),
	regexp.MustCompile(`(?i)\bor\s+'\s*'\s*=\s*'\s*'`),
}

// forbiddenKeywords are write, DDL, or privilege verbs, plus functions that
// reach outside the database.
var forbiddenKeywords = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true, "MERGE": true,
	"DROP": true, "ALTER": true, "CREATE": true, "TRUNCATE": true,
	"EXEC": true, "EXECUTE": true, "GRANT": true, "REVOKE": true,
	"DENY": true, "INTO": true, "BACKUP": true, "RESTORE": true,
	"SHUTDOWN": true, "DBCC": true, "BULK": true, "OPENROWSET": true,
	"OPENQUERY": true, "OPENDATASOURCE": true, "COPY": true, "CALL": true,
	"VACUUM": true, "REINDEX": true, "LOCK": true, "SET": true,
}

var wordRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// SQLValidator accepts exactly one SELECT (or WITH ... SELECT) statement.
type SQLValidator struct{}

func NewSQLValidator() *SQLValidator {
	return &SQLValidator{}
}

// Validate returns an error string if SQL is invalid, or empty string if OK
func (v *SQLValidator) Validate(sql string) string {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return "SQL cannot be empty"
	}

	stripped, err := blankLiterals(trimmed)
	if err != "" {
		return err
	}

	if strings.Contains(stripped, "--") || strings.Contains(stripped, "/*") {
		return "SQL comments are not allowed"
	}

	body := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(stripped), ";"))
	if strings.Contains(body, ";") {
		return "only a single statement is allowed"
	}

	upper := strings.ToUpper(body)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return "only SELECT queries are allowed"
	}
	if strings.HasPrefix(upper, "WITH") && !strings.Contains(upper, "SELECT") {
		return "WITH clause must end in a SELECT"
	}

	for _, w := range wordRe.FindAllString(upper, -1) {
		if forbiddenKeywords[w] {
			return "forbidden keyword: " + w
		}
	}

	for _, pattern := range sqlDangerousPatterns {
		if pattern.MatchString(body) {
			return "SQL injection pattern detected: " + pattern.String()
		}
	}

	return ""
}

// Check is Validate in error form.
func (v *SQLValidator) Check(sql string) error {
	if msg := v.Validate(sql); msg != "" {
		return fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	return nil
}

// blankLiterals replaces the contents of quoted strings and identifiers with
// spaces so keyword checks only see SQL structure. Quotes are kept.
func blankLiterals(sql string) (string, string) {
	var sb strings.Builder
	sb.Grow(len(sql))

	var closer byte
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		if closer == 0 {
			switch c {
			case '\'':
				closer = '\''
			case '"':
				closer = '"'
			case '[':
				closer = ']'
			}
			sb.WriteByte(c)
			continue
		}

		if c == closer {
			// doubled quote is an escaped quote inside the literal
			if closer != ']' && i+1 < len(sql) && sql[i+1] == closer {
				sb.WriteString("  ")
				i++
				continue
			}
			closer = 0
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte(' ')
	}

	if closer != 0 {
		return "", "unterminated quoted string"
	}
	return sb.String(), ""
}
