package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// SchemaInfo describes the attendance store to the model.
const SchemaInfo = `Tables:
- Attendance (
    empId: integer,
    empName: varchar(200),
    depart: integer,
    departName: varchar(150),
    vrdate: date,
    staff_status_id: integer,
    status: varchar(30)
  )
  Primary Key: (empId, vrdate)
  Constraints:
    - status must match staff_status_id:
      * status='Present' when staff_status_id=5
      * status='Absent' when staff_status_id=1
      * status='Rest Day' when staff_status_id=6`

const promptTemplate = `You are an expert assistant that converts human language into correct, efficient {{dialect}} queries, no matter how vague, typo-filled, or informal the input is.

Schema:
{{schema}}

Time context (optional): {{dates}}

RULES:
1. ALWAYS return a valid {{short}} query that ONLY uses the schema above.
2. Guess user intent from messy, incomplete, or slang input.
   - Examples: "get all hr", "show resting", "everyone absent", "who there last week"
3. If the user wants names, IDs, or departments (e.g. "list all employees"), return columns like empId, empName, departName.
4. For any column like empName, departName, or status, use LIKE '%value%' for text matching.
5. If the query mentions a date range like "from 2024-05-01 to 2024-05-31", use it. If not, fall back to this date context: {{dates}}
6. If nothing date-related is needed (e.g. "list all employees"), do NOT add date filters.
7. If the question asks "how many", "count", or "total", return aggregate queries using COUNT(*).
8. No explanations, comments, markdown, or non-SQL text.
9. Only read data. Never write a statement that deletes or modifies anything.
Just output a clean, ready-to-run SQL query. Nothing else.

User's question:
{{question}}

SQL:
`

type dialect struct {
	long  string
	short string
}

var dialects = map[string]dialect{
	"sqlserver": {long: "SQL Server (T-SQL)", short: "T-SQL"},
	"pgx":       {long: "PostgreSQL", short: "PostgreSQL"},
}

// Translator turns a question into one SQL statement via a Completer.
type Translator struct {
	completer Completer
	dialect   dialect
	timeout   time.Duration
}

// NewTranslator creates a translator for the given database/sql driver name.
// Unknown drivers get the T-SQL prompt.
func NewTranslator(c Completer, driver string, timeout time.Duration) *Translator {
	d, ok := dialects[driver]
	if !ok {
		d = dialects["sqlserver"]
	}
	return &Translator{completer: c, dialect: d, timeout: timeout}
}

// Model names the backing model.
func (t *Translator) Model() string {
	return t.completer.Model()
}

// BuildPrompt fills the template with the schema, date context and question.
func (t *Translator) BuildPrompt(question, dates string) string {
	r := strings.NewReplacer(
		"{{dialect}}", t.dialect.long,
		"{{short}}", t.dialect.short,
		"{{schema}}", SchemaInfo,
		"{{dates}}", dates,
		"{{question}}", question,
	)
	return r.Replace(promptTemplate)
}

// Translate asks the model for a query and returns it cleaned.
func (t *Translator) Translate(ctx context.Context, question, dates string) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := t.completer.Complete(ctx, t.BuildPrompt(question, dates))
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}

	sql := CleanSQL(raw)
	if sql == "" {
		return "", fmt.Errorf("translate: %w", ErrEmptyCompletion)
	}

	log.Debug().
		Str("model", t.completer.Model()).
		Str("sql", truncate(sql, 120)).
		Dur("took", time.Since(start)).
		Msg("question translated")
	return sql, nil
}

// CleanSQL strips markdown fences and the literal token "sql" from a model
// reply. The token match is case-sensitive and ignores word boundaries.
func CleanSQL(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "sql", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
