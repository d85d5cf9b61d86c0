package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/rs/zerolog/log"
)

// ErrNotConfigured is returned when the service has no database handle.
var ErrNotConfigured = errors.New("attendance store is not configured")

// Row maps column name to scalar value.
type Row map[string]interface{}

// ResultSet holds the rows of one query in column order. Renderers treat it
// as read-only.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Len returns the number of rows.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Empty reports whether the query matched nothing.
func (r *ResultSet) Empty() bool {
	return r.Len() == 0
}

// AttendanceService runs generated SQL against the attendance store
type AttendanceService struct {
	db      *sql.DB
	driver  string
	timeout time.Duration
	maxRows int
}

// Options tune query execution. Zero values mean no limit.
type Options struct {
	QueryTimeout time.Duration
	MaxRows      int
}

// Open connects to the attendance store. driver is "sqlserver" or "pgx".
func Open(driver, dsn string, opts Options) (*AttendanceService, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	svc := NewAttendanceService(db, opts)
	svc.driver = driver
	return svc, nil
}

// NewAttendanceService wraps an existing handle.
func NewAttendanceService(db *sql.DB, opts Options) *AttendanceService {
	return &AttendanceService{
		db:      db,
		timeout: opts.QueryTimeout,
		maxRows: opts.MaxRows,
	}
}

// Driver returns the database/sql driver name used to open the store.
func (s *AttendanceService) Driver() string {
	return s.driver
}

// Close releases the connection pool
func (s *AttendanceService) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// TestConnection acquires a connection and pings the server.
func (s *AttendanceService) TestConnection(ctx context.Context) error {
	if s.db == nil {
		return ErrNotConfigured
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Execute runs one statement on a freshly acquired connection and collects
// the rows. A query that matches nothing returns an empty ResultSet.
func (s *AttendanceService) Execute(ctx context.Context, query string) (*ResultSet, error) {
	if s.db == nil {
		return nil, ErrNotConfigured
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	columns := uniqueColumns(names)

	rs := &ResultSet{Columns: columns, Rows: []Row{}}
	truncated := false

	for rows.Next() {
		if s.maxRows > 0 && len(rs.Rows) >= s.maxRows {
			truncated = true
			break
		}

		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = normalize(values[i])
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	if truncated {
		log.Warn().Int("max_rows", s.maxRows).Msg("result set truncated")
	}
	return rs, nil
}

// ExecuteReport is Execute for the chat path: failures come back as a
// user-facing message with an empty ResultSet instead of an error.
func (s *AttendanceService) ExecuteReport(ctx context.Context, query string) (*ResultSet, string) {
	rs, err := s.Execute(ctx, query)
	if err != nil {
		log.Warn().Err(err).Msg("attendance query failed")
		return &ResultSet{}, ReportError(err)
	}
	return rs, ""
}

// ReportError formats an execution failure for the chat.
func ReportError(err error) string {
	return "Error generating report: " + err.Error()
}

func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case []byte:
		return string(x)
	default:
		return x
	}
}

// uniqueColumns names anonymous columns (e.g. a bare COUNT(*) on SQL Server)
// and suffixes duplicates so every value keeps its own key.
func uniqueColumns(names []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]int, len(names))
	for i, n := range names {
		if n == "" {
			n = "column_" + strconv.Itoa(i+1)
		}
		if c := seen[n]; c > 0 {
			seen[n] = c + 1
			n = n + "_" + strconv.Itoa(c+1)
		}
		seen[n]++
		out[i] = n
	}
	return out
}
