package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockService(t *testing.T, opts Options) (*AttendanceService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.MonitorPingsOption(true),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAttendanceService(db, opts), mock
}

func TestExecuteCollectsRowsInColumnOrder(t *testing.T) {
	svc, mock := newMockService(t, Options{QueryTimeout: time.Second})

	query := "SELECT empId, empName, status FROM Attendance WHERE status LIKE '%Present%'"
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(query).WillReturnRows(
		sqlmock.NewRows([]string{"empId", "empName", "status"}).
			AddRow(int64(4), []byte("Alice"), "Present").
			AddRow(int64(7), "Bob", day),
	)

	rs, err := svc.Execute(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, []string{"empId", "empName", "status"}, rs.Columns)
	require.Equal(t, 2, rs.Len())
	assert.Equal(t, "Alice", rs.Rows[0]["empName"], "[]byte values become strings")
	assert.Equal(t, int64(4), rs.Rows[0]["empId"])
	assert.Equal(t, day, rs.Rows[1]["status"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteNoRows(t *testing.T) {
	svc, mock := newMockService(t, Options{})

	query := "SELECT COUNT(*) FROM Attendance WHERE 1 = 0"
	mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"empId"}))

	rs, err := svc.Execute(context.Background(), query)
	require.NoError(t, err)
	assert.True(t, rs.Empty())
	assert.NotNil(t, rs.Rows)
	assert.Equal(t, []string{"empId"}, rs.Columns)
}

func TestExecuteRowCap(t *testing.T) {
	svc, mock := newMockService(t, Options{MaxRows: 2})

	query := "SELECT empId FROM Attendance"
	mock.ExpectQuery(query).WillReturnRows(
		sqlmock.NewRows([]string{"empId"}).AddRow(1).AddRow(2).AddRow(3),
	)

	rs, err := svc.Execute(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())
}

func TestExecuteQueryError(t *testing.T) {
	svc, mock := newMockService(t, Options{})

	query := "SELECT nope FROM Attendance"
	mock.ExpectQuery(query).WillReturnError(errors.New("invalid column name 'nope'"))

	_, err := svc.Execute(context.Background(), query)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid column name")
}

func TestExecuteReportTurnsErrorsIntoMessage(t *testing.T) {
	svc, mock := newMockService(t, Options{})

	query := "SELECT nope FROM Attendance"
	mock.ExpectQuery(query).WillReturnError(errors.New("login failed"))

	rs, msg := svc.ExecuteReport(context.Background(), query)
	assert.True(t, rs.Empty())
	assert.Equal(t, "Error generating report: query: login failed", msg)
}

func TestExecuteReportSuccessHasNoMessage(t *testing.T) {
	svc, mock := newMockService(t, Options{})

	query := "SELECT COUNT(*) FROM Attendance"
	mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{""}).AddRow(int64(12)))

	rs, msg := svc.ExecuteReport(context.Background(), query)
	assert.Empty(t, msg)
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, []string{"column_1"}, rs.Columns)
	assert.Equal(t, int64(12), rs.Rows[0]["column_1"])
}

func TestTestConnection(t *testing.T) {
	svc, mock := newMockService(t, Options{})

	mock.ExpectPing()
	assert.NoError(t, svc.TestConnection(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	err := svc.TestConnection(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNilHandle(t *testing.T) {
	svc := &AttendanceService{}
	_, err := svc.Execute(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, svc.TestConnection(context.Background()), ErrNotConfigured)
	assert.NoError(t, svc.Close())
}

func TestUniqueColumns(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"empId", "empName"}, []string{"empId", "empName"}},
		{[]string{"", ""}, []string{"column_1", "column_2"}},
		{[]string{"total", "total", "total"}, []string{"total", "total_2", "total_3"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, uniqueColumns(tt.in))
	}
}
