package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/attendai/attendai/internal/chat"
	"github.com/attendai/attendai/internal/config"
	"github.com/attendai/attendai/internal/handler"
	"github.com/attendai/attendai/internal/middleware"
	"github.com/attendai/attendai/internal/models"
	"github.com/attendai/attendai/internal/service"
	"github.com/attendai/attendai/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countTranslator struct{}

func (countTranslator) Translate(context.Context, string, string) (string, error) {
	return "SELECT COUNT(*) FROM Attendance", nil
}

type countExecutor struct{}

func (countExecutor) ExecuteReport(context.Context, string) (*service.ResultSet, string) {
	return &service.ResultSet{
		Columns: []string{"column_1"},
		Rows:    []service.Row{{"column_1": int64(7)}},
	}, ""
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		APIPrefix:          "/api/v1",
		CORSOrigins:        []string{"http://localhost:3000"},
		APIKeyHeader:       "X-API-Key",
		APIKeys:            []string{"secret"},
		EnableAuth:         true,
		RateLimitPerMinute: 100,
	}
	store := session.NewMemoryStore(time.Hour)
	adapter := chat.NewAdapter(chat.Deps{
		Translator:    countTranslator{},
		Executor:      countExecutor{},
		Store:         store,
		FallbackDates: config.DefaultFallbackDates,
	})
	return routes(cfg, adapter, handler.NewHealthHandler(nil, store))
}

func TestPublicEndpoints(t *testing.T) {
	h := testRouter(t)

	for _, path := range []string{"/", "/health", "/metrics"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader), path)
		assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"), path)
	}
}

func TestAPIRequiresKey(t *testing.T) {
	h := testRouter(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/conversations", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, rr.Header().Get(middleware.RequestIDHeader), resp.RequestID)
}

func TestConversationThroughMiddleware(t *testing.T) {
	h := testRouter(t)
	send := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		req.Header.Set("X-API-Key", "secret")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	rr := send(http.MethodPost, "/api/v1/conversations", "")
	require.Equal(t, http.StatusCreated, rr.Code)
	var created models.ConversationResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	base := "/api/v1/conversations/" + created.ConversationID

	rr = send(http.MethodGet, base+"/report.pdf", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = send(http.MethodPost, base+"/messages", `{"content":"how many present"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var turn models.ConversationResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &turn))
	require.Len(t, turn.Messages, 2)
	assert.Equal(t, "Report for: how many present\nDates: 2024-07-01 to 2024-07-31\n\n| Column_1 |\n|----------|\n| 7 |\n", turn.Messages[0].Content)

	rr = send(http.MethodGet, base+"/report.pdf", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))

	rr = send(http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
