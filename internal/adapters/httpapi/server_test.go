package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optionTracker/internal/adapters/sqlite"
	"optionTracker/internal/app"
	"optionTracker/internal/domain"
	"optionTracker/internal/ports"
)

type stubMonitor struct{ running bool }

func (m stubMonitor) Running() bool { return m.running }

func setupServer(t *testing.T) (http.Handler, *sqlite.Repository) {
	t.Helper()

	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: filepath.Join(t.TempDir(), "trades.db"),
		Logger: ports.NopLogger{},
		Now:    func() time.Time { return time.Date(2025, time.March, 14, 14, 5, 0, 0, domain.Eastern) },
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	svc, err := app.NewTradeService(repo, ports.NopLogger{})
	require.NoError(t, err)

	srv, err := NewServer(Config{Service: svc, Monitor: stubMonitor{running: true}, Logger: ports.NopLogger{}})
	require.NoError(t, err)
	return srv.Handler(), repo
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const validTrade = `{"date":"2025-03-14","time":"09:31","strike":"84000","side":"call","price":12550,"position":2,"contract":"BTC 2pm"}`

func TestNewServer_RequiresService(t *testing.T) {
	_, err := NewServer(Config{Logger: ports.NopLogger{}})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

func TestServer_CreateTrade(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"created", validTrade, http.StatusCreated},
		{"missing fields", `{"date":"2025-03-14","time":"09:31"}`, http.StatusBadRequest},
		{"bad json", `{"date":`, http.StatusBadRequest},
		{"bad status", `{"date":"d","time":"t","strike":"s","side":"call","price":1,"position":1,"status":"pending"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupServer(t)
			rec := do(t, h, http.MethodPost, "/trades", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestServer_TradeLifecycle(t *testing.T) {
	h, _ := setupServer(t)

	rec := do(t, h, http.MethodPost, "/trades", validTrade)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, int64(1), created.ID)

	rec = do(t, h, http.MethodGet, "/trades/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var trade map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trade))
	assert.Equal(t, 125.5, trade["price"])
	assert.Equal(t, "open", trade["status"])
	assert.Nil(t, trade["closed_at"])

	rec = do(t, h, http.MethodGet, "/trades?status=open", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = do(t, h, http.MethodPut, "/trades/1", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/trades/1", `{"status":"closed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"status":"closed"}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/trades/1", `{"status":"open"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/trades?status=closed&recent_hours=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "2025-03-14T14:05:00-04:00", list[0]["closed_at"])
	assert.Equal(t, 125.5, list[0]["price"])

	rec = do(t, h, http.MethodGet, "/trades?status=open", "")
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/trades/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"deleted":true}`, rec.Body.String())

	// Deleting again is still a success.
	rec = do(t, h, http.MethodDelete, "/trades/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/trades/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPut, "/trades/1", `{"status":"closed"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_UpdateWithClosedAt(t *testing.T) {
	h, repo := setupServer(t)
	rec := do(t, h, http.MethodPost, "/trades", validTrade)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPut, "/trades/1", `{"status":"closed","closed_at":"2025-03-14T11:00:00-04:00"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	trade, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, trade.ClosedAt)
	assert.True(t, time.Date(2025, time.March, 14, 15, 0, 0, 0, time.UTC).Equal(*trade.ClosedAt))
}

func TestServer_BadRequests(t *testing.T) {
	h, _ := setupServer(t)

	tests := []struct {
		method, path string
	}{
		{http.MethodGet, "/trades?recent_hours=abc&status=closed"},
		{http.MethodGet, "/trades?status=pending"},
		{http.MethodGet, "/trades/abc"},
		{http.MethodDelete, "/trades/0"},
	}
	for _, tt := range tests {
		rec := do(t, h, tt.method, tt.path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, tt.path)
	}
}

func TestServer_Health(t *testing.T) {
	h, _ := setupServer(t)
	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","monitor_running":true}`, rec.Body.String())
}
