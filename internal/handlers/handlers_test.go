package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/quartfeed/internal/views"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestEcho(t *testing.T) (*echo.Echo, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	renderer, err := views.NewRenderer()
	require.NoError(t, err)
	e := echo.New()
	e.Renderer = renderer
	e.HTTPErrorHandler = HTTPErrorHandler(zap.New(core))
	return e, logs
}

func TestHealthCheck(t *testing.T) {
	e := echo.New()
	e.GET("/health", HealthCheck)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"quartfeed"}`, rec.Body.String())
}

func TestHTTPErrorHandler(t *testing.T) {
	e, logs := newTestEcho(t)
	e.GET("/api/v1/thing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusConflict, "Already there")
	})
	e.GET("/page", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("database exploded")
	})

	tests := []struct {
		name        string
		path        string
		wantCode    int
		wantBody    string
		wantMissing string
	}{
		{name: "api json", path: "/api/v1/thing", wantCode: http.StatusConflict, wantBody: `"message":"Already there"`},
		{name: "html page", path: "/page", wantCode: http.StatusNotFound, wantBody: "User not found"},
		{name: "internal error hidden", path: "/boom", wantCode: http.StatusInternalServerError, wantBody: "Internal Server Error", wantMissing: "exploded"},
		{name: "unknown route", path: "/nowhere", wantCode: http.StatusNotFound, wantBody: "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			if tt.wantMissing != "" {
				assert.NotContains(t, rec.Body.String(), tt.wantMissing)
			}
		})
	}

	require.Equal(t, 1, logs.FilterMessage("Request failed").Len())
}

func TestHTTPErrorHandler_Head(t *testing.T) {
	e, _ := newTestEcho(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHello(t *testing.T) {
	e, _ := newTestEcho(t)
	NewHelloHandler("World!").RegisterHelloRoutes(e.Group(""))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hello World!")
}

type failingCounter struct{}

func (failingCounter) Increment(ctx context.Context) (int64, error) {
	return 0, errors.New("store down")
}

func TestCounter_StoreFailure(t *testing.T) {
	e, logs := newTestEcho(t)
	NewCounterHandler(failingCounter{}).RegisterCounterRoutes(e.Group(""))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, logs.FilterMessage("Request failed").Len())
}
