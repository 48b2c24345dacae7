package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "phonebook_backend/internal/http"
	"phonebook_backend/platform/config"
	"phonebook_backend/platform/logger"
	"phonebook_backend/platform/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type panicModule struct{}

func (panicModule) Name() string { return "panic" }

func (panicModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/boom", func(*gin.Context) { panic("boom") })
}

func testApp(health apphttp.HealthChecker) *apphttp.App {
	return &apphttp.App{
		Config: &config.Config{
			AppVersion:     "9.9.9",
			CORSOrigins:    []string{"http://localhost:3000"},
			RateLimitRPS:   0,
			RateLimitBurst: 1,
		},
		Logger:  logger.Discard(),
		Health:  health,
		Metrics: metrics.New(),
		Modules: []apphttp.Module{panicModule{}},
	}
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	engine := New(testApp(pingFunc(func(context.Context) error { return nil })))

	w := get(engine, "/api/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "connected", body.Database)
	assert.Equal(t, "9.9.9", body.Version)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHealthDatabaseDown(t *testing.T) {
	engine := New(testApp(pingFunc(func(context.Context) error { return errors.New("refused") })))

	w := get(engine, "/api/health")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"disconnected"`)
}

func TestPanicIsRecovered(t *testing.T) {
	engine := New(testApp(nil))

	w := get(engine, "/api/v1/boom")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestUnknownRoute(t *testing.T) {
	engine := New(testApp(nil))

	w := get(engine, "/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	engine := New(testApp(nil))
	get(engine, "/api/health")

	w := get(engine, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "phonebook_http_requests_total")
}
