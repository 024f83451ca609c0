package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirphl/printshop/app/dto"
	"github.com/amirphl/printshop/app/handlers"
	"github.com/amirphl/printshop/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.ProductionConfig {
	return &config.ProductionConfig{
		Server: config.ServerConfig{
			BodyLimit:       1 << 20,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			IdleTimeout:     time.Minute,
			ShutdownTimeout: time.Second,
			EnableMetrics:   true,
		},
		Security: config.SecurityConfig{
			AllowedOrigins:  []string{"https://example.com"},
			AllowedMethods:  []string{"GET", "POST"},
			AllowedHeaders:  []string{"Content-Type"},
			GlobalRateLimit: 100,
			RateLimitWindow: time.Minute,
			XFrameOptions:   "DENY",
			ReferrerPolicy:  "no-referrer",
		},
		Metrics:    config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Deployment: config.DeploymentConfig{Version: "test"},
	}
}

func newTestRouter() Router {
	r := NewFiberRouter(testConfig(), Handlers{
		Recommendation: handlers.NewRecommendationHandler(nil),
		Quote:          handlers.NewQuoteHandler(nil, nil),
		Supplier:       handlers.NewSupplierHandler(nil, nil, nil),
		Scoring:        handlers.NewScoringSettingsHandler(nil),
	})
	r.SetupRoutes()
	return r
}

func TestHealthCheck(t *testing.T) {
	app := newTestRouter().GetApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var out dto.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Success)
	data := out.Data.(map[string]any)
	assert.Equal(t, "test", data["version"])
}

func TestUnknownRouteReturnsEnvelope(t *testing.T) {
	app := newTestRouter().GetApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var out dto.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.Success)
	assert.Equal(t, "NOT_FOUND", out.Error.(map[string]any)["code"])
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestRouter().GetApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "printshop_http_requests_total")
}

func TestInvalidPathParamRejected(t *testing.T) {
	app := newTestRouter().GetApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/quotes/abc", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
