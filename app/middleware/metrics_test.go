package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	app := fiber.New()
	app.Use(Metrics())
	app.Get("/quotes/:id", func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, "/quotes/:id", "200")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/quotes/1", "/quotes/2"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
	assert.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
}
