package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMonitoringMiddlewareLabelsMatchedRoute(t *testing.T) {
	app := fiber.New()
	app.Use(MonitoringMiddleware(&MonitoringService{}))
	app.Get("/api/v1/lessons/:lessonId/percentage", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	counter := httpRequestsTotal.WithLabelValues("/api/v1/lessons/:lessonId/percentage", http.MethodGet, "200")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/api/v1/lessons/3/percentage", "/api/v1/lessons/4/percentage"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		if err != nil {
			t.Fatalf("request %s: %v", path, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Fatalf("expected 2 requests under the route pattern, got %v", got)
	}
	if active := testutil.ToFloat64(httpRequestsActive.WithLabelValues(http.MethodGet)); active != 0 {
		t.Fatalf("expected no active requests after completion, got %v", active)
	}
}
