package http_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/SomeLazyDayz/Backend-15-11/internal/adapters/http"
)

func cachingTestApp() *fiber.App {
	app := fiber.New()
	app.Use(handler.CachingMiddleware())
	app.Get("/v1/custom", func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "no-store")
		return c.SendString("ok")
	})
	app.Get("/v1/plain", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestCachingMiddleware_RespectsHandlerHeader(t *testing.T) {
	app := cachingTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/custom", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Header.Get("Cache-Control"); got != "no-store" {
		t.Errorf("handler-set Cache-Control overridden: got %q, want no-store", got)
	}
}

func TestCachingMiddleware_AppliesDefault(t *testing.T) {
	app := cachingTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/plain", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Header.Get("Cache-Control"); got != "public, max-age=300" {
		t.Errorf("default Cache-Control = %q, want public, max-age=300", got)
	}
}
