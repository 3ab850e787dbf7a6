package helper

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
)

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/teapot", func(*fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/boom", func(*fiber.Ctx) error { return errors.New("dsn=postgres://secret") })

	tests := []struct {
		path    string
		status  int
		message string
		code    string
	}{
		{"/teapot", fiber.StatusTeapot, "short and stout", "ERROR"},
		{"/boom", fiber.StatusInternalServerError, "Internal Server Error", "INTERNAL_ERROR"},
		{"/missing", fiber.StatusNotFound, "Cannot GET /missing", "NOT_FOUND"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			raw, _ := io.ReadAll(resp.Body)
			var body ErrorResponse
			if err := sonic.Unmarshal(raw, &body); err != nil {
				t.Fatalf("decode %q: %v", raw, err)
			}
			if resp.StatusCode != tc.status || body.Message != tc.message || body.ErrorCode != tc.code || body.Success {
				t.Errorf("got %d %+v", resp.StatusCode, body)
			}
			if strings.Contains(string(raw), "secret") {
				t.Error("internal error text leaked")
			}
		})
	}
}
