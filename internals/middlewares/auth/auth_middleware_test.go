package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"polopay_backend/internals/constants"
	authModel "polopay_backend/internals/features/users/auth/model"
	authService "polopay_backend/internals/features/users/auth/service"
)

type stubResolver struct {
	ResolveFunc func(ctx context.Context, token string) (authModel.Actor, error)
}

func (s stubResolver) Resolve(ctx context.Context, token string) (authModel.Actor, error) {
	return s.ResolveFunc(ctx, token)
}

func newGuardedApp(perm string) *fiber.App {
	polo := uuid.New()
	resolver := stubResolver{ResolveFunc: func(_ context.Context, token string) (authModel.Actor, error) {
		switch token {
		case "operator":
			return authModel.Actor{UserID: uuid.New(), TenantID: &polo, Role: constants.RoleOperator}, nil
		case "viewer":
			return authModel.Actor{UserID: uuid.New(), TenantID: &polo, Role: constants.RoleViewer}, nil
		case "disabled":
			return authModel.Actor{}, authService.ErrUserInactive
		default:
			return authModel.Actor{}, authService.ErrSessionInvalid
		}
	}}

	app := fiber.New()
	app.Get("/x", SessionGuard(resolver), RequirePermission(perm), func(c *fiber.Ctx) error {
		a, _ := GetActor(c)
		return c.SendString(a.Role)
	})
	return app
}

func TestSessionGuard(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{"no token", "", "", fiber.StatusUnauthorized},
		{"bad scheme", "Basic abc", "", fiber.StatusUnauthorized},
		{"unknown session", "Bearer nope", "", fiber.StatusUnauthorized},
		{"inactive user", "Bearer disabled", "", fiber.StatusForbidden},
		{"lacks permission", "Bearer viewer", "", fiber.StatusForbidden},
		{"allowed", "Bearer operator", "", fiber.StatusOK},
		{"cookie fallback", "", "operator", fiber.StatusOK},
	}
	app := newGuardedApp(constants.PermInstallmentsCreate)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.Header.Set("Cookie", SessionCookieName+"="+tt.cookie)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
