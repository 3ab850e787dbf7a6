package auth

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	authModel "polopay_backend/internals/features/users/auth/model"
)

const (
	SessionCookieName = "session_token"
	localsActor       = "actor"
)

/* ======== Extractors ======== */

func extractBearerToken(c *fiber.Ctx) (string, error) {
	// Authorization header first, session cookie as fallback
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if auth == "" {
		if cookieTok := c.Cookies(SessionCookieName); cookieTok != "" {
			auth = "Bearer " + cookieTok
		}
	}
	if auth == "" {
		return "", fmt.Errorf("unauthorized - no token provided")
	}

	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", fmt.Errorf("unauthorized - invalid token format")
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", fmt.Errorf("unauthorized - empty token")
	}
	return tok, nil
}

/* ======== Locals ======== */

func storeActorToLocals(c *fiber.Ctx, a authModel.Actor) {
	c.Locals(localsActor, a)
	c.Locals("user_id", a.UserID.String())
	c.Locals("userRole", a.Role)
	if a.TenantID != nil {
		c.Locals("tenant_id", a.TenantID.String())
	}
}

// GetActor returns the caller resolved by SessionGuard.
func GetActor(c *fiber.Ctx) (authModel.Actor, bool) {
	a, ok := c.Locals(localsActor).(authModel.Actor)
	return a, ok
}
