package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"polopay_backend/internals/constants"
)

// RequirePermission allows the request only when the session's role grants perm.
func RequirePermission(perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := GetActor(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized: missing session")
		}
		if !actor.Can(perm) {
			log.Debug().Str("role", actor.Role).Str("perm", perm).Msg("permission denied")
			return fiber.NewError(fiber.StatusForbidden, constants.PermissionError(perm))
		}
		return c.Next()
	}
}

// OnlyRoles is the coarse role guard for areas without a dedicated permission.
func OnlyRoles(customMessage string, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := GetActor(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized: missing session")
		}
		for _, r := range roles {
			if actor.Role == r {
				return c.Next()
			}
		}
		if customMessage == "" {
			customMessage = "Forbidden: you are not authorized to access this resource"
		}
		return fiber.NewError(fiber.StatusForbidden, customMessage)
	}
}
