package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	authModel "polopay_backend/internals/features/users/auth/model"
	authService "polopay_backend/internals/features/users/auth/service"
)

// SessionResolver turns a raw token into the caller it names.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (authModel.Actor, error)
}

// SessionGuard rejects requests without a live server-side session and
// stores the resolved Actor in c.Locals.
func SessionGuard(resolver SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := extractBearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		actor, err := resolver.Resolve(c.UserContext(), token)
		switch {
		case errors.Is(err, authService.ErrSessionInvalid):
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - session invalid or expired")
		case errors.Is(err, authService.ErrUserInactive):
			return fiber.NewError(fiber.StatusForbidden, "account is disabled")
		case err != nil:
			log.Error().Err(err).Str("path", c.Path()).Msg("session resolve failed")
			return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
		}

		storeActorToLocals(c, actor)
		return c.Next()
	}
}
