package route

import (
	"github.com/gofiber/fiber/v2"

	controller "polopay_backend/internals/features/users/auth/controller"
	rateLimiter "polopay_backend/internals/middlewares"
	authMw "polopay_backend/internals/middlewares/auth"
)

// AuthRoutes mounts /api/auth. Login is public and rate limited; the rest
// needs a live session.
func AuthRoutes(app *fiber.App, ctl *controller.AuthController, resolver authMw.SessionResolver) {
	base := app.Group("/api/auth")
	base.Post("/login", rateLimiter.LoginRateLimiter(), ctl.Login)

	protected := base.Group("", authMw.SessionGuard(resolver))
	protected.Post("/logout", ctl.Logout)
	protected.Get("/me", ctl.Me)
}
