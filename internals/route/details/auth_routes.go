package details

import (
	"github.com/gofiber/fiber/v2"

	authController "polopay_backend/internals/features/users/auth/controller"
	authRoute "polopay_backend/internals/features/users/auth/route"
	authService "polopay_backend/internals/features/users/auth/service"
)

func AuthRoutes(app *fiber.App, svc *authService.AuthService) {
	authRoute.AuthRoutes(app, authController.NewAuthController(svc), svc)
}
