package route

import (
	"github.com/gofiber/fiber/v2"

	installmentController "polopay_backend/internals/features/billing/installments/controller"
)

// WebhookRoutes is public; the controller checks the shared token itself.
func WebhookRoutes(app *fiber.App, ctl *installmentController.WebhookController) {
	app.Post("/api/webhooks/gateway", ctl.Receive)
}
