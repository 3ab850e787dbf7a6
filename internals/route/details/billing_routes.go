package details

import (
	"github.com/gofiber/fiber/v2"

	installmentController "polopay_backend/internals/features/billing/installments/controller"
	installmentRoute "polopay_backend/internals/features/billing/installments/route"
	installmentService "polopay_backend/internals/features/billing/installments/service"
	rateLimiter "polopay_backend/internals/middlewares"
)

// BillingAdminRoutes mounts installment management on the admin group.
func BillingAdminRoutes(admin fiber.Router, svc *installmentService.InstallmentService) {
	installmentRoute.InstallmentAdminRoutes(admin, installmentController.NewInstallmentController(svc))
}

// BillingWebhookRoutes mounts the public gateway callback.
func BillingWebhookRoutes(app *fiber.App, svc *installmentService.InstallmentService, token string) {
	app.Use("/api/webhooks", rateLimiter.WebhookRateLimiter())
	installmentRoute.WebhookRoutes(app, installmentController.NewWebhookController(svc, token))
}
