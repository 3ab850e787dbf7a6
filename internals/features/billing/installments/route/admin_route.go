package route

import (
	"github.com/gofiber/fiber/v2"

	"polopay_backend/internals/constants"
	installmentController "polopay_backend/internals/features/billing/installments/controller"
	authMw "polopay_backend/internals/middlewares/auth"
)

/*
Admin routes, mounted on the session-guarded /api/a group:
- POST /installments/actions          action dispatch (permission per action)
- GET  /installments                  list
- GET  /installments/:id              detail (?remote=true)
- GET  /installments/:id/payment-book PDF
- POST /installments/:id/sync         pull payments from gateway
- GET  /reports/installments/summary
- GET  /gateway/health
*/
func InstallmentAdminRoutes(r fiber.Router, ctl *installmentController.InstallmentController) {
	inst := r.Group("/installments")
	inst.Post("/actions", ctl.Dispatch)
	inst.Get("/", authMw.RequirePermission(constants.PermInstallmentsView), ctl.List)
	inst.Get("/:id", authMw.RequirePermission(constants.PermInstallmentsView), ctl.Detail)
	inst.Get("/:id/payment-book", authMw.RequirePermission(constants.PermPaymentBookGenerate), ctl.PaymentBook)
	inst.Post("/:id/sync", authMw.RequirePermission(constants.PermInstallmentsSync), ctl.Sync)

	r.Get("/reports/installments/summary", authMw.RequirePermission(constants.PermReportsView), ctl.Summary)
	r.Get("/gateway/health", authMw.RequirePermission(constants.PermGatewayHealth), ctl.GatewayHealth)
}
