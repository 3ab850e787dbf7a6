package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	installmentService "polopay_backend/internals/features/billing/installments/service"
	authService "polopay_backend/internals/features/users/auth/service"
	rateLimiter "polopay_backend/internals/middlewares"
	authMw "polopay_backend/internals/middlewares/auth"
	routeDetails "polopay_backend/internals/route/details"
)

var startTime time.Time

type Deps struct {
	DB           *gorm.DB
	Auth         *authService.AuthService
	Installments *installmentService.InstallmentService
	WebhookToken string
}

func SetupRoutes(app *fiber.App, d Deps) {
	startTime = time.Now()

	BaseRoutes(app, d.DB)

	// ===================== AUTH =====================
	log.Info().Msg("setting up AuthRoutes")
	routeDetails.AuthRoutes(app, d.Auth)

	// ===================== WEBHOOKS (public, token checked) =====================
	log.Info().Msg("setting up gateway webhook")
	routeDetails.BillingWebhookRoutes(app, d.Installments, d.WebhookToken)

	// ===================== ADMIN (session + per-route permission) =====================
	log.Info().Msg("setting up ADMIN group")
	admin := app.Group("/api/a",
		rateLimiter.GlobalRateLimiter(),
		authMw.SessionGuard(d.Auth),
	)
	routeDetails.BillingAdminRoutes(admin, d.Installments)
}
