package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"polopay_backend/internals/configs"
	"polopay_backend/internals/middlewares/logger"
)

// SetupMiddlewares installs the app-wide chain. Order matters: recovery
// first, request id before the access log.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(RequestContext(configs.GatewayTimeout + 5*time.Second))
	app.Use(logger.LoggerMiddleware())
	app.Use(Metrics())
	app.Use(CorsMiddleware())
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
}
