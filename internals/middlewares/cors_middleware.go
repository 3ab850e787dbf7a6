package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"polopay_backend/internals/configs"
)

const defaultCorsOrigins = "http://localhost:5173,http://127.0.0.1:5173"

// CorsMiddleware allows the admin panel origins listed in CORS_ORIGINS.
func CorsMiddleware() fiber.Handler {
	raw := configs.GetEnv("CORS_ORIGINS", defaultCorsOrigins)
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ", "),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key, X-Request-ID",
		ExposeHeaders:    "X-Request-ID, Content-Disposition",
		AllowCredentials: true,
	})
}
