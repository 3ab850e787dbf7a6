package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"polopay_backend/internals/configs"
	database "polopay_backend/internals/databases"
	"polopay_backend/internals/features/billing/gateway"
	"polopay_backend/internals/features/billing/installments/repository"
	installmentService "polopay_backend/internals/features/billing/installments/service"
	scheduler "polopay_backend/internals/features/users/auth/scheduler"
	authService "polopay_backend/internals/features/users/auth/service"
	helper "polopay_backend/internals/helpers"
	ossArchive "polopay_backend/internals/helpers/oss"
	middlewares "polopay_backend/internals/middlewares"
	routes "polopay_backend/internals/route"
)

func main() {
	configs.LoadEnv()
	configs.InitLogger()

	policy, err := configs.LoadBillingPolicy()
	if err != nil {
		log.Fatal().Err(err).Msg("billing policy")
	}
	if err := configs.CheckWebhookToken(configs.AppEnv, configs.GatewayWebhookToken); err != nil {
		log.Fatal().Err(err).Msg("webhook token")
	}

	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		ErrorHandler:            helper.ErrorHandler,
		BodyLimit:               1 << 20,
	})
	middlewares.SetupMiddlewares(app)

	// DB connect + pool + warm-up
	database.ConnectDB()
	database.TunePool()
	database.WarmUpQueries()
	if configs.GetEnvBool("DB_AUTO_MIGRATE", false) {
		if err := database.Migrate(database.DB); err != nil {
			log.Fatal().Err(err).Msg("auto migrate failed")
		}
	}

	// sessions
	var cache authService.SessionCache
	if rdb := configs.ConnectRedis(); rdb != nil {
		cache = authService.NewRedisSessionCache(rdb)
		defer rdb.Close()
	}
	auth := authService.NewAuthService(database.DB, cache, configs.SessionSecret, configs.SessionTTL)

	cleanup, err := scheduler.StartSessionCleanup(database.DB, configs.GetEnv("SESSION_CLEANUP_CRON"), 7*24*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("session cleanup scheduler")
	}

	// billing
	gw := gateway.NewRESTClient(gateway.Config{
		BaseURL: configs.GatewayBaseURL,
		APIKey:  configs.GatewayAPIKey,
		Sandbox: configs.GatewaySandbox,
		Timeout: configs.GatewayTimeout,
	})
	installments := installmentService.NewInstallmentService(
		repository.NewInstallmentRepository(database.DB), gw, policy, configs.Location())
	archive, err := ossArchive.NewOSSArchiveFromEnv("payment-books")
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("payment book archive disabled")
	case archive != nil:
		installments.Archive = archive
	}

	routes.SetupRoutes(app, routes.Deps{
		DB:           database.DB,
		Auth:         auth,
		Installments: installments,
		WebhookToken: configs.GatewayWebhookToken,
	})

	// keep-alive & connection timeouts
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = configs.GatewayTimeout + 15*time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")
	go func() {
		log.Info().Str("port", port).Msg("listening")
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown: stop jobs, drain HTTP, close the pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	<-cleanup.Stop().Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("bye")
}
