package configs

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var (
	AppEnv        string
	AppTimezone   string
	SessionSecret string
	SessionTTL    time.Duration

	GatewayBaseURL      string
	GatewayAPIKey       string
	GatewaySandbox      bool
	GatewayTimeout      time.Duration
	GatewayWebhookToken string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Warn().Msg("no .env file found, using system environment")
		} else {
			log.Info().Msg(".env file loaded")
		}
	} else {
		log.Info().Msg("running on Railway, using system environment")
	}

	AppEnv = GetEnv("APP_ENV", "production")
	AppTimezone = GetEnv("APP_TIMEZONE", "America/Sao_Paulo")

	SessionSecret = GetEnv("SESSION_SECRET")
	SessionTTL = time.Duration(GetEnvInt("SESSION_TTL_HOURS", 12)) * time.Hour

	GatewayBaseURL = GetEnv("GATEWAY_BASE_URL", "https://sandbox.asaas.com/api/v3")
	GatewayAPIKey = GetEnv("GATEWAY_API_KEY")
	GatewaySandbox = GetEnvBool("GATEWAY_SANDBOX", true)
	GatewayTimeout = time.Duration(GetEnvInt("GATEWAY_TIMEOUT_SECONDS", 30)) * time.Second
	GatewayWebhookToken = GetEnv("GATEWAY_WEBHOOK_TOKEN")

	if SessionSecret == "" {
		log.Error().Msg("SESSION_SECRET is not set")
	}
	if GatewayAPIKey == "" {
		log.Warn().Msg("GATEWAY_API_KEY is not set, gateway calls will be rejected")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvInt(key string, def int) int {
	if v, err := strconv.Atoi(GetEnv(key)); err == nil {
		return v
	}
	return def
}

func GetEnvBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(GetEnv(key)); err == nil {
		return v
	}
	return def
}

// Location resolves APP_TIMEZONE, falling back to UTC when the zone database lacks it.
func Location() *time.Location {
	name := AppTimezone
	if name == "" {
		name = GetEnv("APP_TIMEZONE", "America/Sao_Paulo")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().Err(err).Str("tz", name).Msg("unknown timezone, using UTC")
		return time.UTC
	}
	return loc
}

// CheckWebhookToken rejects an empty gateway webhook token outside
// development, where any caller could post payment events.
func CheckWebhookToken(env, token string) error {
	if token != "" {
		return nil
	}
	if env == "development" {
		log.Warn().Msg("GATEWAY_WEBHOOK_TOKEN is not set, webhook accepts unauthenticated calls")
		return nil
	}
	return errors.New("GATEWAY_WEBHOOK_TOKEN must be set when APP_ENV is not development")
}
