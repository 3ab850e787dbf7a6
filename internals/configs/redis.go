package configs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ConnectRedis returns nil when REDIS_ADDR is unset or unreachable; callers
// treat a nil client as "cache disabled".
func ConnectRedis() *redis.Client {
	addr := GetEnv("REDIS_ADDR")
	if addr == "" {
		log.Warn().Msg("REDIS_ADDR not set, session cache disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: GetEnv("REDIS_PASSWORD"),
		DB:       GetEnvInt("REDIS_DB", 0),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error().Err(err).Str("addr", addr).Msg("redis unreachable, session cache disabled")
		_ = rdb.Close()
		return nil
	}

	log.Info().Str("addr", addr).Msg("redis connected")
	return rdb
}
