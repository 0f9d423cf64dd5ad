package notification

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/storeops/salescore/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provide(cfg config.Config, log *zap.Logger) Publisher {
	if cfg.RedisAddr == "" {
		log.Info("notifications disabled, no redis configured")
		return NewNoopPublisher()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	log.Info("notifications enabled", zap.String("addr", cfg.RedisAddr))
	return NewRedisPublisher(client)
}

// Module wires the notification publisher.
var Module = fx.Module("notification",
	fx.Provide(provide),
)
