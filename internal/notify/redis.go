package notify

import (
	"go-commerce-ledger/pkg/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the pub/sub client from config.
func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
