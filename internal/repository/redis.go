package repository

import (
	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns nil when addr is empty, which disables caching.
func NewRedisClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
