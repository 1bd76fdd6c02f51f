package cache

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

// InitRedis connects the shared client. The cache is an optional layer;
// an unreachable Redis leaves Client nil and the service falls back to
// Postgres reads.
func InitRedis(ctx context.Context, addr string) {
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unavailable at %s, continuing without cache: %v", addr, err)
		return
	}
	Client = client
	log.Println("Connected to Redis")
}
