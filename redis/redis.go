package redis

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

var (
	Client *redis.Client
	Ctx    = context.Background()
)

// InitRedis connects the pricing cache. The cache is optional: when
// REDIS_ADDR is unset or the server is unreachable, Client stays nil and
// callers fall back to the database.
func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("REDIS_ADDR not set, pricing cache disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	if _, err := client.Ping(Ctx).Result(); err != nil {
		log.Printf("Failed to connect to Redis at %s, pricing cache disabled: %v", addr, err)
		return
	}

	Client = client
	log.Println("✅ Connected to Redis")
}
