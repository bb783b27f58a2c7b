package redis_repo

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "storefront"

func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func prefixKey(parts ...string) string {
	var builder strings.Builder
	builder.WriteString(keyPrefix)
	for _, p := range parts {
		builder.WriteString(":")
		builder.WriteString(p)
	}
	return builder.String()
}
