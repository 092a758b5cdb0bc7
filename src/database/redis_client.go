package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
)

// normalizeRedisURI เติม scheme redis:// ให้ค่าที่เขียนแบบ host:port
func normalizeRedisURI(uri string) string {
	uri = strings.TrimSpace(uri)
	if uri != "" && !strings.Contains(uri, "://") {
		uri = "redis://" + uri
	}
	return uri
}

// RedisOptions แปลง REDIS_URI (รวมรหัสผ่านและเลข DB) เป็น redis.Options
func RedisOptions(uri string) (*redis.Options, error) {
	opts, err := redis.ParseURL(normalizeRedisURI(uri))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URI: %w", err)
	}
	return opts, nil
}

// NewRedisClient คืน nil ถ้าไม่ได้กำหนด REDIS_URI (ระบบทำงานต่อได้โดยไม่มี cache)
func NewRedisClient(ctx context.Context, uri string) (*redis.Client, error) {
	if uri == "" {
		log.Println("⚠️ REDIS_URI not set. Cache and background jobs are disabled.")
		return nil, nil
	}
	opts, err := RedisOptions(uri)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect Redis: %w", err)
	}
	log.Println("✅ Redis connected successfully")
	return client, nil
}
