package database

import (
	"fmt"
	"log"

	"github.com/hibiken/asynq"
)

// AsynqRedisOpt แปลง REDIS_URI เป็นค่าเชื่อมต่อของ asynq (ใช้ทั้ง client และ worker)
func AsynqRedisOpt(uri string) (asynq.RedisConnOpt, error) {
	opt, err := asynq.ParseRedisURI(normalizeRedisURI(uri))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URI: %w", err)
	}
	return opt, nil
}

// NewAsynqClient สร้าง client สำหรับส่งงานเข้าคิว คืน nil ถ้าไม่มี Redis
func NewAsynqClient(redisURI string) (*asynq.Client, error) {
	if redisURI == "" {
		log.Println("⚠️ Redis not available. Asynq client will not be initialized.")
		return nil, nil
	}
	opt, err := AsynqRedisOpt(redisURI)
	if err != nil {
		return nil, err
	}
	client := asynq.NewClient(opt)
	log.Println("✅ Asynq Client initialized successfully")
	return client, nil
}
