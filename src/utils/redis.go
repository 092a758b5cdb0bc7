package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// setIfNewerScript เขียนค่าเฉพาะเมื่อ revision ไม่ต่ำกว่า revision ขั้นต่ำที่บันทึกไว้
var setIfNewerScript = redis.NewScript(`
local floor = tonumber(redis.call('GET', KEYS[2]) or '-1')
if tonumber(ARGV[1]) < floor then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// invalidateScript ลบค่าแล้วยก revision ขั้นต่ำ (ไม่ลดลง)
var invalidateScript = redis.NewScript(`
local floor = tonumber(redis.call('GET', KEYS[2]) or '-1')
if tonumber(ARGV[1]) > floor then
	if tonumber(ARGV[2]) > 0 then
		redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[2])
	else
		redis.call('SET', KEYS[2], ARGV[1])
	end
end
return redis.call('DEL', KEYS[1])
`)

// SetVersionedJSON เก็บค่าเป็น JSON พร้อมอายุ ถ้า revision เก่ากว่าที่ InvalidateVersion
// บันทึกไว้จะไม่เขียน (คืน false) ถ้า client เป็น nil จะข้าม (ไม่มี Redis ใน dev mode)
func SetVersionedJSON(ctx context.Context, client *redis.Client, key string, revision int64, value interface{}, ttl time.Duration) (bool, error) {
	if client == nil {
		return false, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	stored, err := setIfNewerScript.Run(ctx, client, []string{key, revisionKey(key)}, revision, data, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to store %s: %w", key, err)
	}
	return stored == 1, nil
}

// InvalidateVersion ลบ key และจำ revision ล่าสุดไว้ตามอายุ ttl
// กันไม่ให้ผู้อ่านที่ถือฉบับเก่าเขียนทับกลับเข้ามา
func InvalidateVersion(ctx context.Context, client *redis.Client, key string, revision int64, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	if err := invalidateScript.Run(ctx, client, []string{key, revisionKey(key)}, revision, ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", key, err)
	}
	return nil
}

func revisionKey(key string) string {
	return key + ":revision"
}

// GetJSON อ่านค่า JSON กลับมาใส่ dest คืน false ถ้าไม่มี key หรือไม่มี Redis
func GetJSON(ctx context.Context, client *redis.Client, key string, dest interface{}) (bool, error) {
	if client == nil {
		return false, nil
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// TokenBlacklist เก็บ access token ที่ logout แล้วจนกว่าจะหมดอายุ
type TokenBlacklist struct {
	client *redis.Client
}

func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

// Add เพิ่ม token เข้า blacklist (ไม่มี Redis = ข้าม)
func (b *TokenBlacklist) Add(ctx context.Context, token string, expiresIn time.Duration) error {
	if b == nil || b.client == nil || expiresIn <= 0 {
		return nil
	}
	key := fmt.Sprintf("blacklist:%s", token)
	if err := b.client.Set(ctx, key, "1", expiresIn).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

// Contains ตรวจว่า token อยู่ใน blacklist หรือไม่ (ไม่มี Redis = อนุญาตให้ผ่าน)
func (b *TokenBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	if b == nil || b.client == nil {
		return false, nil
	}
	key := fmt.Sprintf("blacklist:%s", token)
	n, err := b.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return n > 0, nil
}
