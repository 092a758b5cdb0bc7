package surveys

import (
	"context"
	"log/slog"
	"time"

	"Backend-GACP-Survey/src/models"
	"Backend-GACP-Survey/src/utils"

	"github.com/redis/go-redis/v9"
)

// Cache เก็บนิยามแบบประเมินที่อ่านบ่อย ความผิดพลาดของ cache ไม่ทำให้คำขอล้มเหลว
type Cache interface {
	Get(ctx context.Context, surveyID string) (*models.Survey, bool)
	Set(ctx context.Context, survey *models.Survey)
	// Invalidate ลบแบบประเมินออกจาก cache และไม่รับฉบับที่ revision ต่ำกว่า revision อีก
	Invalidate(ctx context.Context, surveyID string, revision int64)
}

func CacheKey(surveyID string) string {
	return "survey:" + surveyID
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// NewRedisCache client เป็น nil ได้ (cache จะไม่ทำอะไร)
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) Cache {
	return &redisCache{client: client, ttl: ttl, log: logger}
}

func (c *redisCache) Get(ctx context.Context, surveyID string) (*models.Survey, bool) {
	var survey models.Survey
	found, err := utils.GetJSON(ctx, c.client, CacheKey(surveyID), &survey)
	if err != nil {
		c.log.Warn("survey cache read failed", "surveyId", surveyID, "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &survey, true
}

func (c *redisCache) Set(ctx context.Context, survey *models.Survey) {
	stored, err := utils.SetVersionedJSON(ctx, c.client, CacheKey(survey.SurveyID), survey.Revision, survey, c.ttl)
	if err != nil {
		c.log.Warn("survey cache write failed", "surveyId", survey.SurveyID, "error", err)
		return
	}
	if !stored && c.client != nil {
		c.log.Debug("stale survey not cached", "surveyId", survey.SurveyID, "revision", survey.Revision)
	}
}

func (c *redisCache) Invalidate(ctx context.Context, surveyID string, revision int64) {
	if err := utils.InvalidateVersion(ctx, c.client, CacheKey(surveyID), revision, c.ttl); err != nil {
		c.log.Warn("survey cache invalidate failed", "surveyId", surveyID, "error", err)
	}
}
