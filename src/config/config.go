package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	Port           string
	MongoURI       string
	MongoDB        string
	RedisURI       string // ว่าง = ไม่ใช้ cache และ background job
	JWTSecret      string
	AllowedOrigins string
	LogLevel       string
	LogDir         string
	LogToFile      bool

	MinCompletionRate float64
	SurveyCacheTTL    time.Duration
	WorkerConcurrency int
	SeedSampleData    bool

	SMTP          SMTPConfig
	ReviewerEmail string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled ส่งอีเมลได้เมื่อกำหนด host ไว้
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

// Load อ่านค่าจาก .env (ถ้ามี) และ environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Warning: No .env file found")
	}

	cfg := &Config{
		Port:              getEnv("APP_PORT", "8888"),
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDB:           getEnv("MONGO_DB", "GACPSurveyDB"),
		RedisURI:          os.Getenv("REDIS_URI"),
		JWTSecret:         getEnv("JWT_SECRET", "your_secret_key"),
		AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "http://localhost:3000, http://localhost:5173"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogDir:            getEnv("LOG_DIR", "logs"),
		LogToFile:         cast.ToBool(getEnv("LOG_TO_FILE", "true")),
		MinCompletionRate: cast.ToFloat64(getEnv("MIN_COMPLETION_RATE", "80")),
		SurveyCacheTTL:    cast.ToDuration(getEnv("SURVEY_CACHE_TTL", "10m")),
		WorkerConcurrency: cast.ToInt(getEnv("WORKER_CONCURRENCY", "5")),
		SeedSampleData:    cast.ToBool(getEnv("SEED_SAMPLE_DATA", "false")),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     cast.ToInt(getEnv("SMTP_PORT", "587")),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     getEnv("SMTP_FROM", os.Getenv("SMTP_USER")),
		},
		ReviewerEmail: os.Getenv("REVIEWER_EMAIL"),
	}
	return cfg, cfg.Validate()
}

// Validate ตรวจค่าที่จำเป็นก่อนเริ่มระบบ
func (c *Config) Validate() error {
	var msgs []string
	if c.MongoURI == "" {
		msgs = append(msgs, "MONGO_URI environment variable not set")
	}
	if c.MinCompletionRate <= 0 || c.MinCompletionRate > 100 {
		msgs = append(msgs, "MIN_COMPLETION_RATE must be between 0 and 100")
	}
	if c.SurveyCacheTTL <= 0 {
		msgs = append(msgs, "SURVEY_CACHE_TTL must be a positive duration")
	}
	if c.WorkerConcurrency <= 0 {
		c.WorkerConcurrency = 1
	}
	if len(msgs) > 0 {
		return errors.New(strings.Join(msgs, "; "))
	}
	return nil
}

// Origins แยก ALLOWED_ORIGINS ตามเครื่องหมายจุลภาค
func (c *Config) Origins() string {
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
