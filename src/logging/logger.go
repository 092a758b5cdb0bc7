package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level      string
	Dir        string // ว่าง = log ออก stdout อย่างเดียว
	FileName   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	JSON       bool
}

// ParseLevel แปลงข้อความระดับ log เป็น slog.Level (ค่าที่ไม่รู้จัก = info)
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New สร้าง logger ที่เขียนทั้ง stdout และไฟล์ที่หมุนเวียนด้วย lumberjack
// ต้องเรียก close ตอนปิดระบบ
func New(opts Options) (*slog.Logger, func() error, error) {
	var writer io.Writer = os.Stdout
	closeFn := func() error { return nil }

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		if opts.FileName == "" {
			opts.FileName = "gacp-survey.log"
		}
		fileLogger := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, opts.FileName),
			MaxSize:    orDefault(opts.MaxSizeMB, 100),
			MaxBackups: orDefault(opts.MaxBackups, 10),
			MaxAge:     orDefault(opts.MaxAgeDays, 7),
			Compress:   true,
		}
		writer = io.MultiWriter(os.Stdout, fileLogger)
		closeFn = fileLogger.Close
	}

	return slog.New(NewHandler(writer, opts)), closeFn, nil
}

// NewHandler handler ที่ใช้รูปแบบเวลา RFC3339
func NewHandler(w io.Writer, opts Options) slog.Handler {
	handlerOpts := &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.Format(time.RFC3339))
				}
			}
			return a
		},
	}
	if opts.JSON {
		return slog.NewJSONHandler(w, handlerOpts)
	}
	return slog.NewTextHandler(w, handlerOpts)
}

// Discard logger ที่ไม่เขียนอะไรเลย ใช้ใน test
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
