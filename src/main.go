package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	_ "Backend-GACP-Survey/docs"
	"Backend-GACP-Survey/src/config"
	"Backend-GACP-Survey/src/controllers"
	"Backend-GACP-Survey/src/database"
	"Backend-GACP-Survey/src/jobs"
	"Backend-GACP-Survey/src/logging"
	"Backend-GACP-Survey/src/metrics"
	"Backend-GACP-Survey/src/models"
	"Backend-GACP-Survey/src/routes"
	"Backend-GACP-Survey/src/seeder"
	"Backend-GACP-Survey/src/services/responses"
	"Backend-GACP-Survey/src/services/summary"
	"Backend-GACP-Survey/src/services/surveys"
	"Backend-GACP-Survey/src/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/hibiken/asynq"
)

// @title       GACP Survey API
// @version     1.0
// @description ระบบแบบประเมินมาตรฐาน GACP: คิดคะแนน ติดตามความคืบหน้า และตรวจทานคำตอบ
// @BasePath    /
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	logOpts := logging.Options{Level: cfg.LogLevel}
	if cfg.LogToFile {
		logOpts.Dir = cfg.LogDir
	}
	logger, closeLog, err := logging.New(logOpts)
	if err != nil {
		log.Fatalf("❌ Failed to init logger: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// เชื่อมต่อกับ MongoDB
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	mongoClient, err := database.ConnectMongoDB(connectCtx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Error connecting to the database: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("mongo disconnect failed", "error", err)
		}
	}()
	db := mongoClient.Database(cfg.MongoDB)
	if err := database.EnsureIndexes(connectCtx, db); err != nil {
		log.Fatalf("❌ Failed to create indexes: %v", err)
	}

	// Redis ไม่บังคับ ถ้าไม่มีจะไม่มี cache และงานเบื้องหลัง
	rdb, err := database.NewRedisClient(connectCtx, cfg.RedisURI)
	if err != nil {
		logger.Warn("⚠️ Redis unavailable, continuing without cache", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	asynqClient, err := database.NewAsynqClient(cfg.RedisURI)
	if err != nil {
		logger.Warn("⚠️ Asynq client unavailable, submit notifications disabled", "error", err)
		asynqClient = nil
	}
	if asynqClient != nil {
		defer asynqClient.Close()
	}

	m := metrics.New()

	surveyRepo := surveys.NewMongoRepository(db)
	responseRepo := responses.NewMongoRepository(db)
	surveySvc := surveys.NewService(surveyRepo, surveys.NewRedisCache(rdb, cfg.SurveyCacheTTL, logger), m, logger)
	responseSvc := responses.NewService(
		responseRepo,
		surveySvc,
		jobs.NewPublisher(asynqClient, logger),
		models.ResponseConfig{MinCompletionRate: cfg.MinCompletionRate},
		m,
		logger,
	)
	summarySvc := summary.NewService(surveySvc, responseRepo, logger)
	blacklist := utils.NewTokenBlacklist(rdb)

	if cfg.SeedSampleData {
		if err := seeder.SeedSampleSurveys(connectCtx, surveySvc); err != nil {
			logger.Error("❌ Failed to seed sample surveys", "error", err)
		}
	}

	if cfg.RedisURI != "" {
		worker := startWorker(cfg, m, logger)
		defer worker.Shutdown()
	}

	// สร้าง app instance
	app := fiber.New()

	// ✅ เปิดใช้งาน CORS Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Origins(),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// รวม routes จากแต่ละ module
	routes.InitRoutes(app, routes.Container{
		JWTSecret: cfg.JWTSecret,
		Blacklist: blacklist,
		Metrics:   m,
		Surveys:   controllers.NewSurveyController(surveySvc, responseSvc, summarySvc),
		Responses: controllers.NewResponseController(responseSvc),
		Auth:      controllers.NewAuthController(blacklist, logger),
	})

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	// เริ่มเซิร์ฟเวอร์
	logger.Info("Server is running on port " + cfg.Port)
	if err := app.Listen(fmt.Sprintf(":%s", cfg.Port)); err != nil {
		logger.Error("server stopped", "error", err)
	}
}

// startWorker รัน asynq worker ใน process เดียวกับ API
func startWorker(cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) *jobs.Worker {
	var sender jobs.MailSender = jobs.LogSender{Log: logger}
	if cfg.SMTP.Enabled() {
		smtp, err := jobs.NewSMTPSender(cfg.SMTP)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		sender = smtp
	}

	mux := asynq.NewServeMux()
	jobs.RegisterHandlers(mux, sender, cfg.ReviewerEmail, m, logger)

	redisOpt, err := database.AsynqRedisOpt(cfg.RedisURI)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	worker := jobs.NewWorker(redisOpt, cfg.WorkerConcurrency, mux)
	if err := worker.Start(); err != nil {
		log.Fatalf("❌ Failed to start worker: %v", err)
	}
	logger.Info("✅ Asynq worker started", "concurrency", cfg.WorkerConcurrency)
	return worker
}
