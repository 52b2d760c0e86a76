package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"datagen-service/internal/config"
	"datagen-service/internal/report"
	"datagen-service/internal/service"
	"datagen-service/internal/storage"
	transport "datagen-service/internal/transport/http"
	"datagen-service/internal/warehouse"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

var startTime time.Time

func main() {
	startTime = time.Now()
	cfg := config.Load()
	log.Printf("🔧 Service expected token: %s******", cfg.ServiceExpectedToken[:6])
	warehouse.InitDB(cfg)

	var archive service.Archive
	if cfg.R2Enabled() {
		r2Client, err := storage.NewR2Client(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		})
		if err != nil {
			log.Fatalf("❌ [R2] Failed to initialize client: %v", err)
		}
		archive = r2Client
		log.Println("✅ [R2] Snapshot archive client initialized")
	} else {
		log.Println("⚠️ [R2] Snapshot archive disabled (no R2 configuration)")
	}

	var reporter service.ReportSender
	if cfg.ReportEnabled() {
		reporter = report.NewSender(cfg)
		log.Printf("✅ [REPORT] Run report mail enabled (%d recipients)", len(cfg.ReportRecipients))
	} else {
		log.Println("⚠️ [REPORT] Run report mail disabled (no SMTP configuration or recipients)")
	}

	db := warehouse.GetDB()
	runService := service.NewRunService(
		cfg,
		warehouse.NewPostgresSink(db),
		warehouse.NewPostgresRunStore(db),
		archive,
		reporter,
	)
	handler := transport.NewHandler(runService)
	log.Println("✅ [SERVICE] RunService & Handler initialized")

	app := fiber.New(fiber.Config{
		AppName:      "datagen-service",
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())

	allowedOrigins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,OPTIONS,HEAD",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With,X-Service-Token,Cache-Control",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(logger.New(logger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${ua}\n",
	}))

	// Service-to-service routes — the CI scheduler triggers runs here
	serviceRoutes := app.Group("/svc/v1", serviceAuth(cfg))
	serviceRoutes.Post("/runs/trigger", handler.TriggerRun)
	serviceRoutes.Get("/runs", handler.ListRuns)
	serviceRoutes.Get("/runs/:id", handler.GetRun)
	log.Println("✅ [ROUTES] Registered service routes: /svc/v1/runs*")

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		uptime := time.Since(startTime).Round(time.Second)
		return c.JSON(fiber.Map{
			"status":          "ok",
			"service":         "datagen-service",
			"uptime":          uptime.String(),
			"timestamp":       time.Now().UTC().Format(time.RFC3339),
			"archive_enabled": archive != nil,
			"report_enabled":  reporter != nil,
		})
	})
	log.Println("✅ [ROUTES] Registered /health")

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("🛑 [SHUTDOWN] Graceful shutdown initiated...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ [SHUTDOWN] Error: %v", err)
		}
	}()

	log.Printf("🚀 datagen-service starting...")
	log.Printf("   🔗 Listening on port: %s", cfg.ServerPort)
	log.Printf("   📦 Warehouse DB: %s/%s", cfg.DBHost, cfg.DBName)
	log.Printf("   👥 Default user count: %d | window: %dd | seed: %d", cfg.UserCount, cfg.HistoryWindowDays, cfg.RandomSeed)
	log.Println("✅ Server ready.")

	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("❌ [STARTUP] Server failed to start: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var errMsg string
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		errMsg = e.Message
	} else {
		errMsg = err.Error()
	}
	log.Printf("🔥 [ERROR] [%d] %s %s → %v | IP=%s | UA=%s",
		code,
		c.Method(),
		c.Path(),
		errMsg,
		c.IP(),
		c.Get("User-Agent"),
	)
	return c.Status(code).JSON(fiber.Map{
		"error":      "something went wrong",
		"request_id": c.Get("X-Request-ID"),
	})
}

func serviceAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("X-Service-Token")
		if token == "" {
			authHeader := c.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}
		maskedToken := "<empty>"
		if token != "" {
			if len(token) > 6 {
				maskedToken = token[:6] + "..."
			} else {
				maskedToken = token
			}
		}
		if token != cfg.ServiceExpectedToken {
			log.Printf("[SERVICE-AUTH] ❌ REJECTED | IP=%s | Path=%s | Token=%s",
				c.IP(), c.Path(), maskedToken)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized: invalid or missing service token",
			})
		}
		log.Printf("[SERVICE-AUTH] ✅ ACCEPTED | IP=%s | Path=%s", c.IP(), c.Path())
		return c.Next()
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
