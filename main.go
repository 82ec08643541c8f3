package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/eshop/backend/database"
	"github.com/eshop/backend/internal/apperrors"
	"github.com/eshop/backend/internal/config"
	"github.com/eshop/backend/internal/email"
	"github.com/eshop/backend/internal/handlers"
	"github.com/eshop/backend/internal/models"
	"github.com/eshop/backend/internal/otp"
	"github.com/eshop/backend/internal/payments"
	"github.com/eshop/backend/internal/ratelimit"
	"github.com/eshop/backend/internal/routes"
	"github.com/eshop/backend/internal/storage"
	"github.com/eshop/backend/internal/token"
)

func main() {
	log := logrus.New()
	if os.Getenv("ENVIRONMENT") == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - checking environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	// Initialize storage
	var store storage.Store
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		if err := database.Connect(&cfg.Database, log); err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}

		log.Println("🔄 Running database migrations...")
		if err := database.DB.AutoMigrate(
			&models.User{},
			&models.Seller{},
			&models.Shop{},
		); err != nil {
			log.WithError(err).Fatal("Failed to migrate database")
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
	}
	storage.SetStore(store)

	// Redis backs the OTP ledger; unlike the database it has no in-memory fallback
	redisClient, err := database.ConnectRedis(&cfg.Redis, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}

	// Initialize services
	sender, err := email.NewSMTPSender(&cfg.SMTP, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize email sender")
	}

	ledger := ratelimit.NewLedger(redisClient)
	otpService := otp.NewService(redisClient, ledger, sender, log)

	tokenService, err := token.NewService(&cfg.JWT)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize token service")
	}

	stripeClient := payments.NewStripeClient(&cfg.Stripe, log)

	authHandler := handlers.NewAuthHandler(store, otpService, ledger, tokenService, stripeClient, log)

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName:      "EShop Auth Service v1.0.0",
		ErrorHandler: apperrors.ErrorHandler(log),
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		statusCode := 200

		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			sqlDB, err := database.DB.DB()
			if err != nil || sqlDB.Ping() != nil {
				status = "unhealthy"
				statusCode = 503
			}
		}
		if redisClient.Ping(c.Context()).Err() != nil {
			status = "unhealthy"
			statusCode = 503
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status":  status,
			"service": "auth-service",
		})
	})

	routes.SetupRoutes(app, authHandler, store, tokenService)

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("🛑 Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	log.Printf("🚀 Auth service starting on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}
