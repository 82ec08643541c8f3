package main

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/proxy"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// The gateway is pass-through glue: CORS, request logging, and a per-IP rate
// limit in front of the auth service. No business logic lives here.
func main() {
	log := logrus.New()

	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - checking environment variables")
	}

	authService := os.Getenv("AUTH_SERVICE")
	if authService == "" {
		authService = "http://localhost:6001"
	}
	port := os.Getenv("GATEWAY_PORT")
	if port == "" {
		port = "8080"
	}

	app := fiber.New(fiber.Config{
		AppName: "EShop API Gateway v1.0.0",
	})

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
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 15 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	app.Get("/gateway-health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to the api gateway",
		})
	})

	// Everything else goes straight to the auth service
	app.Use(func(c *fiber.Ctx) error {
		return proxy.Do(c, authService+c.OriginalURL())
	})

	log.Printf("🚀 API gateway starting on port %s (auth service: %s)", port, authService)
	if err := app.Listen(":" + port); err != nil {
		log.WithError(err).Fatal("Gateway stopped")
	}
}
