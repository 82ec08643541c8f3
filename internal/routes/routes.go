package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/eshop/backend/internal/handlers"
	"github.com/eshop/backend/internal/middleware"
	"github.com/eshop/backend/internal/storage"
	"github.com/eshop/backend/internal/token"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, auth *handlers.AuthHandler, store storage.Store, tokens *token.Service) {
	api := app.Group("/")

	// User flows
	api.Post("/user-register", auth.RegisterUser)
	api.Post("/verify-user", auth.VerifyUser)
	api.Post("/login-user", auth.LoginUser)
	api.Post("/forgot-password-user", auth.ForgotPasswordUser)
	api.Post("/verify-password-user", auth.VerifyForgotPasswordUser)
	api.Post("/reset-password-user", auth.ResetPasswordUser)
	api.Get("/logged-in-user", middleware.Authenticated(store, tokens), middleware.RequireUser(), auth.GetLoggedInUser)

	// Token rotation
	api.Post("/refresh-token", auth.RefreshToken)

	// Seller flows
	api.Post("/seller-register", auth.RegisterSeller)
	api.Post("/verify-seller", auth.VerifySeller)
	api.Post("/login-seller", auth.LoginSeller)
	api.Post("/forgot-password-seller", auth.ForgotPasswordSeller)
	api.Get("/logged-in-seller", middleware.Authenticated(store, tokens), middleware.RequireSeller(), auth.GetLoggedInSeller)

	// Shop
	api.Post("/create-shop", auth.CreateShop)

	// Stripe
	api.Post("/create-stripe-link", auth.CreateStripeLink)
}
