package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/eshop/backend/internal/apperrors"
	"github.com/eshop/backend/internal/models"
	"github.com/eshop/backend/internal/storage"
	"github.com/eshop/backend/internal/token"
)

// RegisterSeller starts seller registration. Sellers additionally require
// phone number and country; otherwise the flow mirrors RegisterUser.
func (h *AuthHandler) RegisterSeller(c *fiber.Ctx) error {
	var req models.SellerRegistration
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidation("Invalid request body")
	}

	if err := validateRegistration(req.Name, req.Email, req.Password, req.PhoneNumber, req.Country, token.RoleSeller); err != nil {
		return err
	}

	if _, err := h.store.GetSellerByEmail(req.Email); err == nil {
		return apperrors.NewValidation("Seller with this email already exists")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return apperrors.NewDatabase(err)
	}

	ctx := c.Context()
	if err := h.ledger.CheckRestriction(ctx, req.Email); err != nil {
		return err
	}
	if err := h.ledger.Track(ctx, req.Email); err != nil {
		return err
	}
	if err := h.otp.Issue(ctx, req.Email, req.Name, "seller-activation-email"); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "OTP sent to email. Please verify your account",
	})
}

// VerifySeller checks the OTP and materializes the seller account.
func (h *AuthHandler) VerifySeller(c *fiber.Ctx) error {
	var req models.SellerRegistration
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidation("Invalid request body")
	}

	if req.Email == "" || req.OTP == "" || req.Password == "" || req.Name == "" ||
		req.PhoneNumber == "" || req.Country == "" {
		return apperrors.NewValidation("All fields are mandate")
	}

	if _, err := h.store.GetSellerByEmail(req.Email); err == nil {
		return apperrors.NewValidation("Seller with this email already exists")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return apperrors.NewDatabase(err)
	}

	if err := h.otp.Verify(c.Context(), req.Email, req.OTP); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return err
	}

	seller, err := h.store.CreateSeller(&models.Seller{
		Name:        req.Name,
		Email:       req.Email,
		Password:    string(hash),
		PhoneNumber: req.PhoneNumber,
		Country:     req.Country,
	})
	if err != nil {
		return apperrors.NewDatabase(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Seller successfully registered",
		"seller": fiber.Map{
			"id":    seller.SellerID,
			"email": seller.Email,
			"name":  seller.Name,
		},
	})
}

// LoginSeller authenticates a seller, clears any user cookies, and sets the
// seller token pair.
func (h *AuthHandler) LoginSeller(c *fiber.Ctx) error {
	var req models.SellerRegistration
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidation("Invalid request body")
	}

	seller, err := h.store.GetSellerByEmail(req.Email)
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NewAuth("Seller does not exist")
	}
	if err != nil {
		return apperrors.NewDatabase(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(seller.Password), []byte(req.Password)) != nil {
		return apperrors.NewAuth("Invalid email or password")
	}

	h.clearAuthCookies(c, token.RoleUser)
	if err := h.setAuthCookies(c, seller.SellerID, token.RoleSeller); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful!",
		"user": fiber.Map{
			"id":    seller.SellerID,
			"email": seller.Email,
			"name":  seller.Name,
		},
	})
}

// ForgotPasswordSeller runs the OTP issue path with the seller template.
func (h *AuthHandler) ForgotPasswordSeller(c *fiber.Ctx) error {
	return h.handleForgotPassword(c, token.RoleSeller)
}

// GetLoggedInSeller returns the account resolved by the auth middleware.
func (h *AuthHandler) GetLoggedInSeller(c *fiber.Ctx) error {
	seller, ok := c.Locals("seller").(*models.Seller)
	if !ok {
		return apperrors.NewAuth("Account not found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"seller":  seller,
	})
}

// CreateShop creates the seller's storefront profile. Exactly one shop per
// seller; the storage layer enforces the unique seller id.
func (h *AuthHandler) CreateShop(c *fiber.Ctx) error {
	var req models.ShopRegistration
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidation("Invalid request body")
	}

	if req.Name == "" || req.Bio == "" || req.Category == "" || req.Address == "" ||
		req.OpeningHours == "" || req.SellerID == "" {
		return apperrors.NewValidation("All fields are mandate")
	}

	if _, err := h.store.GetSellerByID(req.SellerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NewValidation("Seller does not exist")
		}
		return apperrors.NewDatabase(err)
	}

	shop, err := h.store.CreateShop(&models.Shop{
		SellerID:     req.SellerID,
		Name:         req.Name,
		Bio:          req.Bio,
		Category:     req.Category,
		Address:      req.Address,
		OpeningHours: req.OpeningHours,
		Website:      req.Website,
		SocialLinks:  req.SocialLinks,
		CoverBanner:  req.CoverBanner,
	})
	if err != nil {
		return apperrors.NewDatabase(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"shop":    shop,
	})
}

// CreateStripeLink creates (or reuses) the seller's Stripe connected account
// and returns the onboarding URL. Everything beyond persisting the account id
// is delegated to the payment provider.
func (h *AuthHandler) CreateStripeLink(c *fiber.Ctx) error {
	var req struct {
		SellerID string `json:"sellerId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidation("Invalid request body")
	}

	if req.SellerID == "" {
		return apperrors.NewValidation("Seller ID is required")
	}

	seller, err := h.store.GetSellerByID(req.SellerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NewValidation("Seller does not exist")
		}
		return apperrors.NewDatabase(err)
	}

	accountID, url, err := h.payments.CreateOnboardingLink(seller.Email, seller.Country, seller.StripeID)
	if err != nil {
		return err
	}

	if accountID != seller.StripeID {
		if err := h.store.UpdateSellerStripeID(seller.SellerID, accountID); err != nil {
			return apperrors.NewDatabase(err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"url":     url,
	})
}
