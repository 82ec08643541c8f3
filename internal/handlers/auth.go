package handlers

import (
	"errors"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/eshop/backend/internal/apperrors"
	"github.com/eshop/backend/internal/models"
	"github.com/eshop/backend/internal/otp"
	"github.com/eshop/backend/internal/payments"
	"github.com/eshop/backend/internal/ratelimit"
	"github.com/eshop/backend/internal/storage"
	"github.com/eshop/backend/internal/token"
)

const bcryptCost = 10

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthHandler sequences the ledger, OTP service, token service, and store
// into the public registration/login/reset flows for both account kinds.
type AuthHandler struct {
	store    storage.Store
	otp      *otp.Service
	ledger   *ratelimit.Ledger
	tokens   *token.Service
	payments payments.Provider
	logger   *logrus.Logger
}

func NewAuthHandler(
	store storage.Store,
	otpService *otp.Service,
	ledger *ratelimit.Ledger,
	tokens *token.Service,
	paymentProvider payments.Provider,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		store:    store,
		otp:      otpService,
		ledger:   ledger,
		tokens:   tokens,
		payments: paymentProvider,
		logger:   logger,
	}
}

// RegisterUser starts user registration: validation, rate-limit checks, and
// an OTP email. No account row is created until the OTP is verified.
func (h *AuthHandler) RegisterUser(c *fiber.Ctx) error {
	var req models.UserRegistration
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidation("Invalid request body")
	}

	if err := validateRegistration(req.Name, req.Email, req.Password, "", "", token.RoleUser); err != nil {
		return err
	}

	if _, err := h.store.GetUserByEmail(req.Email); err == nil {
		return apperrors.NewValidation("User with this email already exists")
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
	if err := h.otp.Issue(ctx, req.Email, req.Name, "user-activation-email"); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "OTP sent to email. Please verify your account",
	})
}

// VerifyUser checks the OTP and materializes the user account.
func (h *AuthHandler) VerifyUser(c *fiber.Ctx) error {
	var req models.UserRegistration
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidation("Invalid request body")
	}

	if req.Email == "" || req.OTP == "" || req.Password == "" || req.Name == "" {
		return apperrors.NewValidation("All fields are mandate")
	}

	// Duplicate verify calls can race; the second one fails here.
	if _, err := h.store.GetUserByEmail(req.Email); err == nil {
		return apperrors.NewValidation("User with this email already exists")
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

	if _, err := h.store.CreateUser(&models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
	}); err != nil {
		return apperrors.NewDatabase(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User successfully registered",
	})
}

// LoginUser authenticates a user, clears any seller cookies, and sets the
// user token pair.
func (h *AuthHandler) LoginUser(c *fiber.Ctx) error {
	var req models.UserRegistration
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidation("Invalid request body")
	}

	user, err := h.store.GetUserByEmail(req.Email)
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NewAuth("User does not exist")
	}
	if err != nil {
		return apperrors.NewDatabase(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return apperrors.NewAuth("Invalid email or password")
	}

	h.clearAuthCookies(c, token.RoleSeller)
	if err := h.setAuthCookies(c, user.UserID, token.RoleUser); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful!",
		"user": fiber.Map{
			"id":    user.UserID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

// ForgotPasswordUser runs the OTP issue path for password recovery.
func (h *AuthHandler) ForgotPasswordUser(c *fiber.Ctx) error {
	return h.handleForgotPassword(c, token.RoleUser)
}

// VerifyForgotPasswordUser verifies a reset OTP without mutating the account.
func (h *AuthHandler) VerifyForgotPasswordUser(c *fiber.Ctx) error {
	var req models.UserRegistration
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidation("Invalid request body")
	}

	if req.Email == "" || req.OTP == "" {
		return apperrors.NewValidation("All fields are mandate")
	}

	if err := h.otp.Verify(c.Context(), req.Email, req.OTP); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP verified. Please reset your password now",
	})
}

// ResetPasswordUser persists a new password after the reset OTP was verified.
// Reusing the current password is rejected.
func (h *AuthHandler) ResetPasswordUser(c *fiber.Ctx) error {
	var req models.UserRegistration
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidation("Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidation("All fields are mandate")
	}

	user, err := h.store.GetUserByEmail(req.Email)
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NewAuth("User does not exist")
	}
	if err != nil {
		return apperrors.NewDatabase(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) == nil {
		return apperrors.NewValidation("New password cannot be same as old password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return err
	}
	if err := h.store.UpdateUserPassword(req.Email, string(hash)); err != nil {
		return apperrors.NewDatabase(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User password updated!",
	})
}

// RefreshToken rotates the access/refresh pair for whichever role's refresh
// cookie is present. Rotation for one role never touches the other role's
// cookies.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies(token.UserRefreshCookie)
	if refreshToken == "" {
		refreshToken = c.Cookies(token.SellerRefreshCookie)
	}
	if refreshToken == "" {
		return apperrors.NewAuth("Unauthorized! Token is missing")
	}

	claims, err := h.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return apperrors.NewForbidden("Forbidden! Invalid refresh token")
	}
	if claims.ID == "" || claims.Role == "" {
		return apperrors.NewForbidden("Forbidden! Invalid refresh token payload")
	}

	switch claims.Role {
	case token.RoleUser:
		if _, err := h.store.GetUserByID(claims.ID); err != nil {
			return apperrors.NewForbidden("Forbidden! Account not found")
		}
	case token.RoleSeller:
		if _, err := h.store.GetSellerByID(claims.ID); err != nil {
			return apperrors.NewForbidden("Forbidden! Account not found")
		}
	default:
		return apperrors.NewForbidden("Forbidden! Unknown role")
	}

	if err := h.setAuthCookies(c, claims.ID, claims.Role); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
	})
}

// GetLoggedInUser returns the account resolved by the auth middleware.
func (h *AuthHandler) GetLoggedInUser(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return apperrors.NewAuth("Account not found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// handleForgotPassword is the shared recovery path. Every rejection
// short-circuits; nothing continues past a failed step.
func (h *AuthHandler) handleForgotPassword(c *fiber.Ctx, role token.Role) error {
	var req models.UserRegistration
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidation("Invalid request body")
	}

	if req.Email == "" {
		return apperrors.NewValidation("All fields are mandate")
	}

	var name, template string
	if role == token.RoleSeller {
		seller, err := h.store.GetSellerByEmail(req.Email)
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NewAuth("Seller does not exist")
		}
		if err != nil {
			return apperrors.NewDatabase(err)
		}
		name, template = seller.Name, "forgot-password-seller-mail"
	} else {
		user, err := h.store.GetUserByEmail(req.Email)
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NewAuth("User does not exist")
		}
		if err != nil {
			return apperrors.NewDatabase(err)
		}
		name, template = user.Name, "forgot-password-user-mail"
	}

	ctx := c.Context()
	if err := h.ledger.CheckRestriction(ctx, req.Email); err != nil {
		return err
	}
	if err := h.ledger.Track(ctx, req.Email); err != nil {
		return err
	}
	if err := h.otp.Issue(ctx, req.Email, name, template); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP sent to email. Please verify your account",
	})
}

// setAuthCookies issues and writes a fresh token pair under the role's cookie
// names.
func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accountID string, role token.Role) error {
	accessToken, err := h.tokens.IssueAccessToken(accountID, role)
	if err != nil {
		return err
	}
	refreshToken, err := h.tokens.IssueRefreshToken(accountID, role)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     token.AccessCookieName(role),
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(h.tokens.AccessExpiry().Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteNoneMode,
		Secure:   true,
	})
	c.Cookie(&fiber.Cookie{
		Name:     token.RefreshCookieName(role),
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(h.tokens.RefreshExpiry().Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteNoneMode,
		Secure:   true,
	})
	return nil
}

// clearAuthCookies expires the role's cookie pair. Cross-role exclusivity:
// logging in as one role calls this for the other.
func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx, role token.Role) {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(&fiber.Cookie{
		Name:     token.AccessCookieName(role),
		Value:    "",
		Path:     "/",
		Expires:  expired,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteNoneMode,
		Secure:   true,
	})
	c.Cookie(&fiber.Cookie{
		Name:     token.RefreshCookieName(role),
		Value:    "",
		Path:     "/",
		Expires:  expired,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteNoneMode,
		Secure:   true,
	})
}

// validateRegistration enforces the required fields per account kind.
func validateRegistration(name, email, password, phoneNumber, country string, role token.Role) error {
	if name == "" || email == "" || password == "" ||
		(role == token.RoleSeller && (phoneNumber == "" || country == "")) {
		return apperrors.NewValidation("Missing required fields for registration")
	}
	if !emailRegex.MatchString(email) {
		return apperrors.NewValidation("Invalid email format")
	}
	return nil
}
