package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/eshop/backend/internal/apperrors"
	"github.com/eshop/backend/internal/storage"
	"github.com/eshop/backend/internal/token"
)

// Authenticated resolves the calling account from either role's access cookie
// (or a bearer header) and stores it in the request locals.
func Authenticated(store storage.Store, tokens *token.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(token.UserAccessCookie)
		if tokenString == "" {
			tokenString = c.Cookies(token.SellerAccessCookie)
		}
		if tokenString == "" {
			if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
				tokenString = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if tokenString == "" {
			return apperrors.NewAuth("Unauthorized! Token is missing")
		}

		claims, err := tokens.VerifyAccessToken(tokenString)
		if err != nil {
			return apperrors.NewAuth("Unauthorized! Token is invalid")
		}

		switch claims.Role {
		case token.RoleUser:
			user, err := store.GetUserByID(claims.ID)
			if err != nil {
				return apperrors.NewAuth("Account not found")
			}
			c.Locals("user", user)
		case token.RoleSeller:
			seller, err := store.GetSellerByID(claims.ID)
			if err != nil {
				return apperrors.NewAuth("Account not found")
			}
			c.Locals("seller", seller)
		default:
			return apperrors.NewAuth("Unauthorized! Token is invalid")
		}

		c.Locals("role", claims.Role)
		return c.Next()
	}
}

// RequireUser rejects requests whose token does not carry the user role.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals("role").(token.Role); role != token.RoleUser {
			return apperrors.NewAuth("Access denied: User only")
		}
		return c.Next()
	}
}

// RequireSeller rejects requests whose token does not carry the seller role.
func RequireSeller() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals("role").(token.Role); role != token.RoleSeller {
			return apperrors.NewAuth("Access denied: Seller only")
		}
		return c.Next()
	}
}
