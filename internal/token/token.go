package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eshop/backend/internal/config"
)

// Role tags the two disjoint identity spaces sharing this auth machinery.
type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
)

// Cookie names per role. Logging in as one role clears the other role's pair.
const (
	UserAccessCookie    = "access_token"
	UserRefreshCookie   = "refresh_token"
	SellerAccessCookie  = "seller_access_token"
	SellerRefreshCookie = "seller_refresh_token"
)

// AccessCookieName returns the access-token cookie name for the role.
func AccessCookieName(role Role) string {
	if role == RoleSeller {
		return SellerAccessCookie
	}
	return UserAccessCookie
}

// RefreshCookieName returns the refresh-token cookie name for the role.
func RefreshCookieName(role Role) string {
	if role == RoleSeller {
		return SellerRefreshCookie
	}
	return UserRefreshCookie
}

// Claims carried by both access and refresh tokens.
type Claims struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies the access/refresh token pair. Access and
// refresh tokens use independent secrets; both are role-agnostic.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewService(cfg *config.JWTConfig) (*Service, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("token secrets must not be empty")
	}

	return &Service{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessExpiry:  cfg.AccessExpiry,
		refreshExpiry: cfg.RefreshExpiry,
	}, nil
}

// AccessExpiry reports the access-token lifetime, used for cookie MaxAge.
func (s *Service) AccessExpiry() time.Duration { return s.accessExpiry }

// RefreshExpiry reports the refresh-token lifetime, used for cookie MaxAge.
func (s *Service) RefreshExpiry() time.Duration { return s.refreshExpiry }

// IssueAccessToken signs a 15-minute access token for the account.
func (s *Service) IssueAccessToken(accountID string, role Role) (string, error) {
	return s.sign(accountID, role, s.accessSecret, s.accessExpiry)
}

// IssueRefreshToken signs a 7-day refresh token for the account.
func (s *Service) IssueRefreshToken(accountID string, role Role) (string, error) {
	return s.sign(accountID, role, s.refreshSecret, s.refreshExpiry)
}

// VerifyAccessToken parses and validates an access token.
func (s *Service) VerifyAccessToken(tokenString string) (*Claims, error) {
	return s.verify(tokenString, s.accessSecret)
}

// VerifyRefreshToken parses and validates a refresh token.
func (s *Service) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return s.verify(tokenString, s.refreshSecret)
}

func (s *Service) sign(accountID string, role Role, secret []byte, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		ID:   accountID,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) verify(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
