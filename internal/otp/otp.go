package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/eshop/backend/internal/apperrors"
	"github.com/eshop/backend/internal/email"
	"github.com/eshop/backend/internal/ratelimit"
)

const (
	codeTTL      = 5 * time.Minute
	emailSubject = "Verify your email"

	// maxFailures is the number of wrong guesses tolerated before the
	// 30-minute lock; the guess after that locks the email.
	maxFailures = 2
)

// Service generates, stores, and checks one-time codes. Codes live in Redis
// under otp:<email>; a new issue overwrites the previous code (last write
// wins), so at most one code is live per email.
type Service struct {
	redis  *redis.Client
	ledger *ratelimit.Ledger
	sender email.Sender
	logger *logrus.Logger
}

func NewService(redisClient *redis.Client, ledger *ratelimit.Ledger, sender email.Sender, logger *logrus.Logger) *Service {
	return &Service{
		redis:  redisClient,
		ledger: ledger,
		sender: sender,
		logger: logger,
	}
}

// Issue generates a 4-digit code, dispatches it via email, stores it with a
// 5-minute TTL, and starts the resend cooldown. A failed email send is logged
// and swallowed so the flow proceeds as if the code was delivered.
func (s *Service) Issue(ctx context.Context, userEmail, name, templateName string) error {
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	if err := s.sender.Send(userEmail, emailSubject, templateName, map[string]interface{}{
		"Name": name,
		"OTP":  code,
	}); err != nil {
		// Delivery failure is not surfaced to the caller.
		s.logger.WithError(err).WithField("email", userEmail).Error("OTP email dispatch failed")
	}

	if err := s.redis.Set(ctx, codeKey(userEmail), code, codeTTL).Err(); err != nil {
		return apperrors.NewDatabase(err)
	}

	return s.ledger.StartCooldown(ctx, userEmail)
}

// Verify compares the candidate against the stored code. Wrong guesses feed
// the ledger's failed-attempt counter; the third wrong guess locks the email
// for 30 minutes and invalidates the stored code. A match deletes both the
// code and the counter.
func (s *Service) Verify(ctx context.Context, userEmail, candidate string) error {
	stored, err := s.redis.Get(ctx, codeKey(userEmail)).Result()
	if err == redis.Nil {
		return apperrors.NewValidation("Invalid or expired OTP")
	}
	if err != nil {
		return apperrors.NewDatabase(err)
	}

	if stored != candidate {
		attempts, err := s.ledger.FailedAttempts(ctx, userEmail)
		if err != nil {
			return err
		}

		if attempts >= maxFailures {
			if err := s.ledger.Lock(ctx, userEmail); err != nil {
				return err
			}
			if err := s.redis.Del(ctx, codeKey(userEmail)).Err(); err != nil {
				return apperrors.NewDatabase(err)
			}
			return apperrors.NewValidation("Too many failed attempts. Try again after 30 minutes")
		}

		if err := s.ledger.RecordFailedAttempt(ctx, userEmail, attempts+1); err != nil {
			return err
		}
		remaining := maxFailures - attempts
		return apperrors.NewValidation(
			fmt.Sprintf("Invalid OTP. %d attempts left", remaining),
			map[string]int{"attempts_left": remaining},
		)
	}

	if err := s.redis.Del(ctx, codeKey(userEmail)).Err(); err != nil {
		return apperrors.NewDatabase(err)
	}
	return s.ledger.ClearAttempts(ctx, userEmail)
}

// generateCode returns a cryptographically random 4-digit code in [1000,9999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}

func codeKey(email string) string {
	return "otp:" + email
}
