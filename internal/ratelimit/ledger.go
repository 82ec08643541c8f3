package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eshop/backend/internal/apperrors"
)

const (
	lockTTL     = 30 * time.Minute
	spamLockTTL = time.Hour
	cooldownTTL = 10 * time.Minute
	requestTTL  = time.Hour
	attemptsTTL = 5 * time.Minute

	// maxRequests is the number of tracked OTP requests allowed per window;
	// the request after that sets the spam lock.
	maxRequests = 2
)

// Ledger tracks per-email OTP restrictions in Redis. Expiry is handled
// entirely by Redis TTLs; there is no background sweeping.
type Ledger struct {
	redis *redis.Client
}

func NewLedger(redisClient *redis.Client) *Ledger {
	return &Ledger{redis: redisClient}
}

// CheckRestriction fails when the email is locked, spam-blocked, or cooling
// down. It is read-only; no keys are written.
func (l *Ledger) CheckRestriction(ctx context.Context, email string) error {
	locked, err := l.redis.Exists(ctx, lockKey(email)).Result()
	if err != nil {
		return apperrors.NewDatabase(err)
	}
	if locked > 0 {
		return apperrors.NewValidation("Account is locked due to multiple failed OTP attempts. Try again 30 minutes later")
	}

	spamLocked, err := l.redis.Exists(ctx, spamLockKey(email)).Result()
	if err != nil {
		return apperrors.NewDatabase(err)
	}
	if spamLocked > 0 {
		return apperrors.NewValidation("Too many OTP requests. Please wait 1 hour before requesting again")
	}

	coolingDown, err := l.redis.Exists(ctx, cooldownKey(email)).Result()
	if err != nil {
		return apperrors.NewDatabase(err)
	}
	if coolingDown > 0 {
		return apperrors.NewValidation("Please wait 10 minutes before requesting a new OTP")
	}

	return nil
}

// Track counts an OTP request against the hourly window. The request after
// maxRequests sets a one-hour spam lock and is rejected.
func (l *Ledger) Track(ctx context.Context, email string) error {
	count, err := l.redis.Incr(ctx, requestCountKey(email)).Result()
	if err != nil {
		return apperrors.NewDatabase(err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, requestCountKey(email), requestTTL).Err(); err != nil {
			return apperrors.NewDatabase(err)
		}
	}

	if count > maxRequests {
		if err := l.redis.Set(ctx, spamLockKey(email), "locked", spamLockTTL).Err(); err != nil {
			return apperrors.NewDatabase(err)
		}
		return apperrors.NewValidation("Too many OTP requests. Please wait 1 hour before requesting again")
	}

	return nil
}

// StartCooldown blocks resends for the cooldown window. Called by the OTP
// issuer on every successful issue.
func (l *Ledger) StartCooldown(ctx context.Context, email string) error {
	if err := l.redis.Set(ctx, cooldownKey(email), email, cooldownTTL).Err(); err != nil {
		return apperrors.NewDatabase(err)
	}
	return nil
}

// FailedAttempts returns the current failed-verify count for the email.
// A missing key reads as zero.
func (l *Ledger) FailedAttempts(ctx context.Context, email string) (int, error) {
	count, err := l.redis.Get(ctx, attemptsKey(email)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, apperrors.NewDatabase(err)
	}
	return count, nil
}

// RecordFailedAttempt bumps the rolling failed-verify counter. The five-minute
// TTL restarts on every failure.
func (l *Ledger) RecordFailedAttempt(ctx context.Context, email string, attempts int) error {
	if err := l.redis.Set(ctx, attemptsKey(email), attempts, attemptsTTL).Err(); err != nil {
		return apperrors.NewDatabase(err)
	}
	return nil
}

// ClearAttempts removes the failed-verify counter after a successful verify.
func (l *Ledger) ClearAttempts(ctx context.Context, email string) error {
	if err := l.redis.Del(ctx, attemptsKey(email)).Err(); err != nil {
		return apperrors.NewDatabase(err)
	}
	return nil
}

// Lock blocks the email for the lock window after too many failed verifies
// and drops the attempt counter alongside.
func (l *Ledger) Lock(ctx context.Context, email string) error {
	if err := l.redis.Set(ctx, lockKey(email), "locked", lockTTL).Err(); err != nil {
		return apperrors.NewDatabase(err)
	}
	if err := l.redis.Del(ctx, attemptsKey(email)).Err(); err != nil {
		return apperrors.NewDatabase(err)
	}
	return nil
}

func lockKey(email string) string {
	return "otp_lock:" + email
}

func spamLockKey(email string) string {
	return "otp_spam_lock:" + email
}

func cooldownKey(email string) string {
	return "otp_cooldown:" + email
}

func requestCountKey(email string) string {
	return "otp_request_count:" + email
}

func attemptsKey(email string) string {
	return "otp_attempts:" + email
}
