package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpTTL = 10 * time.Minute

// ErrOTPInvalid is returned when a reset code does not match or has expired.
var ErrOTPInvalid = errors.New("reset code invalid or expired")

// OTPStore issues and verifies one-time password-reset codes in Redis.
type OTPStore struct {
	client *redis.Client
}

// NewOTPStore constructs an OTPStore.
func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

// Issue generates a 6-digit code for the email and stores it with a TTL.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.client.Set(ctx, s.key(email), code, otpTTL).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks the code and consumes it on success.
func (s *OTPStore) Verify(ctx context.Context, email, code string) error {
	stored, err := s.client.Get(ctx, s.key(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrOTPInvalid
		}
		return err
	}
	if stored != code {
		return ErrOTPInvalid
	}
	return s.client.Del(ctx, s.key(email)).Err()
}

func (s *OTPStore) key(email string) string {
	return "otp:reset:" + email
}
