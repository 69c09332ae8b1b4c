package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/petroflow/petroflow/internal/shared"
)

// Mailer enqueues outbound transactional mail.
type Mailer interface {
	SendMail(ctx context.Context, to, subject, body string) error
}

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	otp    *OTPStore
	mailer Mailer
}

// NewService constructs a new Service.
func NewService(repo Repository, otp *OTPStore, mailer Mailer) *Service {
	return &Service{repo: repo, otp: otp, mailer: mailer}
}

// SignUp registers a new account.
func (s *Service) SignUp(ctx context.Context, email, name, password string) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.CreateAccount(ctx, email, name, string(hash))
}

// Current loads the account behind an authenticated session.
func (s *Service) Current(ctx context.Context, accountID int64) (*Account, error) {
	return s.repo.FindByID(ctx, accountID)
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return account, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, accountID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, accountID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// StartPasswordReset issues an OTP code and mails it to the account owner.
// Unknown emails are ignored so the endpoint cannot be used to probe accounts.
func (s *Service) StartPasswordReset(ctx context.Context, email string) error {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil
	}
	code, err := s.otp.Issue(ctx, account.Email)
	if err != nil {
		return fmt.Errorf("issue reset code: %w", err)
	}
	body := fmt.Sprintf("Your Petroflow password reset code is %s. It expires in 10 minutes.", code)
	if err := s.mailer.SendMail(ctx, account.Email, "Password reset", body); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

// CompletePasswordReset verifies the OTP code and sets the new password.
func (s *Service) CompletePasswordReset(ctx context.Context, email, code, newPassword string) error {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return ErrOTPInvalid
	}
	if err := s.otp.Verify(ctx, account.Email, code); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, account.ID, string(hash))
}

// ListAccountIDs enumerates active accounts for background jobs.
func (s *Service) ListAccountIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ListAccountIDs(ctx)
}

// CleanupExpiredSessions removes session rows past their expiry.
func (s *Service) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx, time.Now())
}
