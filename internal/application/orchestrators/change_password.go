package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/coach"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/validation"
)

// PasswordChanger changes the current user's password.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, token, oldPassword, newPassword string) (string, error)
}

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	Token           string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	Passwords PasswordChanger
}

var (
	ErrPasswordMismatch = errors.New("new password and confirmation do not match")
	ErrPasswordTooShort = errors.New("new password must be at least 6 characters")
)

// ExecuteChangePassword checks the confirmation locally, then asks the API to change the password.
// PRE: Token belongs to an authenticated session
// POST: returns the API's confirmation message; no call is made when local checks fail
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) (string, error) {
	if input.CurrentPassword == "" || input.NewPassword == "" {
		return "", validation.Errorf("Current and new password are required")
	}
	if input.NewPassword != input.ConfirmPassword {
		return "", ErrPasswordMismatch
	}
	if len(input.NewPassword) < coach.MinPasswordLength {
		return "", ErrPasswordTooShort
	}

	detail, err := deps.Passwords.ChangePassword(ctx, input.Token, input.CurrentPassword, input.NewPassword)
	if err != nil {
		slog.Info("auth_event", "event", "password_change_failed", "error", err)
		return "", err
	}
	if detail == "" {
		detail = "Password changed."
	}
	slog.Info("auth_event", "event", "password_changed")
	return detail, nil
}
