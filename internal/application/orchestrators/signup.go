package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/coach"
)

// Registrar creates self-service coach accounts.
type Registrar interface {
	Signup(ctx context.Context, form coach.CreateForm) (coach.Coach, error)
}

// SignupInput carries input for the signup orchestrator.
type SignupInput struct {
	Form            coach.CreateForm
	ConfirmPassword string
}

// SignupDeps holds dependencies for Signup.
type SignupDeps struct {
	Registrar Registrar
}

// ErrSignupPasswordMismatch is returned when the confirmation differs.
var ErrSignupPasswordMismatch = errors.New("passwords do not match")

// ExecuteSignup validates the form locally and registers the account.
// PRE: none
// POST: the account exists on the API; the caller still has to log in
func ExecuteSignup(ctx context.Context, input SignupInput, deps SignupDeps) (coach.Coach, error) {
	form := input.Form
	if form.Password != input.ConfirmPassword {
		return coach.Coach{}, ErrSignupPasswordMismatch
	}
	if err := form.Validate(); err != nil {
		return coach.Coach{}, err
	}
	c, err := deps.Registrar.Signup(ctx, form)
	if err != nil {
		slog.Info("auth_event", "event", "signup_failed", "username", form.Username, "error", err)
		return coach.Coach{}, err
	}
	slog.Info("auth_event", "event", "signup", "username", form.Username)
	return c, nil
}
