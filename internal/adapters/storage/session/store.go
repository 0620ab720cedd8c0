package session

import (
	"context"
	"time"

	domain "github.com/HazemIbrahim256/sports-academy/internal/domain/session"
)

// Store persists sessions.
type Store interface {
	Create(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, id string) (domain.Session, error)
	UpdateTokens(ctx context.Context, id, access, refresh string) error
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
