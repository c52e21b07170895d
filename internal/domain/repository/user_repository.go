package repository

import (
	"context"

	"github.com/videotube/videotube-api/internal/domain/entity"
)

// UserRepository defines the interface for identity persistence. The storage
// layer owns the username/email uniqueness invariants via unique constraints;
// callers may pre-check existence but must treat Create as the real guard.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// GetByIdentifier resolves a login identifier that may be a username
	// (case-folded) or an email (case-sensitive).
	GetByIdentifier(ctx context.Context, identifier string) (*entity.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	// EmailTaken reports whether email belongs to a user other than excludeID.
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// Refresh-token lifecycle. SetRefreshToken overwrites unconditionally
	// (login), ClearRefreshToken is idempotent (logout), SwapRefreshToken is a
	// compare-and-swap that only commits when the stored value still equals
	// old, reporting false otherwise (rotation staleness guard).
	SetRefreshToken(ctx context.Context, id, token string) error
	ClearRefreshToken(ctx context.Context, id string) error
	SwapRefreshToken(ctx context.Context, id, old, new string) (bool, error)
}
