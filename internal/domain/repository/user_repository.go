package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/suraksha-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no live row matches
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique column (email, username) collides
	ErrDuplicate = errors.New("duplicate")
)

// UserRepository defines the interface for user-related database operations.
// Soft-deleted rows are invisible to every lookup.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdateProfile(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateProfileImage(ctx context.Context, id string, image *string) error
	MarkEmailVerified(ctx context.Context, id string, at time.Time) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

// AuditRepository persists account audit events.
type AuditRepository interface {
	Insert(ctx context.Context, log *entity.AuditLog) error
}
