package ports

import (
	"context"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

// UserRepository defines persistence for identities and their point balances.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByHandle(ctx context.Context, handle string) (*domain.User, error)
	// EnsureAdmin provisions the admin profile on first use. Subsequent
	// calls with the same handle return the existing profile unchanged
	// (no duplicate is ever created).
	EnsureAdmin(ctx context.Context, user *domain.User) (*domain.User, error)
	// DebitPoints atomically decrements the balance of a non-admin user
	// if and only if it holds at least amount. Returns
	// domain.ErrInsufficientPoints when the guard fails and
	// domain.ErrUserNotFound when no such user exists.
	DebitPoints(ctx context.Context, id string, amount domain.Points) (*domain.User, error)
	// CreditPoints atomically increments the balance by amount.
	CreditPoints(ctx context.Context, id string, amount domain.Points) (*domain.User, error)
	SetBanned(ctx context.Context, id string, banned bool) error
	List(ctx context.Context) ([]*domain.User, error)
}
