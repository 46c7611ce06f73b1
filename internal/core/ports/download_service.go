package ports

import (
	"context"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

// DownloadResult is returned once a source link has been revealed.
type DownloadResult struct {
	DesignID   string
	SourceLink string
	// Remaining is the balance after the debit; for admins it is the
	// untouched balance.
	Remaining domain.Points
}

// DownloadService is the effectful wrapper around the access policy: it
// debits the balance and reveals the source link as one user-visible
// transaction. A failed debit reveals nothing.
type DownloadService interface {
	// Download serves an authenticated download. user must be non-nil.
	Download(ctx context.Context, user *domain.User, designID string) (*DownloadResult, error)
	// Defer captures a guest's download attempt for replay after login
	// and returns domain.ErrLoginRequired.
	Defer(guestSession, designID string) error
}

// DownloadLocker guards against re-entrant triggering of the same download:
// at most one debit per (user, design) may be in flight at a time.
type DownloadLocker interface {
	Acquire(ctx context.Context, userID, designID string) (bool, error)
	Release(ctx context.Context, userID, designID string)
}

// PointsService is the ledger view over user balances.
type PointsService interface {
	// Debit removes amount from a non-admin balance, failing with
	// domain.ErrInsufficientPoints when the balance would go negative.
	Debit(ctx context.Context, userID string, amount domain.Points) (*domain.User, error)
	// Credit adds a non-negative amount to a balance.
	Credit(ctx context.Context, userID string, amount domain.Points) (*domain.User, error)
	// Recharge parses an operator-entered amount, validates it, and
	// credits it. Non-parseable or negative input is rejected with
	// domain.ErrInvalidAmount.
	Recharge(ctx context.Context, admin *domain.User, userID, amount string) (*domain.User, error)
}
