package ports

import (
	"context"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

// AdminService backs the admin console's user directory. All methods require
// an admin identity.
type AdminService interface {
	Users(ctx context.Context, admin *domain.User) ([]*domain.User, error)
	// SetBanned toggles the ban flag. An active ban ends the target's
	// session on their next request; the single admin profile cannot ban
	// itself.
	SetBanned(ctx context.Context, admin *domain.User, userID string, banned bool) error
}
