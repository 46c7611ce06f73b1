package ports

import (
	"context"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

// ModerationService drains the admin review queues. Every method requires an
// admin identity; non-admin callers receive domain.ErrForbidden.
type ModerationService interface {
	PendingDesigns(ctx context.Context, admin *domain.User) ([]domain.Design, error)
	// ApproveDesign flips a pending design to approved and credits the
	// uploader a fixed half-point bonus. A design without an uploader
	// reference is approved without crediting.
	ApproveDesign(ctx context.Context, admin *domain.User, designID string) error
	// RejectDesign removes a pending design without crediting anyone.
	RejectDesign(ctx context.Context, admin *domain.User, designID string) error

	PendingRequests(ctx context.Context, admin *domain.User) ([]domain.DeleteRequest, error)
	// ApproveDeleteRequest removes both the referenced design and the
	// request. The two deletes are issued sequentially; a partial outcome
	// surfaces as domain.ErrPartialModeration.
	ApproveDeleteRequest(ctx context.Context, admin *domain.User, requestID string) error
	// RejectDeleteRequest removes only the request.
	RejectDeleteRequest(ctx context.Context, admin *domain.User, requestID string) error
}
