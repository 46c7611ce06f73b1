package ports

import (
	"context"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

// DesignRepository defines persistence operations for catalog entries.
// Implementations normalize an absent moderation status to approved at the
// read boundary, so callers never see a zero-value status.
type DesignRepository interface {
	Create(ctx context.Context, d *domain.Design) (*domain.Design, error)
	FindByID(ctx context.Context, id string) (*domain.Design, error)
	// List returns the full catalog ordered by creation time, newest first.
	List(ctx context.Context) ([]domain.Design, error)
	// ListPending returns the moderation review queue, newest first.
	ListPending(ctx context.Context) ([]domain.Design, error)
	// SetStatus applies a moderation transition. The update is conditional
	// on the document still holding the from status; a miss on an existing
	// document reports domain.ErrInvalidTransition.
	SetStatus(ctx context.Context, id string, from, to domain.DesignStatus) error
	Delete(ctx context.Context, id string) error
}

// DeleteRequestRepository defines persistence for pending moderation tickets.
type DeleteRequestRepository interface {
	Create(ctx context.Context, r *domain.DeleteRequest) (*domain.DeleteRequest, error)
	FindByID(ctx context.Context, id string) (*domain.DeleteRequest, error)
	List(ctx context.Context) ([]domain.DeleteRequest, error)
	Delete(ctx context.Context, id string) error
}
