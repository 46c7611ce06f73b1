package ports

import (
	"context"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

// ActivityRecorder persists one audit event and fans it out to the broker.
type ActivityRecorder interface {
	Record(ctx context.Context, event domain.ActivityEvent) error
}

// ActivityPublisher pushes audit events to the message broker.
type ActivityPublisher interface {
	Publish(ctx context.Context, event domain.ActivityEvent) error
}

// AuditRepository persists audit events to the document store.
type AuditRepository interface {
	Insert(ctx context.Context, event domain.ActivityEvent) error
}

// ActivitySink accepts events for asynchronous recording. Implementations
// must preserve per-actor ordering.
type ActivitySink interface {
	Enqueue(event domain.ActivityEvent)
}
