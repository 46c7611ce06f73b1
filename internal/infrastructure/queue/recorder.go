package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
	"github.com/jerseyhub/gallery-system/internal/core/ports"
)

// Recorder persists an activity event to the audit trail and fans it out to
// the broker. Persistence is authoritative; a failed broker publish is logged
// and dropped since consumers only mirror the trail.
type Recorder struct {
	audit     ports.AuditRepository
	publisher ports.ActivityPublisher
	log       zerolog.Logger
}

func NewRecorder(audit ports.AuditRepository, publisher ports.ActivityPublisher, log zerolog.Logger) *Recorder {
	return &Recorder{audit: audit, publisher: publisher, log: log}
}

func (r *Recorder) Record(ctx context.Context, event domain.ActivityEvent) error {
	if err := r.audit.Insert(ctx, event); err != nil {
		return err
	}
	if r.publisher == nil {
		return nil
	}
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.log.Warn().Err(err).
			Str("actor", event.Actor).
			Str("action", event.Action).
			Msg("activity fan-out failed")
	}
	return nil
}
