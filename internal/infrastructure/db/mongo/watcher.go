package mongo

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
	"github.com/jerseyhub/gallery-system/internal/core/ports"
)

// SnapshotSink receives the full catalog every time the design collection
// changes. Deliveries are authoritative replacements, not deltas.
type SnapshotSink interface {
	ReplaceSnapshot(items []domain.Design)
}

// CatalogWatcher follows the design collection's change stream and pushes a
// fresh full snapshot to every sink on each change. Consumers never apply
// partial updates, so a dropped event costs nothing once the next one lands.
type CatalogWatcher struct {
	designs ports.DesignRepository
	coll    *mongo.Collection
	sinks   []SnapshotSink
	backoff time.Duration
	watchFn func(ctx context.Context) error
	log     zerolog.Logger
}

func NewCatalogWatcher(designs ports.DesignRepository, db *mongo.Database, log zerolog.Logger, sinks ...SnapshotSink) *CatalogWatcher {
	w := &CatalogWatcher{
		designs: designs,
		coll:    db.Collection(designCollection),
		sinks:   sinks,
		backoff: 2 * time.Second,
		log:     log.With().Str("component", "catalog_watcher").Logger(),
	}
	w.watchFn = w.watch
	return w
}

// Run blocks until ctx is cancelled. It pushes an initial snapshot before
// watching so sinks are warm even if the stream never fires.
func (w *CatalogWatcher) Run(ctx context.Context) {
	if err := w.push(ctx); err != nil {
		w.log.Error().Err(err).Msg("initial catalog snapshot failed")
	}

	for {
		if err := w.watchFn(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Warn().Err(err).Dur("backoff", w.backoff).Msg("change stream lost, reconnecting")
			// No stream means no events. Re-query so writes stay visible;
			// on deployments without change streams (standalone mongod)
			// this degrades into plain polling at the backoff cadence.
			if err := w.push(ctx); err != nil && ctx.Err() == nil {
				w.log.Error().Err(err).Msg("catalog snapshot refresh failed")
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.backoff):
		}
	}
}

func (w *CatalogWatcher) watch(ctx context.Context) error {
	stream, err := w.coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return err
	}
	defer stream.Close(ctx)

	w.log.Info().Msg("watching design collection")

	// Attaching emits no event, so writes made while the stream was down
	// are resynced here.
	if err := w.push(ctx); err != nil {
		w.log.Error().Err(err).Msg("catalog snapshot refresh failed")
	}

	for stream.Next(ctx) {
		var change bson.M
		if err := stream.Decode(&change); err != nil {
			w.log.Warn().Err(err).Msg("undecodable change event")
			continue
		}
		if err := w.push(ctx); err != nil {
			w.log.Error().Err(err).Msg("catalog snapshot refresh failed")
		}
	}
	return stream.Err()
}

func (w *CatalogWatcher) push(ctx context.Context) error {
	items, err := w.designs.List(ctx)
	if err != nil {
		return err
	}
	for _, sink := range w.sinks {
		sink.ReplaceSnapshot(items)
	}
	w.log.Debug().Int("items", len(items)).Msg("catalog snapshot delivered")
	return nil
}
