package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

const auditCollection = "activity_log"

// MongoAuditRepository appends activity events to a write-only audit trail.
type MongoAuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *MongoAuditRepository {
	return &MongoAuditRepository{coll: db.Collection(auditCollection)}
}

type mongoActivity struct {
	Actor     string `bson:"actor"`
	Action    string `bson:"action"`
	Subject   string `bson:"subject"`
	Detail    string `bson:"detail,omitempty"`
	Timestamp int64  `bson:"timestamp"`
}

func (r *MongoAuditRepository) Insert(ctx context.Context, event domain.ActivityEvent) error {
	doc := mongoActivity{
		Actor:     event.Actor,
		Action:    event.Action,
		Subject:   event.Subject,
		Detail:    event.Detail,
		Timestamp: event.Timestamp.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity event: %w", err)
	}
	return nil
}
