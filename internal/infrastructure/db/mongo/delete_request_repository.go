package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

const requestCollection = "delete_requests"

type MongoDeleteRequestRepository struct {
	coll *mongo.Collection
}

func NewDeleteRequestRepository(db *mongo.Database) *MongoDeleteRequestRepository {
	return &MongoDeleteRequestRepository{coll: db.Collection(requestCollection)}
}

type mongoDeleteRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	DesignID    string             `bson:"design_id"`
	DesignTitle string             `bson:"design_title"`
	RequestedBy string             `bson:"requested_by"`
	Reason      string             `bson:"reason"`
	CreatedAt   int64              `bson:"created_at"`
}

func (mr mongoDeleteRequest) toDomain() domain.DeleteRequest {
	return domain.DeleteRequest{
		ID:          mr.ID.Hex(),
		DesignID:    mr.DesignID,
		DesignTitle: mr.DesignTitle,
		RequestedBy: mr.RequestedBy,
		Reason:      mr.Reason,
		CreatedAt:   unixToTime(mr.CreatedAt),
	}
}

func (r *MongoDeleteRequestRepository) Create(ctx context.Context, req *domain.DeleteRequest) (*domain.DeleteRequest, error) {
	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	doc := mongoDeleteRequest{
		DesignID:    req.DesignID,
		DesignTitle: req.DesignTitle,
		RequestedBy: req.RequestedBy,
		Reason:      req.Reason,
		CreatedAt:   createdAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert delete request: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert delete request: unexpected id type %T", res.InsertedID)
	}

	created := *req
	created.ID = oid.Hex()
	created.CreatedAt = createdAt
	return &created, nil
}

func (r *MongoDeleteRequestRepository) FindByID(ctx context.Context, id string) (*domain.DeleteRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRequestNotFound
	}

	var mr mongoDeleteRequest
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("find delete request: %w", err)
	}
	req := mr.toDomain()
	return &req, nil
}

func (r *MongoDeleteRequestRepository) List(ctx context.Context) ([]domain.DeleteRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list delete requests: %w", err)
	}
	defer cur.Close(ctx)

	var requests []domain.DeleteRequest
	for cur.Next(ctx) {
		var mr mongoDeleteRequest
		if err := cur.Decode(&mr); err != nil {
			return nil, fmt.Errorf("decode delete request: %w", err)
		}
		requests = append(requests, mr.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate delete requests: %w", err)
	}
	return requests, nil
}

func (r *MongoDeleteRequestRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrRequestNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}
