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

const designCollection = "designs"

type MongoDesignRepository struct {
	coll *mongo.Collection
}

func NewDesignRepository(db *mongo.Database) *MongoDesignRepository {
	return &MongoDesignRepository{coll: db.Collection(designCollection)}
}

type mongoDesign struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Title      string             `bson:"title"`
	Tag        string             `bson:"tag"`
	ImageData  string             `bson:"image_data"`
	SourceLink string             `bson:"source_link"`
	UploadedBy string             `bson:"uploaded_by,omitempty"`
	Status     string             `bson:"status,omitempty"`
	CreatedAt  int64              `bson:"created_at"`
}

// toDomain normalizes documents written before moderation existed: an absent
// status reads back as approved.
func (md mongoDesign) toDomain() domain.Design {
	status := domain.DesignStatus(md.Status)
	if status == "" {
		status = domain.StatusApproved
	}
	return domain.Design{
		ID:         md.ID.Hex(),
		Title:      md.Title,
		Tag:        md.Tag,
		ImageData:  md.ImageData,
		SourceLink: md.SourceLink,
		UploadedBy: md.UploadedBy,
		Status:     status,
		CreatedAt:  unixToTime(md.CreatedAt),
	}
}

// EnsureIndexes creates the indexes backing the catalog listing and the
// moderation queue.
func (r *MongoDesignRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create design indexes: %w", err)
	}
	return nil
}

func (r *MongoDesignRepository) Create(ctx context.Context, d *domain.Design) (*domain.Design, error) {
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	doc := mongoDesign{
		Title:      d.Title,
		Tag:        d.Tag,
		ImageData:  d.ImageData,
		SourceLink: d.SourceLink,
		UploadedBy: d.UploadedBy,
		Status:     string(d.Status),
		CreatedAt:  createdAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert design: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert design: unexpected id type %T", res.InsertedID)
	}

	created := *d
	created.ID = oid.Hex()
	created.CreatedAt = createdAt
	return &created, nil
}

func (r *MongoDesignRepository) FindByID(ctx context.Context, id string) (*domain.Design, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrDesignNotFound
	}

	var md mongoDesign
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&md); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDesignNotFound
		}
		return nil, fmt.Errorf("find design: %w", err)
	}
	d := md.toDomain()
	return &d, nil
}

func (r *MongoDesignRepository) List(ctx context.Context) ([]domain.Design, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoDesignRepository) ListPending(ctx context.Context) ([]domain.Design, error) {
	return r.find(ctx, bson.M{"status": string(domain.StatusPending)})
}

func (r *MongoDesignRepository) find(ctx context.Context, filter bson.M) ([]domain.Design, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	defer cur.Close(ctx)

	var designs []domain.Design
	for cur.Next(ctx) {
		var md mongoDesign
		if err := cur.Decode(&md); err != nil {
			return nil, fmt.Errorf("decode design: %w", err)
		}
		designs = append(designs, md.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate designs: %w", err)
	}
	return designs, nil
}

// SetStatus applies a moderation transition conditional on the document still
// holding the from status, so two admins racing on the same entry cannot both
// win.
func (r *MongoDesignRepository) SetStatus(ctx context.Context, id string, from, to domain.DesignStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrDesignNotFound
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(from)},
		bson.M{"$set": bson.M{"status": string(to)}},
	)
	if err != nil {
		return fmt.Errorf("set design status: %w", err)
	}
	if res.MatchedCount == 0 {
		// The document either vanished or already moved on.
		count, countErr := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
		if countErr != nil {
			return fmt.Errorf("set design status: %w", countErr)
		}
		if count == 0 {
			return domain.ErrDesignNotFound
		}
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *MongoDesignRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrDesignNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete design: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrDesignNotFound
	}
	return nil
}
