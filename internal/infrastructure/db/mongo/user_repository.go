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

const userCollection = "users"

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(userCollection)}
}

type mongoUser struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	Handle         string             `bson:"handle"`
	AccessCodeHash string             `bson:"access_code_hash"`
	Role           string             `bson:"role"`
	Points         int64              `bson:"points"`
	IsBanned       bool               `bson:"is_banned"`
	CreatedAt      int64              `bson:"created_at"`
	UpdatedAt      int64              `bson:"updated_at"`
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:             mu.ID.Hex(),
		Name:           mu.Name,
		Handle:         mu.Handle,
		AccessCodeHash: mu.AccessCodeHash,
		Role:           mu.Role,
		Points:         domain.Points(mu.Points),
		IsBanned:       mu.IsBanned,
		CreatedAt:      unixToTime(mu.CreatedAt),
		UpdatedAt:      unixToTime(mu.UpdatedAt),
	}
}

func fromDomain(user *domain.User) mongoUser {
	return mongoUser{
		Name:           user.Name,
		Handle:         user.Handle,
		AccessCodeHash: user.AccessCodeHash,
		Role:           user.Role,
		Points:         int64(user.Points),
		IsBanned:       user.IsBanned,
		CreatedAt:      user.CreatedAt.Unix(),
		UpdatedAt:      user.UpdatedAt.Unix(),
	}
}

// EnsureIndexes creates the unique handle index backing duplicate detection.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "handle", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create handle index: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := fromDomain(user)

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert user: unexpected id type %T", res.InsertedID)
	}

	created := *user
	created.ID = oid.Hex()
	return &created, nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *MongoUserRepository) FindByHandle(ctx context.Context, handle string) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"handle": handle}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by handle: %w", err)
	}
	return mu.toDomain(), nil
}

// EnsureAdmin provisions the admin profile with an atomic upsert keyed by
// handle. Concurrent first logins race safely: exactly one document is ever
// created and every caller observes it.
func (r *MongoUserRepository) EnsureAdmin(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := fromDomain(user)

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var mu mongoUser
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"handle": user.Handle},
		bson.M{"$setOnInsert": doc},
		opts,
	).Decode(&mu)
	if err != nil {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}
	return mu.toDomain(), nil
}

// DebitPoints decrements the balance only when the document still holds at
// least amount, in a single conditional update. Admin balances are never
// touched.
func (r *MongoUserRepository) DebitPoints(ctx context.Context, id string, amount domain.Points) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	filter := bson.M{
		"_id":    oid,
		"role":   bson.M{"$ne": domain.RoleAdmin},
		"points": bson.M{"$gte": int64(amount)},
	}
	update := bson.M{
		"$inc": bson.M{"points": -int64(amount)},
		"$set": bson.M{"updated_at": time.Now().Unix()},
	}

	var mu mongoUser
	err = r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mu)
	if err == nil {
		return mu.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("debit points: %w", err)
	}

	// Guard missed: distinguish a missing user, an admin, and a balance
	// too low to cover the debit.
	existing, findErr := r.FindByID(ctx, id)
	if findErr != nil {
		return nil, findErr
	}
	if existing.IsAdmin() {
		return existing, nil
	}
	return nil, domain.ErrInsufficientPoints
}

func (r *MongoUserRepository) CreditPoints(ctx context.Context, id string, amount domain.Points) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	update := bson.M{
		"$inc": bson.M{"points": int64(amount)},
		"$set": bson.M{"updated_at": time.Now().Unix()},
	}

	var mu mongoUser
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mu)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("credit points: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *MongoUserRepository) SetBanned(ctx context.Context, id string, banned bool) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"is_banned": banned, "updated_at": time.Now().Unix()},
	})
	if err != nil {
		return fmt.Errorf("set banned: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *MongoUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []*domain.User
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, mu.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
