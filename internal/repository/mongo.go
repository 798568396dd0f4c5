package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/smallbiznis/prepquiz/internal/domain"
)

// UsersCollection is the Mongo collection holding user documents.
const UsersCollection = "users"

var _ UserRepository = (*MongoUserRepo)(nil)

type userDocument struct {
	ID           int64     `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

// MongoUserRepo implements UserRepository on a Mongo collection.
type MongoUserRepo struct {
	coll *mongo.Collection
}

func NewMongoUserRepo(coll *mongo.Collection) *MongoUserRepo {
	return &MongoUserRepo{coll: coll}
}

// EnsureIndexes creates the unique email index used to reject duplicate signups.
func (r *MongoUserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}
	return nil
}

func (r *MongoUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return mapUserDocument(doc), nil
}

func (r *MongoUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	// BSON datetimes carry millisecond precision.
	user.CreatedAt = user.CreatedAt.Truncate(time.Millisecond)

	doc := userDocument{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.User{}, fmt.Errorf("create user: %w", ErrDuplicateEmail)
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (r *MongoUserRepo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func mapUserDocument(doc userDocument) domain.User {
	return domain.User{
		ID:           doc.ID,
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt.UTC(),
	}
}
