// Package mongo stores user collections as one MongoDB document per user.
// Membership changes use $addToSet and $pull so concurrent toggles for the
// same user never overwrite each other.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
)

const collectionName = "collections"

// Connect opens a client and pings the server.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

type CollectionRepository struct {
	coll *mongo.Collection
}

func NewCollectionRepository(db *mongo.Database) *CollectionRepository {
	return &CollectionRepository{coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the unique user index the upserts rely on.
func (r *CollectionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *CollectionRepository) List(ctx context.Context, userID string) ([]string, error) {
	var c domain.Collection
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read collection: %w", domain.ErrDataUnavailable, err)
	}
	return ids(c), nil
}

func (r *CollectionRepository) Add(ctx context.Context, userID, variantID string) ([]string, error) {
	update := bson.M{
		"$addToSet": bson.M{"variant_ids": variantID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	c, err := r.findOneAndUpdate(ctx, userID, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// Two first-time upserts raced on the unique index; the loser retries
		// as a plain update.
		c, err = r.findOneAndUpdate(ctx, userID, update, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: add to collection: %w", domain.ErrDataUnavailable, err)
	}
	return ids(c), nil
}

func (r *CollectionRepository) Remove(ctx context.Context, userID, variantID string) ([]string, error) {
	update := bson.M{
		"$pull": bson.M{"variant_ids": variantID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	c, err := r.findOneAndUpdate(ctx, userID, update, opts)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: remove from collection: %w", domain.ErrDataUnavailable, err)
	}
	return ids(c), nil
}

func (r *CollectionRepository) findOneAndUpdate(ctx context.Context, userID string, update bson.M, opts *options.FindOneAndUpdateOptions) (domain.Collection, error) {
	var c domain.Collection
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&c)
	return c, err
}

func ids(c domain.Collection) []string {
	if c.VariantIDs == nil {
		return []string{}
	}
	return c.VariantIDs
}
