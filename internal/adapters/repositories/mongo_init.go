package repositories

import (
	"context"
	"errors"
	"fmt"
	"parcel-service/internal/domain"
	"parcel-service/internal/platform/mongodb"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureMongoIndexes creates the secondary indexes used by the list queries.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	if db == nil {
		return errors.New("ensure indexes: database is nil")
	}

	parcelIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: domain.FieldUserEmail, Value: 1}, {Key: "_id", Value: -1}}},
	}
	if _, err := db.Collection(mongodb.ParcelsCollection).Indexes().CreateMany(ctx, parcelIndexes); err != nil {
		return fmt.Errorf("ensure indexes: %s: %w", mongodb.ParcelsCollection, err)
	}

	historyIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := db.Collection(mongodb.PaymentHistoryCollection).Indexes().CreateMany(ctx, historyIndexes); err != nil {
		return fmt.Errorf("ensure indexes: %s: %w", mongodb.PaymentHistoryCollection, err)
	}

	return nil
}
