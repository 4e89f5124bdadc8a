package repositories

import (
	"context"
	"errors"
	"fmt"
	"parcel-service/internal/domain"
	"parcel-service/internal/platform/mongodb"
	"parcel-service/internal/platform/obs"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type paymentDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	ParcelID        string             `bson:"parcelId"`
	UserEmail       string             `bson:"userEmail"`
	Amount          float64            `bson:"amount"`
	PaymentIntentID string             `bson:"paymentIntentId"`
	PaymentStatus   string             `bson:"paymentStatus"`
	CreatedAt       time.Time          `bson:"createdAt"`
}

func (d paymentDocument) toDomain() *domain.PaymentRecord {
	return &domain.PaymentRecord{
		ID:              d.ID.Hex(),
		ParcelID:        d.ParcelID,
		UserEmail:       d.UserEmail,
		Amount:          d.Amount,
		PaymentIntentID: d.PaymentIntentID,
		PaymentStatus:   domain.PaymentStatus(d.PaymentStatus),
		CreatedAt:       d.CreatedAt.UTC(),
	}
}

// MongoDB-backed implementation of the PaymentHistoryStore port.
type MongoPaymentHistoryStore struct {
	Coll *mongo.Collection
}

func NewMongoPaymentHistoryStore(db *mongo.Database) *MongoPaymentHistoryStore {
	return &MongoPaymentHistoryStore{Coll: db.Collection(mongodb.PaymentHistoryCollection)}
}

func (s *MongoPaymentHistoryStore) Record(ctx context.Context, record *domain.PaymentRecord) (_ string, err error) {
	defer obs.Time(ctx, "payments.mongo.Record")(&err)

	if record == nil {
		return "", errors.New("record payment: record is nil")
	}

	doc := paymentDocument{
		ID:              primitive.NewObjectID(),
		ParcelID:        record.ParcelID,
		UserEmail:       record.UserEmail,
		Amount:          record.Amount,
		PaymentIntentID: record.PaymentIntentID,
		PaymentStatus:   string(record.PaymentStatus),
		CreatedAt:       record.CreatedAt,
	}

	if _, err := s.Coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("record payment: insert: %w", err)
	}

	return doc.ID.Hex(), nil
}

func (s *MongoPaymentHistoryStore) ListByUser(ctx context.Context, email string) (_ []*domain.PaymentRecord, err error) {
	defer obs.Time(ctx, "payments.mongo.ListByUser")(&err)

	return s.find(ctx, bson.M{"userEmail": email})
}

func (s *MongoPaymentHistoryStore) ListAll(ctx context.Context) (_ []*domain.PaymentRecord, err error) {
	defer obs.Time(ctx, "payments.mongo.ListAll")(&err)

	return s.find(ctx, bson.M{})
}

func (s *MongoPaymentHistoryStore) find(ctx context.Context, q bson.M) ([]*domain.PaymentRecord, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})

	cur, err := s.Coll.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("list payments: find: %w", err)
	}
	defer cur.Close(ctx)

	records := make([]*domain.PaymentRecord, 0, 32)
	for cur.Next(ctx) {
		var doc paymentDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("list payments: decode: %w", err)
		}
		records = append(records, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list payments: cursor iteration: %w", err)
	}

	return records, nil
}
