package repositories

import (
	"context"
	"errors"
	"fmt"
	"parcel-service/internal/domain"
	"parcel-service/internal/platform/mongodb"
	"parcel-service/internal/platform/obs"
	"parcel-service/internal/ports"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB-backed implementation of the ParcelStore port.
// ObjectIDs embed their creation time, so sorting on _id gives insertion order.
type MongoParcelStore struct {
	Coll *mongo.Collection
}

func NewMongoParcelStore(db *mongo.Database) *MongoParcelStore {
	return &MongoParcelStore{Coll: db.Collection(mongodb.ParcelsCollection)}
}

func (s *MongoParcelStore) List(ctx context.Context, filter ports.ParcelFilter) (_ []*domain.Parcel, err error) {
	defer obs.Time(ctx, "parcels.mongo.List")(&err)

	if s.Coll == nil {
		return nil, errors.New("mongo parcel store: collection is nil")
	}

	q := bson.M{}
	if filter.Email != "" {
		q[domain.FieldUserEmail] = filter.Email
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	cur, err := s.Coll.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("list parcels: find: %w", err)
	}
	defer cur.Close(ctx)

	parcels := make([]*domain.Parcel, 0, 64)
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("list parcels: decode: %w", err)
		}

		parcels = append(parcels, parcelFromDocument(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list parcels: cursor iteration: %w", err)
	}

	return parcels, nil
}

func (s *MongoParcelStore) Get(ctx context.Context, id string) (_ *domain.Parcel, err error) {
	defer obs.Time(ctx, "parcels.mongo.Get")(&err)

	oid, err := parseObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("get parcel: %w", err)
	}

	var doc bson.M
	if err := s.Coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("get parcel %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get parcel %s: %w", id, err)
	}

	return parcelFromDocument(doc), nil
}

func (s *MongoParcelStore) Create(ctx context.Context, parcel *domain.Parcel) (_ string, err error) {
	defer obs.Time(ctx, "parcels.mongo.Create")(&err)

	if parcel == nil {
		return "", errors.New("create parcel: parcel is nil")
	}

	doc := bson.M(parcel.Fields())
	oid := primitive.NewObjectID()
	doc["_id"] = oid

	if _, err := s.Coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("create parcel: insert: %w", err)
	}

	return oid.Hex(), nil
}

func (s *MongoParcelStore) Update(ctx context.Context, id string, fields map[string]any) (_ ports.UpdateResult, err error) {
	defer obs.Time(ctx, "parcels.mongo.Update")(&err)

	oid, err := parseObjectID(id)
	if err != nil {
		return ports.UpdateResult{}, nil
	}

	set := setFields(fields)
	if len(set) == 0 {
		// An empty $set is rejected by the server; report whether the id exists instead.
		n, err := s.Coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
		if err != nil {
			return ports.UpdateResult{}, fmt.Errorf("update parcel %s: count: %w", id, err)
		}
		return ports.UpdateResult{MatchedCount: n}, nil
	}

	res, err := s.Coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return ports.UpdateResult{}, fmt.Errorf("update parcel %s: %w", id, err)
	}

	return ports.UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

func (s *MongoParcelStore) Delete(ctx context.Context, id string) (_ int64, err error) {
	defer obs.Time(ctx, "parcels.mongo.Delete")(&err)

	oid, err := parseObjectID(id)
	if err != nil {
		return 0, nil
	}

	res, err := s.Coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("delete parcel %s: %w", id, err)
	}

	return res.DeletedCount, nil
}

func (s *MongoParcelStore) MarkPaid(ctx context.Context, id string, at time.Time) (_ ports.UpdateResult, err error) {
	defer obs.Time(ctx, "parcels.mongo.MarkPaid")(&err)

	oid, err := parseObjectID(id)
	if err != nil {
		return ports.UpdateResult{}, fmt.Errorf("mark parcel paid: %w", err)
	}

	q := bson.M{
		"_id":                     oid,
		domain.FieldPaymentStatus: bson.M{"$ne": string(domain.PaymentStatusPaid)},
	}
	update := bson.M{"$set": bson.M{
		domain.FieldPaymentStatus: string(domain.PaymentStatusPaid),
		domain.FieldPaidAt:        at,
	}}

	res, err := s.Coll.UpdateOne(ctx, q, update)
	if err != nil {
		return ports.UpdateResult{}, fmt.Errorf("mark parcel paid %s: %w", id, err)
	}

	if res.MatchedCount == 0 {
		n, err := s.Coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
		if err != nil {
			return ports.UpdateResult{}, fmt.Errorf("mark parcel paid %s: count: %w", id, err)
		}
		if n == 0 {
			return ports.UpdateResult{}, fmt.Errorf("mark parcel paid %s: %w", id, domain.ErrNotFound)
		}
		return ports.UpdateResult{MatchedCount: n}, fmt.Errorf("mark parcel paid %s: %w", id, domain.ErrAlreadyPaid)
	}

	return ports.UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}
