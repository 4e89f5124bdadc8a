package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"parcel-service/internal/adapters/repositories"
	"parcel-service/internal/config"
	"parcel-service/internal/platform/db"
	"parcel-service/internal/platform/mongodb"
	"parcel-service/internal/ports"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Stores holds the parcel and payment history stores for the configured
// driver, plus the connection they share.
type Stores struct {
	Driver  string
	Parcels ports.ParcelStore
	History ports.PaymentHistoryStore

	mongoClient *mongo.Client
	mongoDB     *mongo.Database
	sqlDB       *sql.DB
	gormDB      *gorm.DB
}

// OpenStores connects to the backend named by cfg.StoreDriver.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("open stores: %w", err)
		}
		database := client.Database(cfg.DBName)
		log.Printf("store=mongo db=%s connected", cfg.DBName)

		return &Stores{
			Driver:      cfg.StoreDriver,
			Parcels:     repositories.NewMongoParcelStore(database),
			History:     repositories.NewMongoPaymentHistoryStore(database),
			mongoClient: client,
			mongoDB:     database,
		}, nil

	case config.DriverPostgres:
		sqlDB, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open stores: %w", err)
		}
		gormDB, err := db.OpenGorm(sqlDB)
		if err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("open stores: %w", err)
		}
		log.Printf("store=postgres connected")

		return &Stores{
			Driver:  cfg.StoreDriver,
			Parcels: repositories.NewPostgresParcelStore(gormDB),
			History: repositories.NewPostgresPaymentHistoryStore(gormDB),
			sqlDB:   sqlDB,
			gormDB:  gormDB,
		}, nil

	case config.DriverMemory:
		mem := repositories.NewMemoryStore()
		log.Printf("store=memory (data is not persisted)")

		return &Stores{Driver: cfg.StoreDriver, Parcels: mem, History: mem}, nil

	default:
		return nil, fmt.Errorf("open stores: unknown driver %q", cfg.StoreDriver)
	}
}

// Migrate prepares the backend: indexes on Mongo, tables on Postgres.
func (s *Stores) Migrate(ctx context.Context) error {
	switch {
	case s.mongoDB != nil:
		return repositories.EnsureMongoIndexes(ctx, s.mongoDB)
	case s.gormDB != nil:
		return repositories.MigratePostgres(s.gormDB.WithContext(ctx))
	default:
		return nil
	}
}

func (s *Stores) Close(ctx context.Context) error {
	switch {
	case s.mongoClient != nil:
		return s.mongoClient.Disconnect(ctx)
	case s.sqlDB != nil:
		return s.sqlDB.Close()
	default:
		return nil
	}
}
