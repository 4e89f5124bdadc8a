package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Port              string
	StoreDriver       string
	MongoURI          string
	DBName            string
	DatabaseURL       string
	PaymentGatewayKey string
	RedisAddr         string
	HistoryCacheTTL   time.Duration
	KafkaBrokers      []string
	CORSOrigin        string
	SeedPath          string
}

// LoadDotEnv loads a .env file from the working directory if one exists.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Load reads configuration from the environment, applying defaults.
func Load() (*Config, error) {
	LoadDotEnv()

	v := viper.New()
	v.AutomaticEnv()
	// Older deployments spell the Atlas user DB_User.
	if err := v.BindEnv("DB_USER", "DB_USER", "DB_User"); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	v.SetDefault("PORT", "4000")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("DB_NAME", "parcelBD")
	v.SetDefault("HISTORY_CACHE_TTL", "5m")
	v.SetDefault("CORS_ORIGIN", "http://localhost:5173")
	v.SetDefault("SEED_PATH", "data/seeds/parcels.json")

	cfg := &Config{
		Port:              v.GetString("PORT"),
		StoreDriver:       strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		MongoURI:          mongoURI(v),
		DBName:            v.GetString("DB_NAME"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		PaymentGatewayKey: v.GetString("PAYMENT_GATEWAY_KEY"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		HistoryCacheTTL:   v.GetDuration("HISTORY_CACHE_TTL"),
		KafkaBrokers:      splitList(v.GetString("KAFKA_BROKERS")),
		CORSOrigin:        v.GetString("CORS_ORIGIN"),
		SeedPath:          v.GetString("SEED_PATH"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI (or DB_USER, DB_PASS and DB_HOST) is required for store driver %q", c.StoreDriver)
		}
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required for store driver %q", c.StoreDriver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.HistoryCacheTTL <= 0 {
		return fmt.Errorf("HISTORY_CACHE_TTL must be positive, got %s", c.HistoryCacheTTL)
	}

	return nil
}

// mongoURI prefers an explicit MONGODB_URI and otherwise assembles an Atlas SRV URI
// from credentials, matching how the service is usually deployed.
func mongoURI(v *viper.Viper) string {
	if uri := strings.TrimSpace(v.GetString("MONGODB_URI")); uri != "" {
		return uri
	}

	user, pass, host := v.GetString("DB_USER"), v.GetString("DB_PASS"), v.GetString("DB_HOST")
	if user == "" || pass == "" || host == "" {
		return ""
	}

	return AtlasURI(user, pass, host)
}

// AtlasURI builds a mongodb+srv connection string.
func AtlasURI(user, pass, host string) string {
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority", user, pass, host)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
