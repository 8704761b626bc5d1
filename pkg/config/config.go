package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Redis       RedisConfig
	Similarity  SimilarityConfig
	Catalog     CatalogConfig
	Signals     SignalsConfig
	Attribution AttributionConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	Enabled       bool
}

// SimilarityConfig points at the external visual-similarity service. The
// timeout bounds every outbound call; expiry is treated as a dependency
// failure, never retried inline.
type SimilarityConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CatalogConfig points at the external catalog CRUD service, used only to
// enumerate active items for cold-start candidate pools.
type CatalogConfig struct {
	BaseURL string
}

// SignalsConfig carries the interaction weight table and the advisory cache
// TTLs for popularity/affinity lookups.
type SignalsConfig struct {
	WeightView         float64
	WeightAddToCart    float64
	WeightPurchase     float64
	WeightWishlist     float64
	WeightSearch       float64
	PopularityCacheTTL time.Duration
	AffinityCacheTTL   time.Duration
}

type AttributionConfig struct {
	TTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "FashionPulse Analytics API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "fashion_pulse"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
			Enabled:       getEnv("REDIS_ENABLED", "true") == "true",
		},
		Similarity: SimilarityConfig{
			BaseURL: getEnv("SIMILARITY_SERVICE_URL", "http://localhost:8000"),
			Timeout: getEnvDuration("SIMILARITY_TIMEOUT", 5*time.Second),
		},
		Catalog: CatalogConfig{
			BaseURL: getEnv("CATALOG_SERVICE_URL", "http://localhost:3001"),
		},
		Signals: SignalsConfig{
			WeightView:         getEnvFloat("SIGNAL_WEIGHT_VIEW", 1),
			WeightAddToCart:    getEnvFloat("SIGNAL_WEIGHT_ATC", 3),
			WeightPurchase:     getEnvFloat("SIGNAL_WEIGHT_PURCHASE", 5),
			WeightWishlist:     getEnvFloat("SIGNAL_WEIGHT_WISHLIST", 2),
			WeightSearch:       getEnvFloat("SIGNAL_WEIGHT_SEARCH", 0),
			PopularityCacheTTL: getEnvDuration("POPULARITY_CACHE_TTL", time.Hour),
			AffinityCacheTTL:   getEnvDuration("AFFINITY_CACHE_TTL", 30*time.Minute),
		},
		Attribution: AttributionConfig{
			TTL: getEnvDuration("ATTRIBUTION_TTL", 7*24*time.Hour),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}

	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}

	return defaultVal
}
