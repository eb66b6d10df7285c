package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"

	authconfig "firebase-kit/internal/auth/config"
)

// Backend names accepted by the *_BACKEND variables
const (
	BackendFirebase = "firebase"
	BackendMongoDB  = "mongodb"
	BackendRedis    = "redis"
	BackendLocal    = "local"
	BackendMemory   = "memory"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" envDefault:"localhost"`
	Port         string        `env:"SERVER_PORT" envDefault:"3000"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	// WebSocketPrefix is where the /listen change stream is mounted
	WebSocketPrefix string `env:"WEBSOCKET_PREFIX" envDefault:"/ws/v1"`
	CORSOrigins     string `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	// RateLimit is the requests allowed per client per minute, 0 disables it
	RateLimit int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"0"`
	// RequireAuth puts the data routes and the change stream behind a
	// verified id token or session cookie
	RequireAuth bool `env:"REQUIRE_AUTH" envDefault:"false"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// BackendConfig selects the collaborator behind each wrapper
type BackendConfig struct {
	DocStore string `env:"DOCSTORE_BACKEND" envDefault:"firebase"`
	Auth     string `env:"AUTH_BACKEND" envDefault:"firebase"`
	Realtime string `env:"REALTIME_BACKEND" envDefault:"firebase"`
	Blob     string `env:"BLOBSTORE_BACKEND" envDefault:"firebase"`
}

// UsesFirebase reports whether any wrapper needs the Firebase app.
func (b BackendConfig) UsesFirebase() bool {
	return b.DocStore == BackendFirebase || b.Auth == BackendFirebase ||
		b.Realtime == BackendFirebase || b.Blob == BackendFirebase
}

// UsesMongo reports whether any wrapper needs a MongoDB connection.
func (b BackendConfig) UsesMongo() bool {
	return b.DocStore == BackendMongoDB || b.Auth == BackendLocal
}

// FirebaseConfig holds the platform SDK settings
type FirebaseConfig struct {
	ProjectID       string `env:"FIREBASE_PROJECT_ID"`
	CredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	StorageBucket   string `env:"FIREBASE_STORAGE_BUCKET"`
	DatabaseURL     string `env:"FIREBASE_DATABASE_URL"`
	// FirestoreDatabase selects a named Firestore database
	FirestoreDatabase string `env:"FIRESTORE_DATABASE_ID" envDefault:"(default)"`
}

// MongoConfig holds MongoDB connection settings
type MongoConfig struct {
	URI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGODB_DATABASE" envDefault:"firebase_kit"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	// URL (redis:// or rediss://) overrides the host, port, password, db and TLS fields
	URL             string        `env:"REDIS_URL"`
	Host            string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port            string        `env:"REDIS_PORT" envDefault:"6379"`
	Password        string        `env:"REDIS_PASSWORD"`
	Database        int           `env:"REDIS_DB" envDefault:"0"`
	MaxRetries      int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	PoolSize        int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns    int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	EnableTLS       bool          `env:"REDIS_TLS" envDefault:"false"`
	DialTimeout     time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout     time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout    time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	ConnMaxIdleTime time.Duration `env:"REDIS_CONN_MAX_IDLE_TIME" envDefault:"30m"`
	ConnMaxLifetime time.Duration `env:"REDIS_CONN_MAX_LIFETIME" envDefault:"1h"`
	// KeyPrefix namespaces the realtime tree's top-level keys
	KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"rtdb:"`
}

// GetAddr returns host:port
func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// DocStoreConfig holds document wrapper settings
type DocStoreConfig struct {
	// MaxDepth bounds ReadAllDeep traversal in sub-collection levels
	MaxDepth int `env:"DOCSTORE_MAX_DEPTH" envDefault:"8"`
}

// BlobConfig holds blob wrapper settings
type BlobConfig struct {
	DownloadURLTTL time.Duration `env:"BLOB_URL_TTL" envDefault:"15m"`
	// PublicBaseURL prefixes download URLs issued by the memory backend
	PublicBaseURL string `env:"BLOB_PUBLIC_BASE_URL" envDefault:"http://localhost:3000/v1/storage/raw"`
}

// Config is the full process configuration
type Config struct {
	Server   ServerConfig
	Backends BackendConfig
	Firebase FirebaseConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Auth     authconfig.Config
	DocStore DocStoreConfig
	Blob     BlobConfig
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	sections := []struct {
		name   string
		target interface{}
	}{
		{"server", &cfg.Server},
		{"backends", &cfg.Backends},
		{"firebase", &cfg.Firebase},
		{"mongodb", &cfg.Mongo},
		{"redis", &cfg.Redis},
		{"auth", &cfg.Auth},
		{"docstore", &cfg.DocStore},
		{"blobstore", &cfg.Blob},
	}
	for _, s := range sections {
		if err := env.Parse(s.target); err != nil {
			return nil, fmt.Errorf("failed to load %s configuration from environment: %w", s.name, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks backend names and the settings each backend requires.
func (c *Config) Validate() error {
	checks := []struct {
		name    string
		value   string
		allowed []string
	}{
		{"DOCSTORE_BACKEND", c.Backends.DocStore, []string{BackendFirebase, BackendMongoDB, BackendMemory}},
		{"AUTH_BACKEND", c.Backends.Auth, []string{BackendFirebase, BackendLocal, BackendMemory}},
		{"REALTIME_BACKEND", c.Backends.Realtime, []string{BackendFirebase, BackendRedis, BackendMemory}},
		{"BLOBSTORE_BACKEND", c.Backends.Blob, []string{BackendFirebase, BackendMemory}},
	}
	for _, check := range checks {
		if !contains(check.allowed, check.value) {
			return fmt.Errorf("%s must be one of %v, got %q", check.name, check.allowed, check.value)
		}
	}

	if (c.Backends.Auth == BackendLocal || c.Backends.Auth == BackendMemory) && c.Auth.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY is required for the local auth backend")
	}
	if c.Backends.Realtime == BackendFirebase && c.Firebase.DatabaseURL == "" {
		return errors.New("FIREBASE_DATABASE_URL is required for the firebase realtime backend")
	}
	if c.DocStore.MaxDepth <= 0 {
		c.DocStore.MaxDepth = 8
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
