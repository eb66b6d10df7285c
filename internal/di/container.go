package di

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"firebase-kit/internal/auth"
	authmemory "firebase-kit/internal/auth/adapter/persistence/memory"
	authmongodb "firebase-kit/internal/auth/adapter/persistence/mongodb"
	blobfirebase "firebase-kit/internal/blobstore/adapter/firebase"
	blobhttp "firebase-kit/internal/blobstore/adapter/http"
	blobmemory "firebase-kit/internal/blobstore/adapter/memory"
	blobrepo "firebase-kit/internal/blobstore/domain/repository"
	blobusecase "firebase-kit/internal/blobstore/usecase"
	"firebase-kit/internal/config"
	docfirestore "firebase-kit/internal/docstore/adapter/firestore"
	docmemory "firebase-kit/internal/docstore/adapter/memory"
	docmongodb "firebase-kit/internal/docstore/adapter/mongodb"
	docrepo "firebase-kit/internal/docstore/domain/repository"
	docusecase "firebase-kit/internal/docstore/usecase"
	"firebase-kit/internal/platform"
	rtfirebase "firebase-kit/internal/realtime/adapter/firebase"
	rtmemory "firebase-kit/internal/realtime/adapter/memory"
	rtredis "firebase-kit/internal/realtime/adapter/redis"
	rtrepo "firebase-kit/internal/realtime/domain/repository"
	rtusecase "firebase-kit/internal/realtime/usecase"
	"firebase-kit/internal/shared/eventbus"
	"firebase-kit/internal/shared/logger"
)

const connectTimeout = 30 * time.Second

// Container owns the process-wide connections and the wrappers built on
// them. Initialize opens only what the configured backends need.
type Container struct {
	mu sync.RWMutex

	Config   *config.Config
	Logger   logger.Logger
	EventBus *eventbus.EventBus

	// Connections
	Firebase    *platform.App
	MongoClient *mongo.Client
	MongoDB     *mongo.Database
	Redis       *redis.Client

	// Wrappers
	AuthModule   *auth.AuthModule
	DocStore     docusecase.Dependencies
	Realtime     *rtusecase.Database
	Blobs        *blobusecase.Store
	BlobResolver blobhttp.TokenResolver
}

// NewContainer creates an empty container for cfg
func NewContainer(cfg *config.Config, log logger.Logger) *Container {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Container{
		Config:   cfg,
		Logger:   log,
		EventBus: eventbus.NewEventBus(log),
	}
}

// Initialize opens connections and builds every wrapper
func (c *Container) Initialize(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"connections", c.InitializeConnections},
		{"docstore", c.InitializeDocStore},
		{"auth", c.InitializeAuth},
		{"realtime", c.InitializeRealtime},
		{"blobstore", c.InitializeBlobStore},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("failed to initialize %s: %w", step.name, err)
		}
		c.Logger.Infof("Initialized %s", step.name)
	}
	return nil
}

// InitializeConnections opens the Firebase app, MongoDB and Redis as the
// backends require.
func (c *Container) InitializeConnections(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	backends := c.Config.Backends

	if backends.UsesFirebase() && c.Firebase == nil {
		app, err := platform.NewApp(ctx, c.Config.Firebase)
		if err != nil {
			return err
		}
		c.Firebase = app
	}

	if backends.UsesMongo() && c.MongoDB == nil {
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()

		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(c.Config.Mongo.URI))
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		if err := client.Ping(connectCtx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		c.MongoClient = client
		c.MongoDB = client.Database(c.Config.Mongo.Database)
		c.Logger.Info("MongoDB connection established")
	}

	if backends.Realtime == config.BackendRedis && c.Redis == nil {
		client, err := config.NewRedisClient(&c.Config.Redis)
		if err != nil {
			return err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("failed to ping Redis: %w", err)
		}
		c.Redis = client
		c.Logger.Info("Redis connection established")
	}
	return nil
}

// InitializeDocStore selects the document store collaborator
func (c *Container) InitializeDocStore(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var store docrepo.DocumentStore
	switch c.Config.Backends.DocStore {
	case config.BackendFirebase:
		client, err := c.Firebase.Firestore(ctx)
		if err != nil {
			return err
		}
		store = docfirestore.NewStore(client, c.Logger)
	case config.BackendMongoDB:
		mongoStore, err := docmongodb.NewStore(ctx, c.MongoDB)
		if err != nil {
			return err
		}
		store = mongoStore
	default:
		store = docmemory.NewStore()
	}

	c.DocStore = docusecase.Dependencies{
		Store:     store,
		Logger:    c.Logger.WithComponent("docstore"),
		Publisher: c.EventBus,
		MaxDepth:  c.Config.DocStore.MaxDepth,
	}
	return nil
}

// InitializeAuth builds the auth module over Firebase Auth or a local user
// repository.
func (c *Container) InitializeAuth(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.Logger.WithComponent("auth")
	switch c.Config.Backends.Auth {
	case config.BackendFirebase:
		client, err := c.Firebase.Auth(ctx)
		if err != nil {
			return err
		}
		c.AuthModule = auth.NewFirebaseModule(client, &c.Config.Auth, log, c.EventBus)
		return nil
	case config.BackendLocal:
		users, err := authmongodb.NewMongoUserRepository(ctx, c.MongoDB)
		if err != nil {
			return err
		}
		module, err := auth.NewLocalModule(users, &c.Config.Auth, log, c.EventBus)
		if err != nil {
			return err
		}
		c.AuthModule = module
		return nil
	default:
		module, err := auth.NewLocalModule(authmemory.NewUserRepository(), &c.Config.Auth, log, c.EventBus)
		if err != nil {
			return err
		}
		c.AuthModule = module
		return nil
	}
}

// InitializeRealtime selects the realtime tree collaborator
func (c *Container) InitializeRealtime(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var db rtrepo.Database
	switch c.Config.Backends.Realtime {
	case config.BackendFirebase:
		client, err := c.Firebase.Database(ctx)
		if err != nil {
			return err
		}
		db = rtfirebase.NewDatabase(client)
	case config.BackendRedis:
		db = rtredis.NewDatabase(c.Redis, c.Config.Redis.KeyPrefix, c.Logger)
	default:
		db = rtmemory.NewDatabase()
	}

	c.Realtime = rtusecase.NewDatabase(db, c.Logger, c.EventBus)
	return nil
}

// InitializeBlobStore selects the blob collaborator. The memory backend also
// resolves the token URLs it issues.
func (c *Container) InitializeBlobStore(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var store blobrepo.BlobStore
	switch c.Config.Backends.Blob {
	case config.BackendFirebase:
		bucket, err := c.Firebase.Bucket(ctx)
		if err != nil {
			return err
		}
		store = blobfirebase.NewStore(bucket)
	default:
		memStore := blobmemory.NewStore(c.Config.Blob.PublicBaseURL)
		c.BlobResolver = memStore
		store = memStore
	}

	c.Blobs = blobusecase.NewStore(store, c.Logger, c.EventBus, c.Config.Blob.DownloadURLTTL)
	return nil
}

// GetAuthModule returns the auth module instance
func (c *Container) GetAuthModule() *auth.AuthModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AuthModule
}

// HealthCheck pings the network backends in use
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoClient != nil {
		if err := c.MongoClient.Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis health check failed: %w", err)
		}
	}
	return nil
}

// Cleanup closes connections in reverse order of opening
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
		c.Redis = nil
	}
	if c.MongoClient != nil {
		if err := c.MongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to disconnect MongoDB: %w", err))
		}
		c.MongoClient, c.MongoDB = nil, nil
	}
	if c.Firebase != nil {
		if err := c.Firebase.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Firebase clients: %w", err))
		}
		c.Firebase = nil
	}
	return errors.Join(errs...)
}

// Close shuts down all connections with a timeout
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		c.Logger.Warnf("Cleanup errors occurred: %v", err)
		return err
	}
	c.Logger.Info("Container resources closed")
	return nil
}
