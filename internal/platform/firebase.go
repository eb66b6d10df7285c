// Package platform initializes the Firebase Admin SDK once per process and
// hands out the product clients the wrappers are built on.
package platform

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	gcsstorage "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"

	"firebase-kit/internal/config"
)

// DefaultFirestoreDatabase is the id of a project's unnamed database
const DefaultFirestoreDatabase = "(default)"

// App holds the initialized Firebase app and the clients opened from it.
// Clients are created on first use and shared afterwards.
type App struct {
	app  *firebase.App
	cfg  config.FirebaseConfig
	opts []option.ClientOption

	mu        sync.Mutex
	firestore *firestore.Client
}

// NewApp initializes the Firebase app. Without a credentials file the SDK
// falls back to Application Default Credentials.
func NewApp(ctx context.Context, cfg config.FirebaseConfig, opts ...option.ClientOption) (*App, error) {
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
		DatabaseURL:   cfg.DatabaseURL,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	return &App{app: app, cfg: cfg, opts: opts}, nil
}

// Firestore returns the Firestore client for the configured database
func (a *App) Firestore(ctx context.Context) (*firestore.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.firestore != nil {
		return a.firestore, nil
	}

	var (
		client *firestore.Client
		err    error
	)
	if a.cfg.FirestoreDatabase == "" || a.cfg.FirestoreDatabase == DefaultFirestoreDatabase {
		client, err = a.app.Firestore(ctx)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, a.cfg.ProjectID, a.cfg.FirestoreDatabase, a.opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open firestore: %w", err)
	}
	a.firestore = client
	return client, nil
}

// Auth returns the user management client
func (a *App) Auth(ctx context.Context) (*auth.Client, error) {
	client, err := a.app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open firebase auth: %w", err)
	}
	return client, nil
}

// Bucket returns the project's default Cloud Storage bucket
func (a *App) Bucket(ctx context.Context) (*gcsstorage.BucketHandle, error) {
	client, err := a.app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open firebase storage: %w", err)
	}
	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("failed to open default bucket: %w", err)
	}
	return bucket, nil
}

// Database returns the Realtime Database client for the configured URL
func (a *App) Database(ctx context.Context) (*db.Client, error) {
	client, err := a.app.DatabaseWithURL(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open realtime database: %w", err)
	}
	return client, nil
}

// Close releases the clients that hold connections
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.firestore == nil {
		return nil
	}
	err := a.firestore.Close()
	a.firestore = nil
	return err
}
