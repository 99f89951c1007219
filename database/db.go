package database

import (
	"context"
	"fmt"
	"time"

	"taskilo/config"

	firebase "firebase.google.com/go/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectMongo opens and pings a MongoDB connection.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// Open returns the Store selected by cfg.StoreDriver. app is only required
// for the firestore driver.
func Open(ctx context.Context, cfg *config.Config, app *firebase.App, logger *zap.Logger) (Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := ConnectMongo(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store := NewMongoStore(client, cfg.DatabaseName)
		if err := store.EnsureIndexes(ctx); err != nil {
			logger.Warn("failed to create indexes", zap.Error(err))
		}
		logger.Info("Connected to MongoDB successfully", zap.String("database", cfg.DatabaseName))
		return store, nil

	case config.StoreFirestore:
		if app == nil {
			return nil, fmt.Errorf("firestore store requires a firebase app")
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create firestore client: %w", err)
		}
		logger.Info("Connected to Firestore", zap.String("project", cfg.FirebaseProjectID))
		return NewFirestoreStore(client), nil

	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
