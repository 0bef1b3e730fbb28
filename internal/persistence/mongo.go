package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

const mongoConnectTimeout = 10 * time.Second

// Mongo wraps the document store client used by the mongo notification backend.
type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongo connects when a URI is configured. A nil Client means mongo is disabled.
func NewMongo(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*Mongo, error) {
	if cfg.URI == "" {
		return &Mongo{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to mongo", zap.String("database", cfg.Database))
	return &Mongo{Client: client, Database: client.Database(cfg.Database)}, nil
}

// EnsureNotificationIndexes creates the staff listing index on coll.
func (m *Mongo) EnsureNotificationIndexes(ctx context.Context, coll string) error {
	if !m.Enabled() {
		return nil
	}
	model := mongo.IndexModel{
		Keys: bson.D{{Key: "staff_id", Value: 1}, {Key: "read", Value: 1}, {Key: "created_at", Value: -1}},
	}
	_, err := m.Database.Collection(coll).Indexes().CreateOne(ctx, model)
	return err
}

// Enabled reports whether a client was opened.
func (m *Mongo) Enabled() bool {
	return m != nil && m.Client != nil
}

// Ping verifies connectivity.
func (m *Mongo) Ping(ctx context.Context) error {
	if !m.Enabled() {
		return errors.New("mongo client not configured")
	}
	return m.Client.Ping(ctx, nil)
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) {
	if m.Enabled() {
		_ = m.Client.Disconnect(ctx)
	}
}
