package mongostore

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/saborlocal/payment-sync/internal/config"
)

const (
	orderCollection = "order"
	userCollection  = "users"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

// Connect establishes the MongoDB connection and verifies it with a ping.
func Connect(ctx context.Context, cfg *config.MongoConfig, logger *slog.Logger) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	logger.Info("connecting to mongodb", "database", cfg.Database)

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		logger.Error("failed to connect to mongodb", "error", err)
		return nil, err
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		logger.Error("failed to ping mongodb", "error", err)
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.Info("successfully connected to mongodb")

	return &Store{
		client: client,
		db:     client.Database(cfg.Database),
		logger: logger,
	}, nil
}

func (s *Store) Close(ctx context.Context) {
	s.logger.Info("closing mongodb connection")
	if err := s.client.Disconnect(ctx); err != nil {
		s.logger.Error("failed to disconnect from mongodb", "error", err)
	}
}

func (s *Store) Database() *mongo.Database {
	return s.db
}
