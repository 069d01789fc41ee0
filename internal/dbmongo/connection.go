// Package dbmongo owns the MongoDB client and the collection layout.
package dbmongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"gochat/internal/config"
)

const (
	AccountsCollection = "accounts"
	MessagesCollection = "messages"
)

const connectTimeout = 10 * time.Second

type MongoClient struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoConnection(c *config.Config, log *zap.Logger) (*MongoClient, error) {
	clientOptions := options.Client().ApplyURI(c.GetMongoURI())
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	database := client.Database(c.MongoDB.Database)
	if err := EnsureIndexes(ctx, database); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info("connected to MongoDB", zap.String("database", c.MongoDB.Database))
	return &MongoClient{
		Client:   client,
		Database: database,
	}, nil
}

// messageIndexes serve history (chatId, createdAt) and the chat list (sender).
// chatId_createdAt also answers plain chatId filters.
func messageIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "chatId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("chatId_createdAt"),
		},
		{
			Keys:    bson.D{{Key: "sender", Value: 1}},
			Options: options.Index().SetName("sender_1"),
		},
	}
}

// EnsureIndexes creates the unique email index the registration flow relies on
// plus the message indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(AccountsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create accounts index: %w", err)
	}

	_, err = db.Collection(MessagesCollection).Indexes().CreateMany(ctx, messageIndexes())
	if err != nil {
		return fmt.Errorf("create messages indexes: %w", err)
	}
	return nil
}

func (mc *MongoClient) Ping(ctx context.Context) error {
	return mc.Client.Ping(ctx, nil)
}

func (mc *MongoClient) Close(ctx context.Context) error {
	return mc.Client.Disconnect(ctx)
}
