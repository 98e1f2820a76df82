package mongodb

import (
	"context"
	"fmt"

	"github.com/ogurasousui/employee-directory/internal/platform/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const appName = "employee-directory"

// BuildClientOptions は mongodb 設定からクライアントオプションを構築します。
func BuildClientOptions(cfg config.MongoDBConfig) (*options.ClientOptions, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("mongodb: invalid client options: %w", err)
	}
	return opts, nil
}

// Connect は MongoDB に接続し、疎通確認済みのクライアントと社員コレクションを返します。
func Connect(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Client, *mongo.Collection, error) {
	opts, err := BuildClientOptions(cfg)
	if err != nil {
		return nil, nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongodb: connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongodb: ping: %w", err)
	}

	return client, client.Database(cfg.Database).Collection(cfg.Collection), nil
}
