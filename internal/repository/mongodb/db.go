package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Cfg struct {
	URI      string
	User     string
	Pass     string
	Database string
}

func (c Cfg) Creds() *options.Credential {
	if c.Pass != "" && c.User != "" {
		return &options.Credential{
			Username:    c.User,
			Password:    c.Pass,
			PasswordSet: true,
		}
	}
	return nil
}

// Open connects to MongoDB and verifies the primary is reachable.
func Open(ctx context.Context, cfg Cfg) (*mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(3 * time.Second).
		SetTimeout(5 * time.Second)
	if creds := cfg.Creds(); creds != nil {
		opts.SetAuth(*creds)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client.Database(cfg.Database), nil
}
