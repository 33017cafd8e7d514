package db

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"news-shorts/config"
)

var (
	clientOnce sync.Once
	client     *mongo.Client
	db         *mongo.Database
	initErr    error
)

// Init initializes the global Mongo client and database using the history config.
func Init(ctx context.Context, cfg config.HistoryConfig) (*mongo.Database, error) {
	clientOnce.Do(func() {
		uri := cfg.MongoURI
		if uri == "" {
			// Fallback for local docker default
			uri = "mongodb://localhost:27017"
		}
		dbName := cfg.MongoDB
		if dbName == "" {
			dbName = "newsshorts"
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		cl, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			initErr = err
			return
		}
		// Ping to verify connection
		if err := cl.Ping(ctx, readpref.Primary()); err != nil {
			_ = cl.Disconnect(context.Background())
			initErr = err
			return
		}
		client = cl
		db = client.Database(dbName)

		if err := ensureIndexes(ctx, db, cfg.Collection); err != nil {
			initErr = err
			return
		}
		config.Logger.Info("MongoDB connected and indexes ensured")
	})
	return db, initErr
}

// Disconnect closes the global client if it was opened. A later Init reconnects.
func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	err := client.Disconnect(ctx)
	client, db, initErr = nil, nil, nil
	clientOnce = sync.Once{}
	return err
}

func ensureIndexes(ctx context.Context, d *mongo.Database, collection string) error {
	if collection == "" {
		collection = "history"
	}

	// history: unique link, title_key lookup, used_at desc
	col := d.Collection(collection)
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "link", Value: 1}},
			Options: options.Index().SetName("uniq_link").SetUnique(true).
				SetPartialFilterExpression(bson.M{"link": bson.M{"$gt": ""}}),
		},
		{
			Keys:    bson.D{{Key: "title_key", Value: 1}},
			Options: options.Index().SetName("idx_title_key"),
		},
		{
			Keys:    bson.D{{Key: "used_at", Value: -1}},
			Options: options.Index().SetName("idx_used_at_desc"),
		},
	})
	return err
}
