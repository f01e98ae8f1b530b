package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sangkips/enquiry-api/internal/config"
)

// ConnectMongo opens a client and pings it, retrying a few times while the
// server comes up
func ConnectMongo(ctx context.Context, cfg config.MongoConfig, log *logrus.Logger) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri is required")
	}
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetConnectTimeout(cfg.ConnectTimeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	attempts := cfg.MaxRetry
	if attempts < 1 {
		attempts = 1
	}

	var client *mongo.Client
	var err error
	for i := 1; i <= attempts; i++ {
		client, err = connectOnce(ctx, opts)
		if err == nil {
			break
		}
		log.WithError(err).WithField("attempt", i).Warn("MongoDB connection failed")
		if ctx.Err() != nil {
			break
		}
		if i < attempts {
			time.Sleep(500 * time.Millisecond)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	log.WithField("database", cfg.Database).Info("Successfully connected to MongoDB")
	return NewMongoStore(client, cfg.Database), nil
}

func connectOnce(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

type indexSpec struct {
	collection string
	name       string
	keys       bson.D
	unique     bool
	sparse     bool
}

var indexes = []indexSpec{
	{collection: "enquiries", name: "enquiry_visitor", keys: bson.D{{Key: "visitorId", Value: 1}}, sparse: true},
	{collection: "enquiries", name: "enquiry_status", keys: bson.D{{Key: "status", Value: 1}}},
	{collection: "enquiries", name: "enquiry_created", keys: bson.D{{Key: "createdAt", Value: -1}}},
	{collection: "visitors", name: "visitor_email", keys: bson.D{{Key: "email", Value: 1}}, sparse: true},
	{collection: "visitors", name: "visitor_phone", keys: bson.D{{Key: "phone", Value: 1}}, sparse: true},
	{collection: "visitors", name: "visitor_status", keys: bson.D{{Key: "status", Value: 1}}},
	{collection: "visitors", name: "visitor_agent", keys: bson.D{{Key: "assignedAgent", Value: 1}}},
	{collection: "visitors", name: "visitor_sales_exec", keys: bson.D{{Key: "salesExecutive", Value: 1}}},
	{collection: "visitors", name: "visitor_created", keys: bson.D{{Key: "createdAt", Value: -1}}},
	{collection: "chat_messages", name: "chat_visitor_at", keys: bson.D{{Key: "visitorId", Value: 1}, {Key: "at", Value: 1}}},
	{collection: "users", name: "user_email", keys: bson.D{{Key: "email", Value: 1}}, unique: true},
	{collection: "articles", name: "article_slug", keys: bson.D{{Key: "slug", Value: 1}}, unique: true},
}

// EnsureIndexes creates the secondary indexes the queries rely on. Existing
// indexes are left alone.
func EnsureIndexes(ctx context.Context, s *MongoStore) error {
	for _, spec := range indexes {
		opts := options.Index().SetName(spec.name)
		if spec.unique {
			opts.SetUnique(true)
		}
		if spec.sparse {
			opts.SetSparse(true)
		}
		_, err := s.db.Collection(spec.collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    spec.keys,
			Options: opts,
		})
		if err != nil && !isIndexExistsError(err) {
			return fmt.Errorf("create index %s.%s: %w", spec.collection, spec.name, err)
		}
	}
	return nil
}

func isIndexExistsError(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && (cmdErr.Code == 85 || cmdErr.Code == 86) {
		return true
	}
	return strings.Contains(err.Error(), "already exists")
}
