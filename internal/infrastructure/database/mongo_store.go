package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sangkips/enquiry-api/internal/domain/filter"
	"github.com/sangkips/enquiry-api/internal/domain/repository"
)

// MongoStore implements repository.Store over one MongoDB database
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database)}
}

func (s *MongoStore) Collection(name string) repository.Collection {
	return &mongoCollection{coll: s.db.Collection(name)}
}

func (s *MongoStore) Kind() string { return "mongo" }

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc any) error {
	_, err := c.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicateKey
	}
	return err
}

func (c *mongoCollection) FindOne(ctx context.Context, f filter.Filter, out any) (bool, error) {
	err := c.coll.FindOne(ctx, f.BSON()).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return err == nil, err
}

func (c *mongoCollection) Find(ctx context.Context, f filter.Filter, opts repository.FindOptions, out any) error {
	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		sort := bson.D{}
		for _, s := range opts.Sort {
			dir := 1
			if s.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: s.Field, Value: dir})
		}
		findOpts.SetSort(sort)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cursor, err := c.coll.Find(ctx, f.BSON(), findOpts)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

func (c *mongoCollection) Count(ctx context.Context, f filter.Filter) (int64, error) {
	return c.coll.CountDocuments(ctx, f.BSON())
}

func (c *mongoCollection) UpdateOne(ctx context.Context, f filter.Filter, p repository.Patch) (repository.UpdateResult, error) {
	if p.IsEmpty() {
		return c.matchedOnly(ctx, f, false)
	}
	res, err := c.coll.UpdateOne(ctx, f.BSON(), p.BSON())
	if err != nil {
		return repository.UpdateResult{}, err
	}
	return repository.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (c *mongoCollection) UpdateMany(ctx context.Context, f filter.Filter, p repository.Patch) (repository.UpdateResult, error) {
	if p.IsEmpty() {
		return c.matchedOnly(ctx, f, true)
	}
	res, err := c.coll.UpdateMany(ctx, f.BSON(), p.BSON())
	if err != nil {
		return repository.UpdateResult{}, err
	}
	return repository.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// matchedOnly answers an empty update, which MongoDB would reject
func (c *mongoCollection) matchedOnly(ctx context.Context, f filter.Filter, many bool) (repository.UpdateResult, error) {
	n, err := c.coll.CountDocuments(ctx, f.BSON())
	if err != nil {
		return repository.UpdateResult{}, err
	}
	if !many && n > 1 {
		n = 1
	}
	return repository.UpdateResult{Matched: n}, nil
}

func (c *mongoCollection) FindOneAndUpdate(ctx context.Context, f filter.Filter, p repository.Patch, out any) (bool, error) {
	if p.IsEmpty() {
		return c.FindOne(ctx, f, out)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := c.coll.FindOneAndUpdate(ctx, f.BSON(), p.BSON(), opts).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return err == nil, err
}

func (c *mongoCollection) DeleteOne(ctx context.Context, f filter.Filter) (int64, error) {
	res, err := c.coll.DeleteOne(ctx, f.BSON())
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *mongoCollection) Group(ctx context.Context, f filter.Filter, g repository.Grouping) ([]repository.Bucket, error) {
	cursor, err := c.coll.Aggregate(ctx, groupPipeline(f, g))
	if err != nil {
		return nil, err
	}
	buckets := []repository.Bucket{}
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

func groupPipeline(f filter.Filter, g repository.Grouping) mongo.Pipeline {
	key := fieldKey(g.KeyFields())
	if g.MonthOf != "" {
		key = bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$" + g.MonthOf, "timezone": "UTC"}}
	}
	sum := bson.M{"$sum": 0}
	if g.SumField != "" {
		sum = bson.M{"$sum": "$" + g.SumField}
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: f.BSON()}},
		{{Key: "$group", Value: bson.M{
			"_id":   key,
			"count": bson.M{"$sum": 1},
			"sum":   sum,
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
}

// fieldKey nests $ifNull so the first non-null field wins
func fieldKey(fields []string) any {
	var key any = "$" + fields[len(fields)-1]
	for i := len(fields) - 2; i >= 0; i-- {
		key = bson.M{"$ifNull": bson.A{"$" + fields[i], key}}
	}
	return key
}

var _ repository.Store = (*MongoStore)(nil)
