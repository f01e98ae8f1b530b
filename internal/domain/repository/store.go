package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/sangkips/enquiry-api/internal/domain/filter"
)

var (
	// ErrDuplicateKey is returned by InsertOne when a unique key is already taken
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrVersionConflict is returned when a record exists in scope but no
	// longer has the version the caller read
	ErrVersionConflict = errors.New("version conflict")
)

// Store is a document store handing out named collections
type Store interface {
	Collection(name string) Collection
	// Kind names the backend, e.g. "mongo" or "memory"
	Kind() string
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Collection is the per-collection document API repositories are written against.
// FindOne and FindOneAndUpdate report found=false instead of an error when
// nothing matches.
type Collection interface {
	InsertOne(ctx context.Context, doc any) error
	FindOne(ctx context.Context, f filter.Filter, out any) (bool, error)
	Find(ctx context.Context, f filter.Filter, opts FindOptions, out any) error
	Count(ctx context.Context, f filter.Filter) (int64, error)
	UpdateOne(ctx context.Context, f filter.Filter, p Patch) (UpdateResult, error)
	UpdateMany(ctx context.Context, f filter.Filter, p Patch) (UpdateResult, error)
	FindOneAndUpdate(ctx context.Context, f filter.Filter, p Patch, out any) (bool, error)
	DeleteOne(ctx context.Context, f filter.Filter) (int64, error)
	Group(ctx context.Context, f filter.Filter, g Grouping) ([]Bucket, error)
}

// SortField orders Find results
type SortField struct {
	Field string
	Desc  bool
}

// FindOptions controls ordering and windowing of Find
type FindOptions struct {
	Sort  []SortField
	Skip  int64
	Limit int64
}

// Patch is a partial update: fields to set, array entries to append and
// counters to increment. A single Patch is applied atomically per document.
type Patch struct {
	Set  map[string]any
	Push map[string]any
	Inc  map[string]int64
}

// IsEmpty reports whether applying p would change nothing
func (p Patch) IsEmpty() bool {
	return len(p.Set) == 0 && len(p.Push) == 0 && len(p.Inc) == 0
}

// BSON renders p as a MongoDB update document
func (p Patch) BSON() bson.M {
	update := bson.M{}
	if len(p.Set) > 0 {
		update["$set"] = bson.M(p.Set)
	}
	if len(p.Push) > 0 {
		update["$push"] = bson.M(p.Push)
	}
	if len(p.Inc) > 0 {
		inc := bson.M{}
		for k, v := range p.Inc {
			inc[k] = v
		}
		update["$inc"] = inc
	}
	return update
}

// UpdateResult counts documents matched and actually changed by an update
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// Grouping describes a count/sum aggregation. Exactly one of Field or
// MonthOf is set; MonthOf groups a date field by "YYYY-MM". When Field is
// missing or null on a document, the first present Fallbacks field is the key.
type Grouping struct {
	Field     string
	Fallbacks []string
	MonthOf   string
	SumField  string
}

// KeyFields returns Field followed by its fallbacks
func (g Grouping) KeyFields() []string {
	return append([]string{g.Field}, g.Fallbacks...)
}

// Bucket is one group of an aggregation, sorted by Key
type Bucket struct {
	Key   string  `bson:"_id" json:"key"`
	Count int64   `bson:"count" json:"count"`
	Sum   float64 `bson:"sum" json:"sum"`
}
