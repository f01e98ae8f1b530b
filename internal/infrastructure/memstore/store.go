// Package memstore is an in-process document store with the same query
// semantics as the Mongo store. It backs tests and the explicit
// STORE_FALLBACK=memory mode; nothing it holds survives a restart.
package memstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/filter"
	"github.com/sangkips/enquiry-api/internal/domain/repository"
)

// Store holds named collections in memory
type Store struct {
	mu          sync.Mutex
	collections map[string]*Collection
}

// New creates an empty store
func New() *Store {
	return &Store{collections: make(map[string]*Collection)}
}

// Collection returns the named collection, creating it on first use
func (s *Store) Collection(name string) repository.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &Collection{name: name}
		s.collections[name] = c
	}
	return c
}

func (s *Store) Kind() string { return "memory" }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close(context.Context) error { return nil }

// Collection keeps documents in insertion order
type Collection struct {
	name string
	mu   sync.RWMutex
	docs []filter.M
}

func (c *Collection) InsertOne(ctx context.Context, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d, err := filter.Doc(doc)
	if err != nil {
		return fmt.Errorf("memstore %s: encode: %w", c.name, err)
	}
	id, ok := d["_id"]
	if !ok || id == nil {
		return fmt.Errorf("memstore %s: document has no _id", c.name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.docs {
		if reflect.DeepEqual(existing["_id"], id) {
			return repository.ErrDuplicateKey
		}
	}
	c.docs = append(c.docs, d)
	return nil
}

func (c *Collection) FindOne(ctx context.Context, f filter.Filter, out any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, d := range c.docs {
		if f.Match(d) {
			return true, decode(d, out)
		}
	}
	return false, nil
}

func (c *Collection) Find(ctx context.Context, f filter.Filter, opts repository.FindOptions, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	matched := c.matching(f)
	if len(opts.Sort) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			return less(matched[i], matched[j], opts.Sort)
		})
	}
	matched = window(matched, opts.Skip, opts.Limit)
	return decodeAll(matched, out)
}

func (c *Collection) Count(ctx context.Context, f filter.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.matching(f))), nil
}

func (c *Collection) UpdateOne(ctx context.Context, f filter.Filter, p repository.Patch) (repository.UpdateResult, error) {
	return c.update(ctx, f, p, false)
}

func (c *Collection) UpdateMany(ctx context.Context, f filter.Filter, p repository.Patch) (repository.UpdateResult, error) {
	return c.update(ctx, f, p, true)
}

func (c *Collection) FindOneAndUpdate(ctx context.Context, f filter.Filter, p repository.Patch, out any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range c.docs {
		if !f.Match(d) {
			continue
		}
		if err := apply(d, p); err != nil {
			return false, fmt.Errorf("memstore %s: %w", c.name, err)
		}
		return true, decode(d, out)
	}
	return false, nil
}

func (c *Collection) DeleteOne(ctx context.Context, f filter.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, d := range c.docs {
		if f.Match(d) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (c *Collection) Group(ctx context.Context, f filter.Filter, g repository.Grouping) ([]repository.Bucket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	buckets := make(map[string]*repository.Bucket)
	for _, d := range c.matching(f) {
		key := groupKey(d, g)
		b, ok := buckets[key]
		if !ok {
			b = &repository.Bucket{Key: key}
			buckets[key] = b
		}
		b.Count++
		if g.SumField != "" {
			if v, ok := d.Field(g.SumField); ok {
				if n, ok := number(v); ok {
					b.Sum += n
				}
			}
		}
	}

	result := make([]repository.Bucket, 0, len(buckets))
	for _, b := range buckets {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (c *Collection) update(ctx context.Context, f filter.Filter, p repository.Patch, many bool) (repository.UpdateResult, error) {
	var res repository.UpdateResult
	if err := ctx.Err(); err != nil {
		return res, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range c.docs {
		if !f.Match(d) {
			continue
		}
		res.Matched++
		before := snapshot(d)
		if err := apply(d, p); err != nil {
			return res, fmt.Errorf("memstore %s: %w", c.name, err)
		}
		if !reflect.DeepEqual(before, d) {
			res.Modified++
		}
		if !many {
			break
		}
	}
	return res, nil
}

func (c *Collection) matching(f filter.Filter) []filter.M {
	if f.IsNone() {
		return nil
	}
	out := make([]filter.M, 0, len(c.docs))
	for _, d := range c.docs {
		if f.Match(d) {
			out = append(out, d)
		}
	}
	return out
}

// apply mutates d in place. Pushing onto a field that is not an array fails
// the same way Mongo rejects $push on null.
func apply(d filter.M, p repository.Patch) error {
	for k, v := range p.Push {
		cur, exists := d[k]
		arr, isArray := cur.(primitive.A)
		if exists && !isArray {
			return fmt.Errorf("cannot push onto non-array field %q", k)
		}
		grown := make(primitive.A, len(arr), len(arr)+1)
		copy(grown, arr)
		d[k] = append(grown, filter.Normalize(v))
	}
	for k, v := range p.Inc {
		cur, _ := number(d[k])
		d[k] = int64(cur) + v
	}
	for k, v := range p.Set {
		d[k] = filter.Normalize(v)
	}
	return nil
}

func snapshot(d filter.M) filter.M {
	cp := make(filter.M, len(d))
	for k, v := range d {
		cp[k] = v
	}
	return cp
}

func less(a, b filter.M, keys []repository.SortField) bool {
	for _, k := range keys {
		av, _ := a.Field(k.Field)
		bv, _ := b.Field(k.Field)
		c, ok := filter.Compare(av, bv)
		if !ok {
			// missing values sort first ascending
			switch {
			case av == nil && bv != nil:
				c = -1
			case av != nil && bv == nil:
				c = 1
			default:
				continue
			}
		}
		if c == 0 {
			continue
		}
		if k.Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}

func window(docs []filter.M, skip, limit int64) []filter.M {
	if skip > 0 {
		if skip >= int64(len(docs)) {
			return nil
		}
		docs = docs[skip:]
	}
	if limit > 0 && limit < int64(len(docs)) {
		docs = docs[:limit]
	}
	return docs
}

func groupKey(d filter.M, g repository.Grouping) string {
	if g.MonthOf != "" {
		v, _ := d.Field(g.MonthOf)
		if dt, ok := v.(primitive.DateTime); ok {
			return dt.Time().UTC().Format("2006-01")
		}
		return ""
	}
	for _, field := range g.KeyFields() {
		if v, ok := d.Field(field); ok && v != nil {
			s, _ := v.(string)
			return s
		}
	}
	return ""
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func decode(d filter.M, out any) error {
	raw, err := bson.Marshal(bson.M(d))
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func decodeAll(docs []filter.M, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("memstore: Find needs a pointer to a slice, got %T", out)
	}
	sliceType := rv.Elem().Type()
	result := reflect.MakeSlice(sliceType, 0, len(docs))
	for _, d := range docs {
		elem := reflect.New(sliceType.Elem())
		if err := decode(d, elem.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, elem.Elem())
	}
	rv.Elem().Set(result)
	return nil
}

var _ repository.Store = (*Store)(nil)
