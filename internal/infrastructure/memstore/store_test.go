package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/filter"
	"github.com/sangkips/enquiry-api/internal/domain/repository"
)

type note struct {
	ID      primitive.ObjectID `bson:"_id"`
	Owner   string             `bson:"owner"`
	Amount  float64            `bson:"amount"`
	At      time.Time          `bson:"at"`
	Version int64              `bson:"version"`
	Log     []string           `bson:"log"`
}

func seed(t *testing.T, c repository.Collection, notes ...note) {
	t.Helper()
	for _, n := range notes {
		require.NoError(t, c.InsertOne(context.Background(), n))
	}
}

func TestInsertOne_RejectsDuplicateID(t *testing.T) {
	c := New().Collection("notes")
	n := note{ID: primitive.NewObjectID(), Log: []string{}}
	seed(t, c, n)

	err := c.InsertOne(context.Background(), n)
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
}

func TestFind_SortSkipLimit(t *testing.T) {
	ctx := context.Background()
	c := New().Collection("notes")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seed(t, c, note{ID: primitive.NewObjectID(), Owner: "a", At: base.Add(time.Duration(i) * time.Hour), Log: []string{}})
	}

	var got []note
	err := c.Find(ctx, filter.Eq("owner", "a"), repository.FindOptions{
		Sort:  []repository.SortField{{Field: "at", Desc: true}},
		Skip:  1,
		Limit: 2,
	}, &got)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].At.Equal(base.Add(3*time.Hour)))
	assert.True(t, got[1].At.Equal(base.Add(2*time.Hour)))
}

func TestFindOneAndUpdate_AppliesPatchAtomically(t *testing.T) {
	ctx := context.Background()
	c := New().Collection("notes")
	id := primitive.NewObjectID()
	seed(t, c, note{ID: id, Owner: "a", Version: 1, Log: []string{}})

	var out note
	found, err := c.FindOneAndUpdate(ctx, filter.And(filter.Eq("_id", id), filter.Eq("version", int64(1))), repository.Patch{
		Set:  map[string]any{"owner": "b"},
		Push: map[string]any{"log": "moved"},
		Inc:  map[string]int64{"version": 1},
	}, &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "b", out.Owner)
	assert.Equal(t, int64(2), out.Version)
	assert.Equal(t, []string{"moved"}, out.Log)

	// stale version no longer matches
	found, err = c.FindOneAndUpdate(ctx, filter.And(filter.Eq("_id", id), filter.Eq("version", int64(1))), repository.Patch{
		Set: map[string]any{"owner": "c"},
	}, &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpdateMany_CountsMatchedAndModified(t *testing.T) {
	ctx := context.Background()
	c := New().Collection("notes")
	seed(t, c,
		note{ID: primitive.NewObjectID(), Owner: "x", Log: []string{}},
		note{ID: primitive.NewObjectID(), Owner: "y", Log: []string{}},
		note{ID: primitive.NewObjectID(), Owner: "z", Log: []string{}},
	)

	res, err := c.UpdateMany(ctx, filter.In("owner", "x", "y"), repository.Patch{Set: map[string]any{"owner": "x"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Matched)
	assert.Equal(t, int64(1), res.Modified)

	n, err := c.Count(ctx, filter.Eq("owner", "x"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestPush_OntoNullFails(t *testing.T) {
	ctx := context.Background()
	c := New().Collection("notes")
	id := primitive.NewObjectID()
	seed(t, c, note{ID: id})

	_, err := c.UpdateOne(ctx, filter.Eq("_id", id), repository.Patch{Push: map[string]any{"log": "x"}})
	assert.Error(t, err)
}

func TestGroup_ByFieldAndMonth(t *testing.T) {
	ctx := context.Background()
	c := New().Collection("notes")
	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	seed(t, c,
		note{ID: primitive.NewObjectID(), Owner: "a", Amount: 10, At: jan, Log: []string{}},
		note{ID: primitive.NewObjectID(), Owner: "a", Amount: 5, At: feb, Log: []string{}},
		note{ID: primitive.NewObjectID(), Owner: "b", Amount: 1, At: feb, Log: []string{}},
	)

	byOwner, err := c.Group(ctx, filter.All(), repository.Grouping{Field: "owner", SumField: "amount"})
	require.NoError(t, err)
	assert.Equal(t, []repository.Bucket{{Key: "a", Count: 2, Sum: 15}, {Key: "b", Count: 1, Sum: 1}}, byOwner)

	byMonth, err := c.Group(ctx, filter.All(), repository.Grouping{MonthOf: "at"})
	require.NoError(t, err)
	assert.Equal(t, []repository.Bucket{{Key: "2026-01", Count: 1}, {Key: "2026-02", Count: 2}}, byMonth)
}

func TestGroup_FallsBackToFirstPresentField(t *testing.T) {
	ctx := context.Background()
	c := New().Collection("visitors")
	for _, doc := range []bson.M{
		{"_id": primitive.NewObjectID(), "status": "won"},
		{"_id": primitive.NewObjectID(), "stage": "won"},
		{"_id": primitive.NewObjectID(), "status": nil, "state": "open", "stage": "won"},
		{"_id": primitive.NewObjectID()},
	} {
		require.NoError(t, c.InsertOne(ctx, doc))
	}

	buckets, err := c.Group(ctx, filter.All(), repository.Grouping{Field: "status", Fallbacks: []string{"state", "stage"}})
	require.NoError(t, err)
	assert.Equal(t, []repository.Bucket{{Key: "", Count: 1}, {Key: "open", Count: 1}, {Key: "won", Count: 2}}, buckets)
}

func TestDeleteOne_And_NoneFilter(t *testing.T) {
	ctx := context.Background()
	c := New().Collection("notes")
	id := primitive.NewObjectID()
	seed(t, c, note{ID: id, Log: []string{}})

	n, err := c.DeleteOne(ctx, filter.None())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = c.DeleteOne(ctx, filter.Eq("_id", id))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, err := c.FindOne(ctx, filter.Eq("_id", id), &note{})
	require.NoError(t, err)
	assert.False(t, found)
}
