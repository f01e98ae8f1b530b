package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type record struct {
	ID        primitive.ObjectID  `bson:"_id"`
	Agent     *primitive.ObjectID `bson:"assignedAgent"`
	AgentName string              `bson:"agentName"`
	Region    string              `bson:"region"`
	CreatedAt time.Time           `bson:"createdAt"`
}

func mustDoc(t *testing.T, v any) M {
	t.Helper()
	doc, err := Doc(v)
	require.NoError(t, err)
	return doc
}

func TestOr_CollapsesNoneAndAll(t *testing.T) {
	assert.True(t, Or().IsNone())
	assert.True(t, Or(None(), None()).IsNone())
	assert.True(t, Or(None(), All()).IsAll())
	assert.Equal(t, Eq("a", 1), Or(None(), Eq("a", 1)))
}

func TestAnd_CollapsesNoneAndAll(t *testing.T) {
	assert.True(t, And().IsAll())
	assert.True(t, And(All(), None(), Eq("a", 1)).IsNone())
	assert.Equal(t, Eq("a", 1), And(All(), Eq("a", 1)))
}

func TestIn_EmptyMatchesNothing(t *testing.T) {
	assert.True(t, In("service").IsNone())
}

func TestMatch_ObjectIDAndNullReference(t *testing.T) {
	agent := primitive.NewObjectID()
	assigned := mustDoc(t, record{ID: primitive.NewObjectID(), Agent: &agent, AgentName: "Sanjana Pawar"})
	unassigned := mustDoc(t, record{ID: primitive.NewObjectID(), AgentName: "vishal_1"})

	byID := Eq("assignedAgent", agent)
	assert.True(t, byID.Match(assigned))
	assert.False(t, byID.Match(unassigned))

	byName := Eq("agentName", "vishal_1")
	assert.True(t, byName.Match(unassigned))
	assert.False(t, byName.Match(assigned))

	either := Or(byID, byName)
	assert.True(t, either.Match(assigned))
	assert.True(t, either.Match(unassigned))
}

func TestMatch_ContainsAndTimeRange(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	doc := mustDoc(t, record{ID: primitive.NewObjectID(), Region: "Pune West", CreatedAt: now})

	assert.True(t, Contains("region", "pune").Match(doc))
	assert.False(t, Contains("region", "mumbai").Match(doc))
	assert.True(t, Gte("createdAt", now).Match(doc))
	assert.False(t, Gte("createdAt", now.Add(time.Second)).Match(doc))
	assert.True(t, Lt("createdAt", now.Add(time.Second)).Match(doc))
	assert.False(t, Lt("createdAt", now).Match(doc))
}

func TestMatch_NoneNeverMatches(t *testing.T) {
	doc := mustDoc(t, record{ID: primitive.NewObjectID()})
	assert.False(t, None().Match(doc))
	assert.True(t, All().Match(doc))
}

func TestBSON_Shapes(t *testing.T) {
	assert.Equal(t, bson.M{}, All().BSON())
	assert.Equal(t, bson.M{"_id": bson.M{"$exists": false}}, None().BSON())

	f := Or(Eq("agentName", "A"), In("service", "Water Testing", "Soil Testing"))
	assert.Equal(t, bson.M{"$or": bson.A{
		bson.M{"agentName": "A"},
		bson.M{"service": bson.M{"$in": []any{"Water Testing", "Soil Testing"}}},
	}}, f.BSON())

	re := Contains("name", "a.b").BSON()["name"].(primitive.Regex)
	assert.Equal(t, `a\.b`, re.Pattern)
	assert.Equal(t, "i", re.Options)
}

func TestField_DottedPath(t *testing.T) {
	doc := M{"meta": bson.M{"owner": "x"}}
	v, ok := doc.Field("meta.owner")
	require.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = doc.Field("meta.missing")
	assert.False(t, ok)
}
