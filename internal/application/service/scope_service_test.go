package service

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	"github.com/sangkips/enquiry-api/internal/domain/filter"
	"github.com/sangkips/enquiry-api/internal/infrastructure/memstore"
	infraRepo "github.com/sangkips/enquiry-api/internal/infrastructure/repository"
)

func visitorDoc(t *testing.T, v entity.Visitor) filter.M {
	t.Helper()
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	doc, err := filter.Doc(v)
	require.NoError(t, err)
	return doc
}

func TestResolveScope_Admin(t *testing.T) {
	f := ResolveScope(entity.Principal{Role: enum.RoleAdmin}, nil)
	assert.True(t, f.IsAll())
}

func TestResolveScope_SalesExecutiveIffProperty(t *testing.T) {
	me := primitive.NewObjectID()
	other := primitive.NewObjectID()
	p := entity.Principal{ID: me.Hex(), Name: "Sanjana Pawar", Role: enum.RoleSalesExecutive}
	scope := ResolveScope(p, nil)

	ids := []*primitive.ObjectID{nil, &me, &other}
	names := []string{"", "Sanjana Pawar", "Vishal"}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		v := entity.Visitor{Name: "lead", Email: "l@example.com"}
		v.AssignedAgent = ids[rng.Intn(len(ids))]
		v.SalesExecutive = ids[rng.Intn(len(ids))]
		v.AgentName = names[rng.Intn(len(names))]
		v.SalesExecutiveName = names[rng.Intn(len(names))]
		v.Region = "Pune"

		want := (v.AssignedAgent != nil && *v.AssignedAgent == me) ||
			(v.SalesExecutive != nil && *v.SalesExecutive == me) ||
			v.AgentName == p.Name ||
			v.SalesExecutiveName == p.Name

		assert.Equal(t, want, scope.Match(visitorDoc(t, v)), "visitor %+v", v.Assignment)
	}
}

func TestResolveScope_CustomerExecutive(t *testing.T) {
	me := primitive.NewObjectID()
	p := entity.Principal{ID: me.Hex(), Name: "Asha", Role: enum.RoleCustomerExecutive, Region: "Nashik"}
	scope := ResolveScope(p, []string{"Water Testing", " "})

	byRegion := entity.Visitor{Region: "Nashik"}
	byService := entity.Visitor{Service: "Water Testing"}
	byAgentID := entity.Visitor{}
	byAgentID.AssignedAgent = &me
	bySalesName := entity.Visitor{}
	bySalesName.SalesExecutiveName = "Asha"
	unrelated := entity.Visitor{Region: "Pune", Service: "Soil Testing"}

	assert.True(t, scope.Match(visitorDoc(t, byRegion)))
	assert.True(t, scope.Match(visitorDoc(t, byService)))
	assert.True(t, scope.Match(visitorDoc(t, byAgentID)))
	assert.False(t, scope.Match(visitorDoc(t, bySalesName)))
	assert.False(t, scope.Match(visitorDoc(t, unrelated)))
}

func TestResolveScope_FailsClosed(t *testing.T) {
	// unknown role with a usable id sees only its own assignments
	me := primitive.NewObjectID()
	scope := ResolveScope(entity.Principal{ID: me.Hex(), Name: "Ghost", Role: "intern"}, nil)
	assert.False(t, scope.IsAll())

	mine := entity.Visitor{}
	mine.AssignedAgent = &me
	byName := entity.Visitor{}
	byName.AgentName = "Ghost"
	assert.True(t, scope.Match(visitorDoc(t, mine)))
	assert.False(t, scope.Match(visitorDoc(t, byName)))

	// nothing usable at all matches nothing
	assert.True(t, ResolveScope(entity.Principal{ID: "vishal_1", Role: "intern"}, nil).IsNone())
	assert.True(t, ResolveScope(entity.Principal{ID: "bad", Role: enum.RoleSalesExecutive}, nil).IsNone())
	assert.True(t, ResolveScope(entity.Principal{Role: enum.RoleCustomerExecutive}, nil).IsNone())
}

func TestScopeService_LoadsServicesForCustomerExecutives(t *testing.T) {
	ctx := context.Background()
	execRepo := infraRepo.NewExecutiveServiceRepository(memstore.New())
	me := primitive.NewObjectID()
	require.NoError(t, execRepo.Set(ctx, &entity.ExecutiveServices{ExecutiveID: me, Services: []string{"Food Testing"}}))

	svc := NewScopeService(execRepo)
	scope, err := svc.Scope(ctx, entity.Principal{ID: me.Hex(), Role: enum.RoleCustomerExecutive})
	require.NoError(t, err)

	assert.True(t, scope.Match(visitorDoc(t, entity.Visitor{Service: "Food Testing"})))
	assert.False(t, scope.Match(visitorDoc(t, entity.Visitor{Service: "Soil Testing"})))

	adminScope, err := svc.Scope(ctx, entity.Principal{Role: enum.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, adminScope.IsAll())
}
