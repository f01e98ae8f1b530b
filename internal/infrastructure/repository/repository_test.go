package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/filter"
	domainRepo "github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/internal/infrastructure/memstore"
	"github.com/sangkips/enquiry-api/pkg/pagination"
)

func newVisitor(name string) *entity.Visitor {
	now := time.Now().UTC()
	return &entity.Visitor{
		ID:             primitive.NewObjectID(),
		Name:           name,
		Email:          name + "@example.com",
		Status:         "new",
		Version:        1,
		CreatedAt:      now,
		LastModifiedAt: now,
	}
}

func TestVisitorRepository_UpdateVersionConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewVisitorRepository(memstore.New())
	v := newVisitor("ravi")
	require.NoError(t, repo.Create(ctx, v))

	one := int64(1)
	patch := domainRepo.Patch{Set: map[string]any{"comments": "called"}, Inc: map[string]int64{"version": 1}}

	updated, err := repo.Update(ctx, v.ID, filter.All(), &one, patch)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, int64(2), updated.Version)

	_, err = repo.Update(ctx, v.ID, filter.All(), &one, patch)
	assert.ErrorIs(t, err, domainRepo.ErrVersionConflict)

	// out of scope looks missing, not stale
	missing, err := repo.Update(ctx, v.ID, filter.None(), &one, patch)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestVisitorRepository_CreateInitializesHistories(t *testing.T) {
	ctx := context.Background()
	repo := NewVisitorRepository(memstore.New())
	v := newVisitor("asha")
	require.NoError(t, repo.Create(ctx, v))

	got, err := repo.GetByID(ctx, v.ID, filter.All())
	require.NoError(t, err)
	assert.NotNil(t, got.PipelineHistory)
	assert.NotNil(t, got.AssignmentHistory)
	assert.Nil(t, got.AssignedAgent)
}

func TestVisitorRepository_BatchWalksInIDOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewVisitorRepository(memstore.New())
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, repo.Create(ctx, newVisitor(n)))
	}

	var seen []string
	after := primitive.NilObjectID
	for {
		batch, err := repo.Batch(ctx, filter.All(), after, 2)
		require.NoError(t, err)
		if len(batch) == 0 {
			break
		}
		for _, v := range batch {
			seen = append(seen, v.Name)
		}
		after = batch[len(batch)-1].ID
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, seen)
}

func TestVisitorRepository_FindByContact(t *testing.T) {
	ctx := context.Background()
	repo := NewVisitorRepository(memstore.New())
	v := newVisitor("meera")
	v.Phone = "+91 98200 00000"
	require.NoError(t, repo.Create(ctx, v))

	got, err := repo.FindByContact(ctx, "", "+91 98200 00000")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, v.ID, got.ID)

	none, err := repo.FindByContact(ctx, "", "")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestEnquiryRepository_UpdateByVisitorAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewEnquiryRepository(memstore.New())
	visitorID := primitive.NewObjectID()
	for i := 0; i < 2; i++ {
		require.NoError(t, repo.Create(ctx, &entity.Enquiry{ID: primitive.NewObjectID(), VisitorID: &visitorID, Name: "x", Email: "x@example.com"}))
	}
	unlinked := &entity.Enquiry{ID: primitive.NewObjectID(), Name: "y", Phone: "1"}
	require.NoError(t, repo.Create(ctx, unlinked))

	n, err := repo.CountByVisitor(ctx, visitorID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	res, err := repo.UpdateByVisitor(ctx, visitorID, domainRepo.Patch{Set: map[string]any{"agentName": "Sanjana Pawar"}})
	require.NoError(t, err)
	assert.Equal(t, domainRepo.UpdateResult{Matched: 2, Modified: 2}, res)

	list, total, err := repo.List(ctx, filter.Eq("agentName", "Sanjana Pawar"), pagination.DefaultPagination())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	deleted, err := repo.Delete(ctx, unlinked.ID, filter.All())
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repo.Delete(ctx, unlinked.ID, filter.All())
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestExecutiveServiceRepository_SetUpserts(t *testing.T) {
	ctx := context.Background()
	repo := NewExecutiveServiceRepository(memstore.New())
	id := primitive.NewObjectID()

	require.NoError(t, repo.Set(ctx, &entity.ExecutiveServices{ExecutiveID: id, Services: []string{"Water Testing"}}))
	require.NoError(t, repo.Set(ctx, &entity.ExecutiveServices{ExecutiveID: id, Services: []string{"Soil Testing", "Food Testing"}}))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Soil Testing", "Food Testing"}, got.Services)
}
