package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
)

func TestFAQIndex_MatchesClosestQuestion(t *testing.T) {
	idx, err := NewFAQIndex()
	require.NoError(t, err)
	defer idx.Close()

	water := entity.FAQ{ID: primitive.NewObjectID(), Question: "How much does water testing cost?", Answer: "Water testing starts at 1500.", Keywords: []string{"price", "water"}, Active: true}
	soil := entity.FAQ{ID: primitive.NewObjectID(), Question: "How long does a soil report take?", Answer: "About five working days.", Keywords: []string{"soil", "turnaround"}, Active: true}
	hidden := entity.FAQ{ID: primitive.NewObjectID(), Question: "What is the water testing discount?", Answer: "secret", Active: false}
	require.NoError(t, idx.Rebuild([]entity.FAQ{water, soil, hidden}))
	assert.Equal(t, 2, idx.Size())

	got, score, err := idx.Match("what is the price for testing water", 0)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, water.ID, got.ID)
	assert.Greater(t, score, 0.0)

	got, _, err = idx.Match("soil report turnaround", 0)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, soil.ID, got.ID)
}

func TestFAQIndex_NoMatch(t *testing.T) {
	idx, err := NewFAQIndex()
	require.NoError(t, err)
	defer idx.Close()

	got, _, err := idx.Match("anything", 0)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, idx.Rebuild([]entity.FAQ{{ID: primitive.NewObjectID(), Question: "Opening hours?", Active: true}}))
	got, _, err = idx.Match("   ", 0)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, _, err = idx.Match("opening hours", 1e9)
	require.NoError(t, err)
	assert.Nil(t, got)
}
