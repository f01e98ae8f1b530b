package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
)

func TestAccessToken_RoundTripsPrincipal(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 24*time.Hour)
	p := entity.Principal{ID: "65f1c0ffee0000000000abcd", Name: "Sanjana Pawar", Role: enum.RoleSalesExecutive, Region: "Pune"}

	token, err := m.GenerateAccessToken(p, "sanjana@example.com")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, p, claims.Principal())
	assert.Equal(t, "sanjana@example.com", claims.Email)
}

func TestAccessToken_WrongSecretRejected(t *testing.T) {
	token, err := NewJWTManager("a", time.Hour, time.Hour).GenerateAccessToken(entity.Principal{ID: "x", Role: enum.RoleAdmin}, "")
	require.NoError(t, err)

	_, err = NewJWTManager("b", time.Hour, time.Hour).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestRefreshToken_NotUsableAsAccessToken(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, time.Hour)
	refresh, err := m.GenerateRefreshToken("65f1c0ffee0000000000abcd")
	require.NoError(t, err)

	id, err := m.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "65f1c0ffee0000000000abcd", id)

	_, err = m.ValidateAccessToken(refresh)
	assert.Error(t, err)

	access, err := m.GenerateAccessToken(entity.Principal{ID: "x", Role: enum.RoleAdmin}, "")
	require.NoError(t, err)
	_, err = m.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "water-testing-101", Slugify("  Water Testing: 101 "))
	assert.Equal(t, "a-b", Slugify("a -- b"))
	assert.Regexp(t, `^soil-testing-[0-9a-f]{8}$`, UniqueSlug("Soil Testing"))
}
