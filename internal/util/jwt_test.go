package util

import (
	"testing"
	"time"

	"learning_copilot_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *model.User {
	u := &model.User{
		Name:  "Sam",
		Email: "sam@example.com",
		Role:  model.Teacher,
	}
	u.ID = 42
	return u
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(testUser(), "secret-for-tests", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret-for-tests")
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.Teacher, claims.Role)
	assert.Equal(t, "sam@example.com", claims.Email)
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(testUser(), "secret-for-tests", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "another-secret")
	assert.Error(t, err)
}

func TestParseJWTExpiredToken(t *testing.T) {
	token, err := GenerateJWT(testUser(), "secret-for-tests", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret-for-tests")
	assert.Error(t, err)
}

func TestClaimsIsAdmin(t *testing.T) {
	assert.True(t, (&Claims{Role: model.Admin}).IsAdmin())
	assert.False(t, (&Claims{Role: model.Student}).IsAdmin())
}
