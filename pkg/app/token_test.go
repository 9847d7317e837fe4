package app

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_GenerateAndParse(t *testing.T) {
	tm := NewTokenManager(TokenConfig{SecretKey: "user-secret", Expiry: time.Hour, Issuer: "test-issuer"})

	token, err := tm.Generate("6f1c0c5e-7b1a-4e0e-9a4e-2a4d3d2b1c0f", "a@example.com", "127.0.0.1")
	require.NoError(t, err)

	user, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "6f1c0c5e-7b1a-4e0e-9a4e-2a4d3d2b1c0f", user.UID)
	assert.Equal(t, "a@example.com", user.Email)
	assert.Equal(t, "test-issuer", user.Issuer)

	expected := time.Now().Add(time.Hour).Unix()
	assert.InDelta(t, expected, user.ExpiresAt.Unix(), 1)
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := NewTokenManager(TokenConfig{SecretKey: "user-secret"})
	token, err := tm.Generate("uid-1", "", "")
	require.NoError(t, err)

	other := NewTokenManager(TokenConfig{SecretKey: "wrong-secret"})
	_, err = other.Parse(token)
	assert.Error(t, err, "wrong key")

	_, err = tm.Parse(token + "tampered")
	assert.Error(t, err, "tampered token")

	expired := NewTokenManager(TokenConfig{SecretKey: "user-secret", Expiry: -time.Minute})
	old, err := expired.Generate("uid-1", "", "")
	require.NoError(t, err)
	_, err = tm.Parse(old)
	assert.Error(t, err, "expired token")
}

func TestGetUID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", GetUID(c))

	c.Set(UserTokenKey, &UserEntity{UID: "u1"})
	assert.Equal(t, "u1", GetUID(c))
}
