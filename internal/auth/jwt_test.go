package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManagerWithSecret("test-secret")

	token, err := m.Generate("7000000001", "user-1", time.Minute)
	assert.NoError(t, err)

	claims, err := m.Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, "7000000001", claims.TenantID)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestManager_RejectsWrongSecret(t *testing.T) {
	token, err := NewManagerWithSecret("secret-a").Generate("7000000001", "user-1", time.Minute)
	assert.NoError(t, err)

	_, err = NewManagerWithSecret("secret-b").Validate(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestManager_RejectsExpired(t *testing.T) {
	m := NewManagerWithSecret("test-secret")

	token, err := m.Generate("7000000001", "user-1", -time.Minute)
	assert.NoError(t, err)

	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestManager_RejectsMissingTenant(t *testing.T) {
	m := NewManagerWithSecret("test-secret")

	token, err := m.Generate("", "user-1", time.Minute)
	assert.NoError(t, err)

	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestManager_NoSecretConfigured(t *testing.T) {
	m := &Manager{}

	_, err := m.Generate("7000000001", "user-1", time.Minute)
	assert.ErrorIs(t, err, ErrNoSecret)

	_, err = m.Validate("anything")
	assert.ErrorIs(t, err, ErrNoSecret)
}
