package models

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	user := NewUser("a@x.com", "$2a$12$hash", "A", "B", "EUR")

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "$2a$12$hash", user.PasswordHash)
	assert.Equal(t, "A", user.FirstName)
	assert.Equal(t, "B", user.LastName)
	assert.Equal(t, "EUR", user.Currency)
	assert.True(t, user.Active)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestNewUser_DefaultCurrency(t *testing.T) {
	user := NewUser("a@x.com", "hash", "A", "B", "")
	assert.Equal(t, DefaultCurrency, user.Currency)
}

func TestUser_PasswordHashNeverSerialized(t *testing.T) {
	user := NewUser("a@x.com", "super-secret-hash", "A", "B", "")

	data, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "super-secret-hash")
	assert.NotContains(t, string(data), "password")

	assert.NotContains(t, fmt.Sprintf("%v", user), "super-secret-hash")
	assert.NotContains(t, fmt.Sprintf("%s", user), "super-secret-hash")
}
