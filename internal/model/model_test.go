package model

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSystemRole(t *testing.T) {
	for _, name := range []string{"TENANT_ADMIN", "tenant_admin", " Tenant_Admin ", "user", "USER"} {
		assert.True(t, IsSystemRole(name), name)
	}
	for _, name := range []string{"Manager", "USERS", "TENANT ADMIN", ""} {
		assert.False(t, IsSystemRole(name), name)
	}
}

func TestSchemaNameFor(t *testing.T) {
	assert.Equal(t, "tenant_demo", SchemaNameFor("demo"))
}

func TestResponse_FailHasNullData(t *testing.T) {
	body, err := json.Marshal(Fail[Role](http.StatusBadRequest, "invalid tenant"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":null,"message":"invalid tenant","statusCode":400}`, string(body))
}

func TestResponse_CreatedCarriesData(t *testing.T) {
	resp := Created(Role{ID: 3, Name: "Manager"}, "Role created successfully")

	assert.True(t, resp.Success())
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "Manager", resp.Data.Name)
}

func TestUser_HidesPasswordHash(t *testing.T) {
	body, err := json.Marshal(User{ID: 1, Email: "a@example.com", PasswordHash: "$argon2id$secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(body), "argon2id")
}
