package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shopfront/internal/model"
)

func TestCan(t *testing.T) {
	tests := []struct {
		name       string
		role       model.Role
		permission Permission
		want       bool
	}{
		{"admin manages products", model.RoleAdmin, ManageProducts, true},
		{"admin manages categories", model.RoleAdmin, ManageCategories, true},
		{"admin manages users", model.RoleAdmin, ManageUsers, true},
		{"admin views catalog", model.RoleAdmin, ViewCatalog, true},
		{"user views catalog", model.RoleUser, ViewCatalog, true},
		{"user cannot manage products", model.RoleUser, ManageProducts, false},
		{"user cannot manage categories", model.RoleUser, ManageCategories, false},
		{"user cannot manage users", model.RoleUser, ManageUsers, false},
		{"unknown role holds nothing", model.Role("root"), ViewCatalog, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.role, tt.permission))
		})
	}
}

func TestGrants(t *testing.T) {
	admin := Grants(model.RoleAdmin)
	for p, granted := range admin {
		assert.True(t, granted, "admin should hold %s", p)
	}

	user := Grants(model.RoleUser)
	assert.True(t, user[ViewCatalog])
	assert.False(t, user[ManageProducts])
	assert.False(t, user[ManageCategories])
	assert.False(t, user[ManageUsers])

	// Grants always enumerates every permission so clients can render
	// from the map without nil checks.
	assert.Len(t, Grants(model.Role("unknown")), 4)
}
