package model

import (
	"strings"
	"time"
)

// Reserved role names, defined for the whole system
const (
	RoleTenantAdmin = "TENANT_ADMIN"
	RoleUser        = "USER"
)

// SystemRole is a reserved role seeded into every tenant schema
type SystemRole struct {
	Name        string
	Description string
}

// SystemRoles lists the reserved roles
var SystemRoles = []SystemRole{
	{Name: RoleTenantAdmin, Description: "Tenant administrator"},
	{Name: RoleUser, Description: "Regular user"},
}

// IsSystemRole reports whether name matches a reserved role, ignoring case
func IsSystemRole(name string) bool {
	name = strings.TrimSpace(name)
	for _, r := range SystemRoles {
		if strings.EqualFold(name, r.Name) {
			return true
		}
	}
	return false
}

// Role lives in a tenant schema
type Role struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateRoleDTO is the input for creating a role
type CreateRoleDTO struct {
	Name        string `json:"name" validate:"required,notblank,max=50,rolename"`
	Description string `json:"description" validate:"max=255"`
}

// UpdateRoleDTO is a sparse role update; nil fields are left unchanged
type UpdateRoleDTO struct {
	Name        *string `json:"name,omitempty" validate:"omitnil,notblank,max=50,rolename"`
	Description *string `json:"description,omitempty" validate:"omitnil,max=255"`
}
