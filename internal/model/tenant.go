package model

import (
	"time"

	"gorm.io/gorm"
)

// SchemaPrefix is prepended to a subdomain to name the tenant schema
const SchemaPrefix = "tenant_"

// SchemaNameFor derives the schema of a tenant from its subdomain
func SchemaNameFor(subdomain string) string {
	return SchemaPrefix + subdomain
}

// Tenant represents the tenant model stored in the control plane.
// SchemaName is fixed at creation and never reused.
type Tenant struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Subdomain  string         `json:"subdomain" gorm:"type:varchar(50);uniqueIndex;not null"`
	SchemaName string         `json:"schema_name" gorm:"type:varchar(63);uniqueIndex;not null"`
	Name       string         `json:"name" gorm:"type:varchar(100);not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the control-plane table name
func (Tenant) TableName() string {
	return "tenants"
}

// CreateTenantDTO is the request to provision a tenant
type CreateTenantDTO struct {
	Subdomain string `json:"subdomain" validate:"subdomain"`
	Name      string `json:"name" validate:"required,notblank,max=100"`
}

// UpdateTenantDTO edits a tenant. Subdomain is accepted only when it equals
// the stored one; it cannot change after creation.
type UpdateTenantDTO struct {
	Subdomain *string `json:"subdomain,omitempty"`
	Name      *string `json:"name,omitempty" validate:"omitnil,notblank,max=100"`
}
