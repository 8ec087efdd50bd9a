package model

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"gorm.io/gorm/schema"
)

// Operation types written to the tenant operation log
const (
	OpCreateTenant     = "CREATE_TENANT"
	OpUpdateTenant     = "UPDATE_TENANT"
	OpDeleteTenant     = "DELETE_TENANT"
	OpCreateTenantUser = "CREATE_TENANT_USER"
)

// TenantOperationLog is an append-only audit row
type TenantOperationLog struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	AdminID       uint           `json:"admin_id" gorm:"index;not null"`
	TenantID      uint           `json:"tenant_id" gorm:"index;not null"`
	OperationType string         `json:"operation_type" gorm:"type:varchar(50);not null"`
	Details       types.JSONText `json:"details" gorm:"type:jsonb"`
	CreatedAt     time.Time      `json:"created_at"`
}

// TableName returns the control-plane table name
func (TenantOperationLog) TableName() string {
	return "tenant_operations_log"
}

// ControlPlaneModels are migrated into the control schema
func ControlPlaneModels() []schema.Tabler {
	return []schema.Tabler{&Tenant{}, &SystemAdmin{}, &TenantOperationLog{}}
}

// NewOperationLog is an entry to append; Details is encoded as JSON
type NewOperationLog struct {
	AdminID       uint
	TenantID      uint
	OperationType string
	Details       interface{}
}
