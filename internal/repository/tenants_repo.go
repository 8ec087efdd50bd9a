package repository

import (
	"context"

	"tenant-service/internal/model"
	"tenant-service/pkg/database"
)

// TenantRepository persists tenants in the control plane. The With variants
// run on a connection the caller already holds, so they can join a transaction.
type TenantRepository interface {
	FindByID(ctx context.Context, id uint) (Result[model.Tenant], error)
	FindAll(ctx context.Context) (Result[[]model.Tenant], error)
	CreateWith(c *database.Conn, dto model.CreateTenantDTO) (Result[model.Tenant], error)
	FindByIDForUpdateWith(c *database.Conn, id uint) (Result[model.Tenant], error)
	UpdateWith(c *database.Conn, id uint, current model.Tenant, dto model.UpdateTenantDTO) (Result[model.Tenant], error)
	DeleteWith(c *database.Conn, id uint) (Result[model.Tenant], error)
}

// OperationLogRepository appends and reads tenant operation log rows
type OperationLogRepository interface {
	AppendWith(c *database.Conn, entry model.NewOperationLog) (Result[model.TenantOperationLog], error)
	FindByTenant(ctx context.Context, tenantID uint) (Result[[]model.TenantOperationLog], error)
}
