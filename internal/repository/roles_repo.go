package repository

import (
	"context"

	"tenant-service/internal/model"
)

// RoleRepository persists roles inside a tenant schema
type RoleRepository interface {
	Repository[model.Role, model.CreateRoleDTO, model.UpdateRoleDTO]
	FindByName(ctx context.Context, schema, name string) (Result[model.Role], error)
}
