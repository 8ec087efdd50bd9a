package repository

import (
	"context"

	"tenant-service/internal/model"
)

// SystemAdminRepository persists system admins in the control plane
type SystemAdminRepository interface {
	ControlRepository[model.SystemAdmin, model.NewSystemAdmin, model.SystemAdminChanges]
	FindByEmail(ctx context.Context, email string) (Result[model.SystemAdmin], error)
}
