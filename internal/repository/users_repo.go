package repository

import (
	"context"

	"tenant-service/internal/model"
	"tenant-service/pkg/database"
)

// UserRepository persists users inside a tenant schema. Deleted users are
// hidden from every read.
type UserRepository interface {
	Repository[model.User, model.NewUser, model.UserChanges]
	FindByEmail(ctx context.Context, schema, email string) (Result[model.User], error)
	CreateWith(c *database.Conn, user model.NewUser) (Result[model.User], error)
}
