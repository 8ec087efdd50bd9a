package repository

import (
	"context"

	"tenant-service/internal/model"
	"tenant-service/pkg/database"
)

const userColumns = "id, email, password_hash, first_name, last_name, role_id, active, created_at, updated_at, deleted_at"

// PostgresUserRepository stores users in the users table of the bound schema
type PostgresUserRepository struct {
	pool *database.Pool
}

var _ UserRepository = (*PostgresUserRepository)(nil)

// NewPostgresUserRepository creates a user repository
func NewPostgresUserRepository(pool *database.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

func (r *PostgresUserRepository) Create(ctx context.Context, schema string, user model.NewUser) (Result[model.User], error) {
	var result Result[model.User]
	err := r.pool.Do(ctx, schema, func(c *database.Conn) error {
		var err error
		result, err = r.CreateWith(c, user)
		return err
	})
	return result, err
}

// CreateWith inserts a user on an already bound connection
func (r *PostgresUserRepository) CreateWith(c *database.Conn, user model.NewUser) (Result[model.User], error) {
	var created model.User
	n, err := c.Query(&created,
		"INSERT INTO users (email, password_hash, first_name, last_name, role_id) VALUES (?, ?, ?, ?, ?) RETURNING "+userColumns,
		user.Email, user.PasswordHash, user.FirstName, user.LastName, user.RoleID)
	return one(n, err, created, "User created successfully", "User was not created")
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, schema string, id uint) (Result[model.User], error) {
	var user model.User
	n, err := r.pool.Query(ctx, schema, &user,
		"SELECT "+userColumns+" FROM users WHERE id = ? AND deleted_at IS NULL", id)
	return one(n, err, user, "User found", "User not found")
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, schema, email string) (Result[model.User], error) {
	var user model.User
	n, err := r.pool.Query(ctx, schema, &user,
		"SELECT "+userColumns+" FROM users WHERE lower(email) = lower(?) AND deleted_at IS NULL", email)
	return one(n, err, user, "User found", "User not found")
}

func (r *PostgresUserRepository) FindAll(ctx context.Context, schema string) (Result[[]model.User], error) {
	var users []model.User
	_, err := r.pool.Query(ctx, schema, &users,
		"SELECT "+userColumns+" FROM users WHERE deleted_at IS NULL ORDER BY id ASC")
	return many(users, err, "Users retrieved successfully")
}

// Update applies only the fields that differ from the stored row
func (r *PostgresUserRepository) Update(ctx context.Context, schema string, id uint, dto model.UserChanges) (Result[model.User], error) {
	var result Result[model.User]
	err := r.pool.Tx(ctx, schema, func(c *database.Conn) error {
		var current model.User
		n, err := c.Query(&current,
			"SELECT "+userColumns+" FROM users WHERE id = ? AND deleted_at IS NULL FOR UPDATE", id)
		if err != nil {
			return err
		}
		if n == 0 {
			result = missing[model.User]("User not found")
			return nil
		}

		set := changes{}
		setIfChanged(set, "email", dto.Email, current.Email)
		setIfChanged(set, "password_hash", dto.PasswordHash, current.PasswordHash)
		setIfChangedPtr(set, "first_name", dto.FirstName, current.FirstName)
		setIfChangedPtr(set, "last_name", dto.LastName, current.LastName)
		setIfChangedPtr(set, "role_id", dto.RoleID, current.RoleID)
		setIfChanged(set, "active", dto.Active, current.Active)
		if len(set) == 0 {
			result = ok(current, "No changes detected")
			return nil
		}

		query, args, err := updateStatement("users", id, set, userColumns)
		if err != nil {
			return err
		}
		var updated model.User
		if _, err := c.Query(&updated, query, args...); err != nil {
			return err
		}
		result = ok(updated, "User updated successfully")
		return nil
	})
	return result, err
}

// Delete marks the user deleted; the row is kept
func (r *PostgresUserRepository) Delete(ctx context.Context, schema string, id uint) (Result[model.User], error) {
	var user model.User
	n, err := r.pool.Query(ctx, schema, &user,
		"UPDATE users SET deleted_at = now(), updated_at = now() WHERE id = ? AND deleted_at IS NULL RETURNING "+userColumns, id)
	return one(n, err, user, "User deleted successfully", "User not found")
}
