package repository

import (
	"context"

	"tenant-service/internal/model"
	"tenant-service/pkg/database"
)

const roleColumns = "id, name, description, created_at, updated_at"

// PostgresRoleRepository stores roles in the roles table of the bound schema
type PostgresRoleRepository struct {
	pool *database.Pool
}

var _ RoleRepository = (*PostgresRoleRepository)(nil)

// NewPostgresRoleRepository creates a role repository
func NewPostgresRoleRepository(pool *database.Pool) *PostgresRoleRepository {
	return &PostgresRoleRepository{pool: pool}
}

func (r *PostgresRoleRepository) Create(ctx context.Context, schema string, dto model.CreateRoleDTO) (Result[model.Role], error) {
	var role model.Role
	n, err := r.pool.Query(ctx, schema, &role,
		"INSERT INTO roles (name, description) VALUES (?, ?) RETURNING "+roleColumns,
		dto.Name, dto.Description)
	return one(n, err, role, "Role created successfully", "Role was not created")
}

func (r *PostgresRoleRepository) FindByID(ctx context.Context, schema string, id uint) (Result[model.Role], error) {
	var role model.Role
	n, err := r.pool.Query(ctx, schema, &role, "SELECT "+roleColumns+" FROM roles WHERE id = ?", id)
	return one(n, err, role, "Role found", "Role not found")
}

func (r *PostgresRoleRepository) FindByName(ctx context.Context, schema, name string) (Result[model.Role], error) {
	var role model.Role
	n, err := r.pool.Query(ctx, schema, &role, "SELECT "+roleColumns+" FROM roles WHERE lower(name) = lower(?)", name)
	return one(n, err, role, "Role found", "Role not found")
}

func (r *PostgresRoleRepository) FindAll(ctx context.Context, schema string) (Result[[]model.Role], error) {
	var roles []model.Role
	_, err := r.pool.Query(ctx, schema, &roles, "SELECT "+roleColumns+" FROM roles ORDER BY id ASC")
	return many(roles, err, "Roles retrieved successfully")
}

// Update applies only the fields that differ from the stored row. When none
// differ the current row is returned and no UPDATE is issued.
func (r *PostgresRoleRepository) Update(ctx context.Context, schema string, id uint, dto model.UpdateRoleDTO) (Result[model.Role], error) {
	var result Result[model.Role]
	err := r.pool.Tx(ctx, schema, func(c *database.Conn) error {
		var current model.Role
		n, err := c.Query(&current, "SELECT "+roleColumns+" FROM roles WHERE id = ? FOR UPDATE", id)
		if err != nil {
			return err
		}
		if n == 0 {
			result = missing[model.Role]("Role not found")
			return nil
		}

		set := changes{}
		setIfChanged(set, "name", dto.Name, current.Name)
		setIfChanged(set, "description", dto.Description, current.Description)
		if len(set) == 0 {
			result = ok(current, "No changes detected")
			return nil
		}

		query, args, err := updateStatement("roles", id, set, roleColumns)
		if err != nil {
			return err
		}
		var updated model.Role
		if _, err := c.Query(&updated, query, args...); err != nil {
			return err
		}
		result = ok(updated, "Role updated successfully")
		return nil
	})
	return result, err
}

func (r *PostgresRoleRepository) Delete(ctx context.Context, schema string, id uint) (Result[model.Role], error) {
	var role model.Role
	n, err := r.pool.Query(ctx, schema, &role, "DELETE FROM roles WHERE id = ? RETURNING "+roleColumns, id)
	return one(n, err, role, "Role deleted successfully", "Role not found")
}
