package repository

import (
	"context"

	"tenant-service/internal/model"
	"tenant-service/pkg/database"
)

const systemAdminColumns = "id, email, password_hash, name, active, created_at, updated_at"

// PostgresSystemAdminRepository stores admins in the control schema
type PostgresSystemAdminRepository struct {
	pool          *database.Pool
	controlSchema string
	table         string
}

var _ SystemAdminRepository = (*PostgresSystemAdminRepository)(nil)

// NewPostgresSystemAdminRepository creates a system admin repository
func NewPostgresSystemAdminRepository(pool *database.Pool, controlSchema string) *PostgresSystemAdminRepository {
	return &PostgresSystemAdminRepository{
		pool:          pool,
		controlSchema: controlSchema,
		table:         database.Table(controlSchema, model.SystemAdmin{}.TableName()),
	}
}

func (r *PostgresSystemAdminRepository) Create(ctx context.Context, admin model.NewSystemAdmin) (Result[model.SystemAdmin], error) {
	var created model.SystemAdmin
	n, err := r.pool.Query(ctx, r.controlSchema, &created,
		"INSERT INTO "+r.table+" (email, password_hash, name, active, created_at, updated_at) VALUES (?, ?, ?, TRUE, now(), now()) RETURNING "+systemAdminColumns,
		admin.Email, admin.PasswordHash, admin.Name)
	return one(n, err, created, "System admin created successfully", "System admin was not created")
}

func (r *PostgresSystemAdminRepository) FindByID(ctx context.Context, id uint) (Result[model.SystemAdmin], error) {
	var admin model.SystemAdmin
	n, err := r.pool.Query(ctx, r.controlSchema, &admin,
		"SELECT "+systemAdminColumns+" FROM "+r.table+" WHERE id = ?", id)
	return one(n, err, admin, "System admin found", "System admin not found")
}

func (r *PostgresSystemAdminRepository) FindByEmail(ctx context.Context, email string) (Result[model.SystemAdmin], error) {
	var admin model.SystemAdmin
	n, err := r.pool.Query(ctx, r.controlSchema, &admin,
		"SELECT "+systemAdminColumns+" FROM "+r.table+" WHERE lower(email) = lower(?)", email)
	return one(n, err, admin, "System admin found", "System admin not found")
}

func (r *PostgresSystemAdminRepository) FindAll(ctx context.Context) (Result[[]model.SystemAdmin], error) {
	var admins []model.SystemAdmin
	_, err := r.pool.Query(ctx, r.controlSchema, &admins,
		"SELECT "+systemAdminColumns+" FROM "+r.table+" ORDER BY id ASC")
	return many(admins, err, "System admins retrieved successfully")
}

func (r *PostgresSystemAdminRepository) Update(ctx context.Context, id uint, dto model.SystemAdminChanges) (Result[model.SystemAdmin], error) {
	var result Result[model.SystemAdmin]
	err := r.pool.Tx(ctx, r.controlSchema, func(c *database.Conn) error {
		var current model.SystemAdmin
		n, err := c.Query(&current,
			"SELECT "+systemAdminColumns+" FROM "+r.table+" WHERE id = ? FOR UPDATE", id)
		if err != nil {
			return err
		}
		if n == 0 {
			result = missing[model.SystemAdmin]("System admin not found")
			return nil
		}

		set := changes{}
		setIfChanged(set, "email", dto.Email, current.Email)
		setIfChanged(set, "password_hash", dto.PasswordHash, current.PasswordHash)
		setIfChanged(set, "name", dto.Name, current.Name)
		setIfChanged(set, "active", dto.Active, current.Active)
		if len(set) == 0 {
			result = ok(current, "No changes detected")
			return nil
		}

		query, args, err := updateStatement(r.table, id, set, systemAdminColumns)
		if err != nil {
			return err
		}
		var updated model.SystemAdmin
		if _, err := c.Query(&updated, query, args...); err != nil {
			return err
		}
		result = ok(updated, "System admin updated successfully")
		return nil
	})
	return result, err
}

// Delete deactivates the admin; rows are never removed
func (r *PostgresSystemAdminRepository) Delete(ctx context.Context, id uint) (Result[model.SystemAdmin], error) {
	var admin model.SystemAdmin
	n, err := r.pool.Query(ctx, r.controlSchema, &admin,
		"UPDATE "+r.table+" SET active = FALSE, updated_at = now() WHERE id = ? RETURNING "+systemAdminColumns, id)
	return one(n, err, admin, "System admin deactivated successfully", "System admin not found")
}
