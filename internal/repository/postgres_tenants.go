package repository

import (
	"context"

	"tenant-service/internal/model"
	"tenant-service/pkg/database"
)

const tenantColumns = "id, subdomain, schema_name, name, created_at, updated_at, deleted_at"

// PostgresTenantRepository stores tenants in the control schema. Statements
// are always schema qualified so they can share a connection bound elsewhere.
type PostgresTenantRepository struct {
	pool          *database.Pool
	controlSchema string
	table         string
}

var _ TenantRepository = (*PostgresTenantRepository)(nil)

// NewPostgresTenantRepository creates a tenant repository
func NewPostgresTenantRepository(pool *database.Pool, controlSchema string) *PostgresTenantRepository {
	return &PostgresTenantRepository{
		pool:          pool,
		controlSchema: controlSchema,
		table:         database.Table(controlSchema, model.Tenant{}.TableName()),
	}
}

func (r *PostgresTenantRepository) FindByID(ctx context.Context, id uint) (Result[model.Tenant], error) {
	var tenant model.Tenant
	n, err := r.pool.Query(ctx, r.controlSchema, &tenant,
		"SELECT "+tenantColumns+" FROM "+r.table+" WHERE id = ? AND deleted_at IS NULL", id)
	return one(n, err, tenant, "Tenant found", "Tenant not found")
}

func (r *PostgresTenantRepository) FindAll(ctx context.Context) (Result[[]model.Tenant], error) {
	var tenants []model.Tenant
	_, err := r.pool.Query(ctx, r.controlSchema, &tenants,
		"SELECT "+tenantColumns+" FROM "+r.table+" WHERE deleted_at IS NULL ORDER BY id ASC")
	return many(tenants, err, "Tenants retrieved successfully")
}

// CreateWith inserts the tenant row; the schema name is derived from the subdomain
func (r *PostgresTenantRepository) CreateWith(c *database.Conn, dto model.CreateTenantDTO) (Result[model.Tenant], error) {
	var tenant model.Tenant
	n, err := c.Query(&tenant,
		"INSERT INTO "+r.table+" (subdomain, schema_name, name, created_at, updated_at) VALUES (?, ?, ?, now(), now()) RETURNING "+tenantColumns,
		dto.Subdomain, model.SchemaNameFor(dto.Subdomain), dto.Name)
	return one(n, err, tenant, "Tenant created successfully", "Tenant was not created")
}

func (r *PostgresTenantRepository) FindByIDForUpdateWith(c *database.Conn, id uint) (Result[model.Tenant], error) {
	var tenant model.Tenant
	n, err := c.Query(&tenant,
		"SELECT "+tenantColumns+" FROM "+r.table+" WHERE id = ? AND deleted_at IS NULL FOR UPDATE", id)
	return one(n, err, tenant, "Tenant found", "Tenant not found")
}

// UpdateWith changes the display name when it differs from current
func (r *PostgresTenantRepository) UpdateWith(c *database.Conn, id uint, current model.Tenant, dto model.UpdateTenantDTO) (Result[model.Tenant], error) {
	set := changes{}
	setIfChanged(set, "name", dto.Name, current.Name)
	if len(set) == 0 {
		return ok(current, "No changes detected"), nil
	}

	query, args, err := updateStatement(r.table, id, set, tenantColumns)
	if err != nil {
		return Result[model.Tenant]{}, err
	}
	var updated model.Tenant
	n, err := c.Query(&updated, query, args...)
	return one(n, err, updated, "Tenant updated successfully", "Tenant not found")
}

// DeleteWith soft deletes the tenant; its schema and name are kept
func (r *PostgresTenantRepository) DeleteWith(c *database.Conn, id uint) (Result[model.Tenant], error) {
	var tenant model.Tenant
	n, err := c.Query(&tenant,
		"UPDATE "+r.table+" SET deleted_at = now(), updated_at = now() WHERE id = ? AND deleted_at IS NULL RETURNING "+tenantColumns, id)
	return one(n, err, tenant, "Tenant deleted successfully", "Tenant not found")
}
