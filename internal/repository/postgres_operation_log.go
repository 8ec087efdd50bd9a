package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"tenant-service/internal/model"
	"tenant-service/pkg/database"
)

const operationLogColumns = "id, admin_id, tenant_id, operation_type, details, created_at"

// PostgresOperationLogRepository appends to the control-plane operation log
type PostgresOperationLogRepository struct {
	pool          *database.Pool
	controlSchema string
	table         string
}

var _ OperationLogRepository = (*PostgresOperationLogRepository)(nil)

// NewPostgresOperationLogRepository creates an operation log repository
func NewPostgresOperationLogRepository(pool *database.Pool, controlSchema string) *PostgresOperationLogRepository {
	return &PostgresOperationLogRepository{
		pool:          pool,
		controlSchema: controlSchema,
		table:         database.Table(controlSchema, model.TenantOperationLog{}.TableName()),
	}
}

// AppendWith writes one log row on the caller's connection
func (r *PostgresOperationLogRepository) AppendWith(c *database.Conn, entry model.NewOperationLog) (Result[model.TenantOperationLog], error) {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return Result[model.TenantOperationLog]{}, fmt.Errorf("failed to encode operation details: %w", err)
	}

	var row model.TenantOperationLog
	n, err := c.Query(&row,
		"INSERT INTO "+r.table+" (admin_id, tenant_id, operation_type, details, created_at) VALUES (?, ?, ?, ?::jsonb, now()) RETURNING "+operationLogColumns,
		entry.AdminID, entry.TenantID, entry.OperationType, string(details))
	return one(n, err, row, "Operation logged", "Operation was not logged")
}

func (r *PostgresOperationLogRepository) FindByTenant(ctx context.Context, tenantID uint) (Result[[]model.TenantOperationLog], error) {
	var rows []model.TenantOperationLog
	_, err := r.pool.Query(ctx, r.controlSchema, &rows,
		"SELECT "+operationLogColumns+" FROM "+r.table+" WHERE tenant_id = ? ORDER BY id ASC", tenantID)
	return many(rows, err, "Operations retrieved successfully")
}
