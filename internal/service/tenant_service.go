package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"tenant-service/internal/model"
	"tenant-service/internal/repository"
	"tenant-service/pkg/database"
	"tenant-service/prometheus"
)

// Transactor runs fn in one transaction on one connection bound to schema
type Transactor interface {
	Tx(ctx context.Context, schema string, fn func(*database.Conn) error) error
}

// Invalidator forgets cached tenant resolutions
type Invalidator interface {
	Invalidate(ctx context.Context, key string)
}

// TenantService provisions and manages tenants. Every mutation requires an
// active admin and writes exactly one operation log row in its transaction.
type TenantService struct {
	tx            Transactor
	controlSchema string
	admins        AdminGate
	tenants       repository.TenantRepository
	logs          repository.OperationLogRepository
	cache         Invalidator
}

// NewTenantService creates a tenant service
func NewTenantService(tx Transactor, controlSchema string, admins AdminGate, tenants repository.TenantRepository, logs repository.OperationLogRepository, cache Invalidator) *TenantService {
	return &TenantService{
		tx:            tx,
		controlSchema: controlSchema,
		admins:        admins,
		tenants:       tenants,
		logs:          logs,
		cache:         cache,
	}
}

func seedRoles() []database.SeedRole {
	seed := make([]database.SeedRole, 0, len(model.SystemRoles))
	for _, r := range model.SystemRoles {
		seed = append(seed, database.SeedRole{Name: r.Name, Description: r.Description})
	}
	return seed
}

// Create inserts the tenant, creates its schema with seeded roles and logs
// the operation, all in one transaction
func (s *TenantService) Create(ctx context.Context, adminID uint, dto model.CreateTenantDTO) model.Response[model.Tenant] {
	return Op[model.CreateTenantDTO, model.Tenant]{
		Name:     "create tenant",
		Validate: validateCreateTenant,
		Guard: func(ctx context.Context, _ model.CreateTenantDTO) error {
			return s.admins.RequireActive(ctx, adminID)
		},
		Persist: func(ctx context.Context, dto model.CreateTenantDTO) (repository.Result[model.Tenant], error) {
			dto.Name = strings.TrimSpace(dto.Name)

			var result repository.Result[model.Tenant]
			err := s.tx.Tx(ctx, s.controlSchema, func(c *database.Conn) error {
				created, err := s.tenants.CreateWith(c, dto)
				if err != nil {
					return err
				}
				if !created.Success {
					return errors.New("tenant insert returned no row")
				}
				tenant := created.Data

				if err := database.ProvisionTenantSchema(c, tenant.SchemaName, seedRoles()); err != nil {
					return err
				}

				if _, err := s.logs.AppendWith(c, model.NewOperationLog{
					AdminID:       adminID,
					TenantID:      tenant.ID,
					OperationType: model.OpCreateTenant,
					Details: map[string]string{
						"subdomain":   tenant.Subdomain,
						"schema_name": tenant.SchemaName,
						"name":        tenant.Name,
					},
				}); err != nil {
					return err
				}

				result = created
				return nil
			})
			if err == nil {
				prometheus.RecordTenantOperation("create")
			}
			return result, err
		},
		Status:   http.StatusCreated,
		Conflict: "Tenant already exists",
	}.Run(ctx, dto)
}

func (s *TenantService) FindByID(ctx context.Context, id uint) model.Response[model.Tenant] {
	return Op[uint, model.Tenant]{
		Name:     "find tenant",
		Validate: validateID,
		Persist:  s.tenants.FindByID,
	}.Run(ctx, id)
}

func (s *TenantService) FindAll(ctx context.Context) model.Response[[]model.Tenant] {
	return Op[struct{}, []model.Tenant]{
		Name: "list tenants",
		Persist: func(ctx context.Context, _ struct{}) (repository.Result[[]model.Tenant], error) {
			return s.tenants.FindAll(ctx)
		},
	}.Run(ctx, struct{}{})
}

// Update renames a tenant. An unchanged name is a no-op and is not logged.
func (s *TenantService) Update(ctx context.Context, adminID, id uint, dto model.UpdateTenantDTO) model.Response[model.Tenant] {
	return Op[model.UpdateTenantDTO, model.Tenant]{
		Name: "update tenant",
		Validate: func(dto model.UpdateTenantDTO) error {
			if err := validateID(id); err != nil {
				return err
			}
			return validateUpdateTenant(dto)
		},
		Guard: func(ctx context.Context, _ model.UpdateTenantDTO) error {
			return s.admins.RequireActive(ctx, adminID)
		},
		Persist: func(ctx context.Context, dto model.UpdateTenantDTO) (repository.Result[model.Tenant], error) {
			if dto.Name != nil {
				name := strings.TrimSpace(*dto.Name)
				dto.Name = &name
			}

			var result repository.Result[model.Tenant]
			err := s.tx.Tx(ctx, s.controlSchema, func(c *database.Conn) error {
				current, err := s.tenants.FindByIDForUpdateWith(c, id)
				if err != nil {
					return err
				}
				if !current.Success {
					result = current
					return nil
				}
				if dto.Subdomain != nil && *dto.Subdomain != current.Data.Subdomain {
					return badRequest("Subdomain cannot be changed")
				}
				if dto.Name == nil || *dto.Name == current.Data.Name {
					result = repository.Result[model.Tenant]{Success: true, Message: "No changes detected", Data: current.Data}
					return nil
				}

				updated, err := s.tenants.UpdateWith(c, id, current.Data, dto)
				if err != nil || !updated.Success {
					result = updated
					return err
				}

				if _, err := s.logs.AppendWith(c, model.NewOperationLog{
					AdminID:       adminID,
					TenantID:      id,
					OperationType: model.OpUpdateTenant,
					Details: map[string]map[string]string{
						"name": {"from": current.Data.Name, "to": updated.Data.Name},
					},
				}); err != nil {
					return err
				}

				result = updated
				return nil
			})
			if err == nil && result.Success {
				prometheus.RecordTenantOperation("update")
			}
			return result, err
		},
	}.Run(ctx, dto)
}

// Delete soft deletes the tenant and evicts its cached resolution. The schema
// is kept and its name is never reused.
func (s *TenantService) Delete(ctx context.Context, adminID, id uint) model.Response[model.Tenant] {
	return Op[uint, model.Tenant]{
		Name:     "delete tenant",
		Validate: validateID,
		Guard: func(ctx context.Context, _ uint) error {
			return s.admins.RequireActive(ctx, adminID)
		},
		Persist: func(ctx context.Context, id uint) (repository.Result[model.Tenant], error) {
			var result repository.Result[model.Tenant]
			err := s.tx.Tx(ctx, s.controlSchema, func(c *database.Conn) error {
				deleted, err := s.tenants.DeleteWith(c, id)
				if err != nil || !deleted.Success {
					result = deleted
					return err
				}

				if _, err := s.logs.AppendWith(c, model.NewOperationLog{
					AdminID:       adminID,
					TenantID:      id,
					OperationType: model.OpDeleteTenant,
					Details: map[string]string{
						"subdomain":   deleted.Data.Subdomain,
						"schema_name": deleted.Data.SchemaName,
					},
				}); err != nil {
					return err
				}

				result = deleted
				result.Message = "Tenant deletion accepted"
				return nil
			})
			if err == nil && result.Success {
				s.cache.Invalidate(ctx, result.Data.Subdomain)
				prometheus.RecordTenantOperation("delete")
			}
			return result, err
		},
		Status: http.StatusAccepted,
	}.Run(ctx, id)
}

// Operations lists the operation log of a tenant, oldest first
func (s *TenantService) Operations(ctx context.Context, tenantID uint) model.Response[[]model.TenantOperationLog] {
	return Op[uint, []model.TenantOperationLog]{
		Name:     "list tenant operations",
		Validate: validateID,
		Persist:  s.logs.FindByTenant,
	}.Run(ctx, tenantID)
}
