package service

import (
	"context"
	"errors"
	"net/http"

	"tenant-service/internal/model"
	"tenant-service/internal/repository"
	"tenant-service/pkg/database"
	"tenant-service/pkg/hash"
)

// TenantUserService lets an admin manage users of any tenant. The user insert
// and its log row share one transaction on the tenant's connection.
type TenantUserService struct {
	tx      Transactor
	admins  AdminGate
	tenants repository.TenantRepository
	users   repository.UserRepository
	logs    repository.OperationLogRepository
	hasher  hash.Hasher
}

// NewTenantUserService creates a cross-tenant user service
func NewTenantUserService(tx Transactor, admins AdminGate, tenants repository.TenantRepository, users repository.UserRepository, logs repository.OperationLogRepository, hasher hash.Hasher) *TenantUserService {
	return &TenantUserService{tx: tx, admins: admins, tenants: tenants, users: users, logs: logs, hasher: hasher}
}

func (s *TenantUserService) tenant(ctx context.Context, tenantID uint) (model.Tenant, error) {
	res, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return model.Tenant{}, err
	}
	if !res.Success {
		return model.Tenant{}, fail(http.StatusNotFound, res.Message)
	}
	return res.Data, nil
}

func (s *TenantUserService) CreateUser(ctx context.Context, adminID, tenantID uint, dto model.CreateUserDTO) model.Response[model.User] {
	return Op[model.CreateUserDTO, model.User]{
		Name: "create tenant user",
		Validate: func(dto model.CreateUserDTO) error {
			if err := validateID(tenantID); err != nil {
				return err
			}
			return validateCreateUser(dto)
		},
		Guard: func(ctx context.Context, _ model.CreateUserDTO) error {
			return s.admins.RequireActive(ctx, adminID)
		},
		Persist: func(ctx context.Context, dto model.CreateUserDTO) (repository.Result[model.User], error) {
			tenant, err := s.tenant(ctx, tenantID)
			if err != nil {
				return repository.Result[model.User]{}, err
			}
			user, err := newUserFrom(s.hasher, dto)
			if err != nil {
				return repository.Result[model.User]{}, err
			}

			var result repository.Result[model.User]
			err = s.tx.Tx(ctx, tenant.SchemaName, func(c *database.Conn) error {
				created, err := s.users.CreateWith(c, user)
				if err != nil {
					return err
				}
				if !created.Success {
					return errors.New("user insert returned no row")
				}
				if _, err := s.logs.AppendWith(c, model.NewOperationLog{
					AdminID:       adminID,
					TenantID:      tenant.ID,
					OperationType: model.OpCreateTenantUser,
					Details: map[string]interface{}{
						"user_id": created.Data.ID,
						"email":   created.Data.Email,
					},
				}); err != nil {
					return err
				}
				result = created
				return nil
			})
			return result, err
		},
		Status:   http.StatusCreated,
		Conflict: "Email already registered",
	}.Run(ctx, dto)
}

func (s *TenantUserService) ListUsers(ctx context.Context, adminID, tenantID uint) model.Response[[]model.User] {
	return Op[uint, []model.User]{
		Name:     "list tenant users",
		Validate: validateID,
		Guard: func(ctx context.Context, _ uint) error {
			return s.admins.RequireActive(ctx, adminID)
		},
		Persist: func(ctx context.Context, tenantID uint) (repository.Result[[]model.User], error) {
			tenant, err := s.tenant(ctx, tenantID)
			if err != nil {
				return repository.Result[[]model.User]{}, err
			}
			return s.users.FindAll(ctx, tenant.SchemaName)
		},
	}.Run(ctx, tenantID)
}
