package service

import (
	"context"
	"net/http"
	"strings"

	"tenant-service/internal/model"
	"tenant-service/internal/repository"
)

// RoleService manages roles of one tenant schema and protects the reserved roles
type RoleService struct {
	roles repository.RoleRepository
}

// NewRoleService creates a role service
func NewRoleService(roles repository.RoleRepository) *RoleService {
	return &RoleService{roles: roles}
}

func (s *RoleService) Create(ctx context.Context, schema string, dto model.CreateRoleDTO) model.Response[model.Role] {
	return Op[model.CreateRoleDTO, model.Role]{
		Name:     "create role",
		Validate: validateCreateRole,
		Guard: func(_ context.Context, dto model.CreateRoleDTO) error {
			if model.IsSystemRole(dto.Name) {
				return badRequest("Role name is reserved")
			}
			return nil
		},
		Persist: func(ctx context.Context, dto model.CreateRoleDTO) (repository.Result[model.Role], error) {
			dto.Name = strings.TrimSpace(dto.Name)
			return s.roles.Create(ctx, schema, dto)
		},
		Status:   http.StatusCreated,
		Conflict: "Role already exists",
	}.Run(ctx, dto)
}

func (s *RoleService) FindByID(ctx context.Context, schema string, id uint) model.Response[model.Role] {
	return Op[uint, model.Role]{
		Name:     "find role",
		Validate: validateID,
		Persist: func(ctx context.Context, id uint) (repository.Result[model.Role], error) {
			return s.roles.FindByID(ctx, schema, id)
		},
	}.Run(ctx, id)
}

func (s *RoleService) FindAll(ctx context.Context, schema string) model.Response[[]model.Role] {
	return Op[struct{}, []model.Role]{
		Name: "list roles",
		Persist: func(ctx context.Context, _ struct{}) (repository.Result[[]model.Role], error) {
			return s.roles.FindAll(ctx, schema)
		},
	}.Run(ctx, struct{}{})
}

// Update refuses to touch a reserved role or to rename a role to a reserved name
func (s *RoleService) Update(ctx context.Context, schema string, id uint, dto model.UpdateRoleDTO) model.Response[model.Role] {
	return Op[model.UpdateRoleDTO, model.Role]{
		Name: "update role",
		Validate: func(dto model.UpdateRoleDTO) error {
			if err := validateID(id); err != nil {
				return err
			}
			return validateUpdateRole(dto)
		},
		Guard: func(ctx context.Context, dto model.UpdateRoleDTO) error {
			if err := s.guardSystemRole(ctx, schema, id, "Cannot modify system roles"); err != nil {
				return err
			}
			if dto.Name != nil && model.IsSystemRole(*dto.Name) {
				return badRequest("Role name is reserved")
			}
			return nil
		},
		Persist: func(ctx context.Context, dto model.UpdateRoleDTO) (repository.Result[model.Role], error) {
			if dto.Name != nil {
				name := strings.TrimSpace(*dto.Name)
				dto.Name = &name
			}
			return s.roles.Update(ctx, schema, id, dto)
		},
		Conflict: "Role already exists",
	}.Run(ctx, dto)
}

func (s *RoleService) Delete(ctx context.Context, schema string, id uint) model.Response[model.Role] {
	return Op[uint, model.Role]{
		Name:     "delete role",
		Validate: validateID,
		Guard: func(ctx context.Context, id uint) error {
			return s.guardSystemRole(ctx, schema, id, "Cannot delete system roles")
		},
		Persist: func(ctx context.Context, id uint) (repository.Result[model.Role], error) {
			return s.roles.Delete(ctx, schema, id)
		},
	}.Run(ctx, id)
}

func (s *RoleService) guardSystemRole(ctx context.Context, schema string, id uint, message string) error {
	current, err := s.roles.FindByID(ctx, schema, id)
	if err != nil {
		return err
	}
	if !current.Success {
		return fail(http.StatusNotFound, current.Message)
	}
	if model.IsSystemRole(current.Data.Name) {
		return badRequest(message)
	}
	return nil
}
