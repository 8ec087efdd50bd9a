package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tenant-service/internal/model"
	"tenant-service/internal/repository"
	"tenant-service/pkg/hash"
	"tenant-service/prometheus"
)

// AdminGate authorizes control-plane operations
type AdminGate interface {
	RequireActive(ctx context.Context, adminID uint) error
}

// SystemAdminService manages control-plane operators
type SystemAdminService struct {
	admins repository.SystemAdminRepository
	hasher hash.Hasher
	creds  *credentialCheck
	tokens TokenIssuer
}

var _ AdminGate = (*SystemAdminService)(nil)

// NewSystemAdminService creates a system admin service
func NewSystemAdminService(admins repository.SystemAdminRepository, hasher hash.Hasher, tokens TokenIssuer) *SystemAdminService {
	return &SystemAdminService{admins: admins, hasher: hasher, creds: newCredentialCheck(hasher), tokens: tokens}
}

// RequireActive fails unless adminID names an active admin
func (s *SystemAdminService) RequireActive(ctx context.Context, adminID uint) error {
	if adminID < 1 {
		return fail(http.StatusUnauthorized, msgUnauthorized)
	}
	res, err := s.admins.FindByID(ctx, adminID)
	if err != nil {
		return err
	}
	if !res.Success || !res.Data.Active {
		prometheus.RecordAuthError("inactive_admin")
		return fail(http.StatusUnauthorized, msgUnauthorized)
	}
	return nil
}

func (s *SystemAdminService) Create(ctx context.Context, dto model.CreateSystemAdminDTO) model.Response[model.SystemAdmin] {
	return Op[model.CreateSystemAdminDTO, model.SystemAdmin]{
		Name:     "create system admin",
		Validate: validateCreateSystemAdmin,
		Persist: func(ctx context.Context, dto model.CreateSystemAdminDTO) (repository.Result[model.SystemAdmin], error) {
			hashed, err := s.hasher.Hash(dto.Password)
			if err != nil {
				return repository.Result[model.SystemAdmin]{}, fmt.Errorf("failed to hash password: %w", err)
			}
			return s.admins.Create(ctx, model.NewSystemAdmin{
				Email:        NormalizeEmail(dto.Email),
				PasswordHash: hashed,
				Name:         strings.TrimSpace(dto.Name),
			})
		},
		Status:   http.StatusCreated,
		Conflict: "Email already registered",
	}.Run(ctx, dto)
}

func (s *SystemAdminService) FindByID(ctx context.Context, id uint) model.Response[model.SystemAdmin] {
	return Op[uint, model.SystemAdmin]{
		Name:     "find system admin",
		Validate: validateID,
		Persist:  s.admins.FindByID,
	}.Run(ctx, id)
}

func (s *SystemAdminService) FindAll(ctx context.Context) model.Response[[]model.SystemAdmin] {
	return Op[struct{}, []model.SystemAdmin]{
		Name: "list system admins",
		Persist: func(ctx context.Context, _ struct{}) (repository.Result[[]model.SystemAdmin], error) {
			return s.admins.FindAll(ctx)
		},
	}.Run(ctx, struct{}{})
}

func (s *SystemAdminService) Update(ctx context.Context, id uint, dto model.UpdateSystemAdminDTO) model.Response[model.SystemAdmin] {
	return Op[model.UpdateSystemAdminDTO, model.SystemAdmin]{
		Name: "update system admin",
		Validate: func(dto model.UpdateSystemAdminDTO) error {
			if err := validateID(id); err != nil {
				return err
			}
			return validateUpdateSystemAdmin(dto)
		},
		Persist: func(ctx context.Context, dto model.UpdateSystemAdminDTO) (repository.Result[model.SystemAdmin], error) {
			changes := model.SystemAdminChanges{Name: trimPtr(dto.Name), Active: dto.Active}
			if dto.Email != nil {
				email := NormalizeEmail(*dto.Email)
				changes.Email = &email
			}
			if dto.Password != nil {
				current, err := s.admins.FindByID(ctx, id)
				if err != nil {
					return repository.Result[model.SystemAdmin]{}, err
				}
				if !current.Success || !samePassword(s.hasher, *dto.Password, current.Data.PasswordHash) {
					hashed, err := s.hasher.Hash(*dto.Password)
					if err != nil {
						return repository.Result[model.SystemAdmin]{}, fmt.Errorf("failed to hash password: %w", err)
					}
					changes.PasswordHash = &hashed
				}
			}
			return s.admins.Update(ctx, id, changes)
		},
		Conflict: "Email already registered",
	}.Run(ctx, dto)
}

// Delete deactivates the admin
func (s *SystemAdminService) Delete(ctx context.Context, id uint) model.Response[model.SystemAdmin] {
	return Op[uint, model.SystemAdmin]{
		Name:     "delete system admin",
		Validate: validateID,
		Persist:  s.admins.Delete,
		Status:   http.StatusNoContent,
	}.Run(ctx, id)
}

// Login authenticates an active admin and issues an admin token
func (s *SystemAdminService) Login(ctx context.Context, dto model.LoginDTO) model.Response[model.AdminSession] {
	return Op[model.LoginDTO, model.AdminSession]{
		Name:     "login system admin",
		Validate: validateLogin,
		Persist: func(ctx context.Context, dto model.LoginDTO) (repository.Result[model.AdminSession], error) {
			res, err := s.admins.FindByEmail(ctx, NormalizeEmail(dto.Email))
			if err != nil {
				return repository.Result[model.AdminSession]{}, err
			}
			found := res.Success && res.Data.Active
			if err := s.creds.verify(ctx, dto.Password, res.Data.PasswordHash, found); err != nil {
				return repository.Result[model.AdminSession]{}, err
			}

			admin := res.Data
			token, err := s.tokens.GenerateAdminToken(admin.ID, admin.Email)
			if err != nil {
				return repository.Result[model.AdminSession]{}, fmt.Errorf("failed to sign token: %w", err)
			}
			session := model.AdminSession{Token: token, ExpiresAt: time.Now().Add(s.tokens.TTL()), Admin: &admin}
			return repository.Result[model.AdminSession]{Success: true, Message: "Login successful", Data: session}, nil
		},
	}.Run(ctx, dto)
}
