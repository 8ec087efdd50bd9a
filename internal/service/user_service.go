package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"tenant-service/internal/model"
	"tenant-service/internal/repository"
	"tenant-service/pkg/hash"
)

// UserService manages users of one tenant schema. Passwords are hashed here
// and never passed to the repository in plaintext.
type UserService struct {
	users  repository.UserRepository
	hasher hash.Hasher
}

// NewUserService creates a user service
func NewUserService(users repository.UserRepository, hasher hash.Hasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

// newUserFrom validates nothing; it only hashes and normalizes
func newUserFrom(hasher hash.Hasher, dto model.CreateUserDTO) (model.NewUser, error) {
	hashed, err := hasher.Hash(dto.Password)
	if err != nil {
		return model.NewUser{}, fmt.Errorf("failed to hash password: %w", err)
	}
	return model.NewUser{
		Email:        NormalizeEmail(dto.Email),
		PasswordHash: hashed,
		FirstName:    trimPtr(dto.FirstName),
		LastName:     trimPtr(dto.LastName),
		RoleID:       dto.RoleID,
	}, nil
}

func (s *UserService) Create(ctx context.Context, schema string, dto model.CreateUserDTO) model.Response[model.User] {
	return Op[model.CreateUserDTO, model.User]{
		Name:     "create user",
		Validate: validateCreateUser,
		Persist: func(ctx context.Context, dto model.CreateUserDTO) (repository.Result[model.User], error) {
			user, err := newUserFrom(s.hasher, dto)
			if err != nil {
				return repository.Result[model.User]{}, err
			}
			return s.users.Create(ctx, schema, user)
		},
		Status:   http.StatusCreated,
		Conflict: "Email already registered",
	}.Run(ctx, dto)
}

func (s *UserService) FindByID(ctx context.Context, schema string, id uint) model.Response[model.User] {
	return Op[uint, model.User]{
		Name:     "find user",
		Validate: validateID,
		Persist: func(ctx context.Context, id uint) (repository.Result[model.User], error) {
			return s.users.FindByID(ctx, schema, id)
		},
	}.Run(ctx, id)
}

func (s *UserService) FindByEmail(ctx context.Context, schema, email string) model.Response[model.User] {
	return Op[string, model.User]{
		Name:     "find user by email",
		Validate: validateEmail,
		Persist: func(ctx context.Context, email string) (repository.Result[model.User], error) {
			return s.users.FindByEmail(ctx, schema, NormalizeEmail(email))
		},
	}.Run(ctx, email)
}

func (s *UserService) FindAll(ctx context.Context, schema string) model.Response[[]model.User] {
	return Op[struct{}, []model.User]{
		Name: "list users",
		Persist: func(ctx context.Context, _ struct{}) (repository.Result[[]model.User], error) {
			return s.users.FindAll(ctx, schema)
		},
	}.Run(ctx, struct{}{})
}

func (s *UserService) Update(ctx context.Context, schema string, id uint, dto model.UpdateUserDTO) model.Response[model.User] {
	return Op[model.UpdateUserDTO, model.User]{
		Name: "update user",
		Validate: func(dto model.UpdateUserDTO) error {
			if err := validateID(id); err != nil {
				return err
			}
			return validateUpdateUser(dto)
		},
		Persist: func(ctx context.Context, dto model.UpdateUserDTO) (repository.Result[model.User], error) {
			changes := model.UserChanges{
				FirstName: trimPtr(dto.FirstName),
				LastName:  trimPtr(dto.LastName),
				RoleID:    dto.RoleID,
				Active:    dto.Active,
			}
			if dto.Email != nil {
				email := NormalizeEmail(*dto.Email)
				changes.Email = &email
			}
			if dto.Password != nil {
				// an unchanged password is not rewritten
				current, err := s.users.FindByID(ctx, schema, id)
				if err != nil {
					return repository.Result[model.User]{}, err
				}
				if !current.Success || !samePassword(s.hasher, *dto.Password, current.Data.PasswordHash) {
					hashed, err := s.hasher.Hash(*dto.Password)
					if err != nil {
						return repository.Result[model.User]{}, fmt.Errorf("failed to hash password: %w", err)
					}
					changes.PasswordHash = &hashed
				}
			}
			return s.users.Update(ctx, schema, id, changes)
		},
		Conflict: "Email already registered",
	}.Run(ctx, dto)
}

func (s *UserService) Delete(ctx context.Context, schema string, id uint) model.Response[model.User] {
	return Op[uint, model.User]{
		Name:     "delete user",
		Validate: validateID,
		Persist: func(ctx context.Context, id uint) (repository.Result[model.User], error) {
			return s.users.Delete(ctx, schema, id)
		},
	}.Run(ctx, id)
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
