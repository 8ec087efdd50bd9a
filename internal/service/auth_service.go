package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"tenant-service/internal/model"
	"tenant-service/internal/repository"
	"tenant-service/pkg/hash"
	"tenant-service/pkg/logger"
	"tenant-service/prometheus"

	"go.uber.org/zap"
)

// TokenIssuer signs tokens for authenticated principals
type TokenIssuer interface {
	GenerateUserToken(userID uint, email, tenantKey, schema string, roleID *uint) (string, error)
	GenerateAdminToken(adminID uint, email string) (string, error)
	TTL() time.Duration
}

// AuthService authenticates tenant users. Every failure, including an
// unknown email, yields the same "Invalid credentials" message.
type AuthService struct {
	users  repository.UserRepository
	creds  *credentialCheck
	tokens TokenIssuer
}

// NewAuthService creates an auth service
func NewAuthService(users repository.UserRepository, hasher hash.Hasher, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, creds: newCredentialCheck(hasher), tokens: tokens}
}

// Authenticate returns the user whose credentials match
func (s *AuthService) Authenticate(ctx context.Context, schema string, dto model.LoginDTO) model.Response[model.User] {
	return Op[model.LoginDTO, model.User]{
		Name:     "authenticate user",
		Validate: validateLogin,
		Persist: func(ctx context.Context, dto model.LoginDTO) (repository.Result[model.User], error) {
			user, err := s.authenticate(ctx, schema, dto)
			if err != nil {
				return repository.Result[model.User]{}, err
			}
			return repository.Result[model.User]{Success: true, Message: "Authentication successful", Data: user}, nil
		},
	}.Run(ctx, dto)
}

// Login authenticates the user and issues a token bound to the tenant schema
func (s *AuthService) Login(ctx context.Context, tenantKey, schema string, dto model.LoginDTO) model.Response[model.UserSession] {
	return Op[model.LoginDTO, model.UserSession]{
		Name:     "login user",
		Validate: validateLogin,
		Persist: func(ctx context.Context, dto model.LoginDTO) (repository.Result[model.UserSession], error) {
			user, err := s.authenticate(ctx, schema, dto)
			if err != nil {
				return repository.Result[model.UserSession]{}, err
			}
			token, err := s.tokens.GenerateUserToken(user.ID, user.Email, tenantKey, schema, user.RoleID)
			if err != nil {
				return repository.Result[model.UserSession]{}, fmt.Errorf("failed to sign token: %w", err)
			}
			session := model.UserSession{Token: token, ExpiresAt: time.Now().Add(s.tokens.TTL()), User: &user}
			return repository.Result[model.UserSession]{Success: true, Message: "Login successful", Data: session}, nil
		},
	}.Run(ctx, dto)
}

// Me returns the user a token was issued for
func (s *AuthService) Me(ctx context.Context, schema string, userID uint) model.Response[model.User] {
	return Op[uint, model.User]{
		Name:     "current user",
		Validate: validateID,
		Persist: func(ctx context.Context, id uint) (repository.Result[model.User], error) {
			res, err := s.users.FindByID(ctx, schema, id)
			if err == nil && (!res.Success || !res.Data.Active) {
				return res, fail(http.StatusUnauthorized, msgInvalidCredentials)
			}
			return res, err
		},
	}.Run(ctx, userID)
}

func (s *AuthService) authenticate(ctx context.Context, schema string, dto model.LoginDTO) (model.User, error) {
	res, err := s.users.FindByEmail(ctx, schema, NormalizeEmail(dto.Email))
	if err != nil {
		return model.User{}, err
	}
	found := res.Success && res.Data.Active
	if err := s.creds.verify(ctx, dto.Password, res.Data.PasswordHash, found); err != nil {
		return model.User{}, err
	}
	return res.Data, nil
}

// credentialCheck verifies passwords. An unknown or inactive account is
// checked against a decoy hash so every failed login costs one hash.
type credentialCheck struct {
	hasher hash.Hasher
	once   sync.Once
	decoy  string
}

func newCredentialCheck(hasher hash.Hasher) *credentialCheck {
	return &credentialCheck{hasher: hasher}
}

func (c *credentialCheck) decoyHash() string {
	c.once.Do(func() {
		c.decoy, _ = c.hasher.Hash("decoy-password-0")
	})
	return c.decoy
}

// verify fails with "Invalid credentials" unless found is set and password
// matches encoded. A malformed stored hash counts as a mismatch.
func (c *credentialCheck) verify(ctx context.Context, password, encoded string, found bool) error {
	if !found {
		encoded = c.decoyHash()
	}
	match, err := c.hasher.Verify(password, encoded)
	if err != nil && found {
		logger.FromContext(ctx).Warn("Stored password hash could not be verified", zap.Error(err))
	}
	if !found || err != nil || !match {
		prometheus.RecordAuthError("invalid_credentials")
		return fail(http.StatusUnauthorized, msgInvalidCredentials)
	}
	return nil
}

// samePassword reports whether password already matches the stored hash
func samePassword(hasher hash.Hasher, password, encoded string) bool {
	match, err := hasher.Verify(password, encoded)
	return err == nil && match
}
