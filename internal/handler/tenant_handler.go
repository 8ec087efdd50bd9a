package handler

import (
	"context"

	"tenant-service/internal/middleware"
	"tenant-service/internal/model"

	"github.com/labstack/echo/v4"
)

// TenantService provisions and manages tenants on behalf of an admin
type TenantService interface {
	Create(ctx context.Context, adminID uint, dto model.CreateTenantDTO) model.Response[model.Tenant]
	FindByID(ctx context.Context, id uint) model.Response[model.Tenant]
	FindAll(ctx context.Context) model.Response[[]model.Tenant]
	Update(ctx context.Context, adminID, id uint, dto model.UpdateTenantDTO) model.Response[model.Tenant]
	Delete(ctx context.Context, adminID, id uint) model.Response[model.Tenant]
	Operations(ctx context.Context, tenantID uint) model.Response[[]model.TenantOperationLog]
}

// TenantUserService manages users of any tenant on behalf of an admin
type TenantUserService interface {
	CreateUser(ctx context.Context, adminID, tenantID uint, dto model.CreateUserDTO) model.Response[model.User]
	ListUsers(ctx context.Context, adminID, tenantID uint) model.Response[[]model.User]
}

// TenantHandler serves the admin tenant routes
type TenantHandler struct {
	tenants TenantService
	users   TenantUserService
}

// NewTenantHandler creates a tenant handler
func NewTenantHandler(tenants TenantService, users TenantUserService) *TenantHandler {
	return &TenantHandler{tenants: tenants, users: users}
}

func (h *TenantHandler) Create(c echo.Context) error {
	var dto model.CreateTenantDTO
	if !bind(c, &dto) {
		return badRequest(c, "Invalid request body")
	}
	return respond(c, h.tenants.Create(c.Request().Context(), middleware.AdminIDFromEcho(c), dto))
}

func (h *TenantHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid tenant id")
	}
	return respond(c, h.tenants.FindByID(c.Request().Context(), id))
}

func (h *TenantHandler) List(c echo.Context) error {
	return respond(c, h.tenants.FindAll(c.Request().Context()))
}

func (h *TenantHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid tenant id")
	}
	var dto model.UpdateTenantDTO
	if !bind(c, &dto) {
		return badRequest(c, "Invalid request body")
	}
	return respond(c, h.tenants.Update(c.Request().Context(), middleware.AdminIDFromEcho(c), id, dto))
}

func (h *TenantHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid tenant id")
	}
	return respond(c, h.tenants.Delete(c.Request().Context(), middleware.AdminIDFromEcho(c), id))
}

func (h *TenantHandler) Operations(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid tenant id")
	}
	return respond(c, h.tenants.Operations(c.Request().Context(), id))
}

func (h *TenantHandler) CreateUser(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid tenant id")
	}
	var dto model.CreateUserDTO
	if !bind(c, &dto) {
		return badRequest(c, "Invalid request body")
	}
	return respond(c, h.users.CreateUser(c.Request().Context(), middleware.AdminIDFromEcho(c), id, dto))
}

func (h *TenantHandler) ListUsers(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid tenant id")
	}
	return respond(c, h.users.ListUsers(c.Request().Context(), middleware.AdminIDFromEcho(c), id))
}
