package handler

import (
	"context"

	"tenant-service/internal/middleware"
	"tenant-service/internal/model"

	"github.com/labstack/echo/v4"
)

// RoleService is the role management surface used by RoleHandler
type RoleService interface {
	Create(ctx context.Context, schema string, dto model.CreateRoleDTO) model.Response[model.Role]
	FindByID(ctx context.Context, schema string, id uint) model.Response[model.Role]
	FindAll(ctx context.Context, schema string) model.Response[[]model.Role]
	Update(ctx context.Context, schema string, id uint, dto model.UpdateRoleDTO) model.Response[model.Role]
	Delete(ctx context.Context, schema string, id uint) model.Response[model.Role]
}

// RoleHandler serves tenant scoped role routes
type RoleHandler struct {
	roles RoleService
}

// NewRoleHandler creates a role handler
func NewRoleHandler(roles RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

func (h *RoleHandler) Create(c echo.Context) error {
	var dto model.CreateRoleDTO
	if !bind(c, &dto) {
		return badRequest(c, "Invalid request body")
	}
	return respond(c, h.roles.Create(c.Request().Context(), middleware.SchemaFromEcho(c), dto))
}

func (h *RoleHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid role id")
	}
	return respond(c, h.roles.FindByID(c.Request().Context(), middleware.SchemaFromEcho(c), id))
}

func (h *RoleHandler) List(c echo.Context) error {
	return respond(c, h.roles.FindAll(c.Request().Context(), middleware.SchemaFromEcho(c)))
}

func (h *RoleHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid role id")
	}
	var dto model.UpdateRoleDTO
	if !bind(c, &dto) {
		return badRequest(c, "Invalid request body")
	}
	return respond(c, h.roles.Update(c.Request().Context(), middleware.SchemaFromEcho(c), id, dto))
}

func (h *RoleHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid role id")
	}
	return respond(c, h.roles.Delete(c.Request().Context(), middleware.SchemaFromEcho(c), id))
}
