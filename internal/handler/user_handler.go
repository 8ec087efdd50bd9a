package handler

import (
	"context"

	"tenant-service/internal/middleware"
	"tenant-service/internal/model"

	"github.com/labstack/echo/v4"
)

// UserService is the user management surface used by UserHandler
type UserService interface {
	Create(ctx context.Context, schema string, dto model.CreateUserDTO) model.Response[model.User]
	FindByID(ctx context.Context, schema string, id uint) model.Response[model.User]
	FindByEmail(ctx context.Context, schema, email string) model.Response[model.User]
	FindAll(ctx context.Context, schema string) model.Response[[]model.User]
	Update(ctx context.Context, schema string, id uint, dto model.UpdateUserDTO) model.Response[model.User]
	Delete(ctx context.Context, schema string, id uint) model.Response[model.User]
}

// UserHandler serves tenant scoped user routes
type UserHandler struct {
	users UserService
}

// NewUserHandler creates a user handler
func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Create(c echo.Context) error {
	var dto model.CreateUserDTO
	if !bind(c, &dto) {
		return badRequest(c, "Invalid request body")
	}
	return respond(c, h.users.Create(c.Request().Context(), middleware.SchemaFromEcho(c), dto))
}

func (h *UserHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user id")
	}
	return respond(c, h.users.FindByID(c.Request().Context(), middleware.SchemaFromEcho(c), id))
}

// List returns every user, or the single user matching ?email=
func (h *UserHandler) List(c echo.Context) error {
	schema := middleware.SchemaFromEcho(c)
	if email := c.QueryParam("email"); email != "" {
		return respond(c, h.users.FindByEmail(c.Request().Context(), schema, email))
	}
	return respond(c, h.users.FindAll(c.Request().Context(), schema))
}

func (h *UserHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user id")
	}
	var dto model.UpdateUserDTO
	if !bind(c, &dto) {
		return badRequest(c, "Invalid request body")
	}
	return respond(c, h.users.Update(c.Request().Context(), middleware.SchemaFromEcho(c), id, dto))
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user id")
	}
	return respond(c, h.users.Delete(c.Request().Context(), middleware.SchemaFromEcho(c), id))
}
