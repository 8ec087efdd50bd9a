package handler

import (
	"context"

	"tenant-service/internal/model"

	"github.com/labstack/echo/v4"
)

// SystemAdminService manages control-plane operators
type SystemAdminService interface {
	Create(ctx context.Context, dto model.CreateSystemAdminDTO) model.Response[model.SystemAdmin]
	FindByID(ctx context.Context, id uint) model.Response[model.SystemAdmin]
	FindAll(ctx context.Context) model.Response[[]model.SystemAdmin]
	Update(ctx context.Context, id uint, dto model.UpdateSystemAdminDTO) model.Response[model.SystemAdmin]
	Delete(ctx context.Context, id uint) model.Response[model.SystemAdmin]
	Login(ctx context.Context, dto model.LoginDTO) model.Response[model.AdminSession]
}

// AdminHandler serves system admin login and management
type AdminHandler struct {
	admins SystemAdminService
}

// NewAdminHandler creates a system admin handler
func NewAdminHandler(admins SystemAdminService) *AdminHandler {
	return &AdminHandler{admins: admins}
}

func (h *AdminHandler) Login(c echo.Context) error {
	var dto model.LoginDTO
	if !bind(c, &dto) {
		return badRequest(c, "Invalid request body")
	}
	return respond(c, h.admins.Login(c.Request().Context(), dto))
}

func (h *AdminHandler) Create(c echo.Context) error {
	var dto model.CreateSystemAdminDTO
	if !bind(c, &dto) {
		return badRequest(c, "Invalid request body")
	}
	return respond(c, h.admins.Create(c.Request().Context(), dto))
}

func (h *AdminHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid admin id")
	}
	return respond(c, h.admins.FindByID(c.Request().Context(), id))
}

func (h *AdminHandler) List(c echo.Context) error {
	return respond(c, h.admins.FindAll(c.Request().Context()))
}

func (h *AdminHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid admin id")
	}
	var dto model.UpdateSystemAdminDTO
	if !bind(c, &dto) {
		return badRequest(c, "Invalid request body")
	}
	return respond(c, h.admins.Update(c.Request().Context(), id, dto))
}

// Delete deactivates the admin and answers 204
func (h *AdminHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid admin id")
	}
	return respond(c, h.admins.Delete(c.Request().Context(), id))
}
