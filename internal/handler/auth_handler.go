package handler

import (
	"context"

	"tenant-service/internal/middleware"
	"tenant-service/internal/model"

	"github.com/labstack/echo/v4"
)

// AuthService authenticates tenant users
type AuthService interface {
	Login(ctx context.Context, tenantKey, schema string, dto model.LoginDTO) model.Response[model.UserSession]
	Me(ctx context.Context, schema string, userID uint) model.Response[model.User]
}

// AuthHandler serves tenant user login
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(c echo.Context) error {
	var dto model.LoginDTO
	if !bind(c, &dto) {
		return badRequest(c, "Invalid request body")
	}
	return respond(c, h.auth.Login(c.Request().Context(),
		middleware.TenantKeyFromEcho(c), middleware.SchemaFromEcho(c), dto))
}

// Me returns the user of the bearer token
func (h *AuthHandler) Me(c echo.Context) error {
	claims := middleware.UserClaimsFromEcho(c)
	if claims == nil {
		return badRequest(c, "Missing user token")
	}
	return respond(c, h.auth.Me(c.Request().Context(), middleware.SchemaFromEcho(c), claims.UserID))
}
