package routes

import (
	"tenant-service/internal/handler"
	"tenant-service/internal/middleware"
	"tenant-service/pkg/config"
	"tenant-service/pkg/registry"

	"github.com/labstack/echo/v4"
)

// Handlers groups every controller mounted by Register
type Handlers struct {
	Health  *handler.HealthHandler
	Roles   *handler.RoleHandler
	Users   *handler.UserHandler
	Auth    *handler.AuthHandler
	Admins  *handler.AdminHandler
	Tenants *handler.TenantHandler
}

// Register mounts the public, tenant scoped and admin routes
func Register(e *echo.Echo, h Handlers, resolver registry.Resolver, tokens middleware.TokenValidator, gate middleware.AdminGate, tenantCfg config.TenantConfig) {
	// Public routes
	e.GET("/health", h.Health.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Tenant scoped API; every route below runs against the resolved schema
	api := e.Group("/api/v1")
	api.Use(middleware.TenantResolver(resolver, tenantCfg))

	roles := api.Group("/roles")
	roles.POST("", h.Roles.Create)
	roles.GET("", h.Roles.List)
	roles.GET("/:id", h.Roles.Get)
	roles.PUT("/:id", h.Roles.Update)
	roles.DELETE("/:id", h.Roles.Delete)

	users := api.Group("/users")
	users.POST("", h.Users.Create)
	users.GET("", h.Users.List)
	users.GET("/:id", h.Users.Get)
	users.PUT("/:id", h.Users.Update)
	users.DELETE("/:id", h.Users.Delete)

	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.GET("/me", h.Auth.Me, middleware.UserAuth(tokens))

	// Control plane
	admin := e.Group("/admin")
	admin.POST("/auth/login", h.Admins.Login)

	adminAuth := middleware.AdminAuth(tokens, gate)

	admins := admin.Group("/admins", adminAuth)
	admins.POST("", h.Admins.Create)
	admins.GET("", h.Admins.List)
	admins.GET("/:id", h.Admins.Get)
	admins.PUT("/:id", h.Admins.Update)
	admins.DELETE("/:id", h.Admins.Delete)

	tenants := admin.Group("/tenants", adminAuth)
	tenants.POST("", h.Tenants.Create)
	tenants.GET("", h.Tenants.List)
	tenants.GET("/:id", h.Tenants.Get)
	tenants.PUT("/:id", h.Tenants.Update)
	tenants.DELETE("/:id", h.Tenants.Delete)
	tenants.GET("/:id/operations", h.Tenants.Operations)
	tenants.POST("/:id/users", h.Tenants.CreateUser)
	tenants.GET("/:id/users", h.Tenants.ListUsers)
}
