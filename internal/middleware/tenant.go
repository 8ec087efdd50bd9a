package middleware

import (
	"context"
	"errors"
	"net/http"

	"tenant-service/internal/model"
	"tenant-service/pkg/config"
	"tenant-service/pkg/logger"
	"tenant-service/pkg/registry"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	tenantKeyKey = "tenant_key"
	schemaKey    = "tenant_schema"
)

type tenantCtxKey struct{}

// Tenant is the resolved tenant of a request
type Tenant struct {
	Key    string
	Schema string
}

// WithTenant attaches a resolved tenant to ctx
func WithTenant(ctx context.Context, t Tenant) context.Context {
	return context.WithValue(ctx, tenantCtxKey{}, t)
}

// TenantFromContext returns the tenant resolved for the request, if any
func TenantFromContext(ctx context.Context) (Tenant, bool) {
	t, ok := ctx.Value(tenantCtxKey{}).(Tenant)
	return t, ok
}

// SchemaFromEcho returns the resolved schema stored on the echo context
func SchemaFromEcho(c echo.Context) string {
	schema, _ := c.Get(schemaKey).(string)
	return schema
}

// TenantKeyFromEcho returns the normalized tenant key stored on the echo context
func TenantKeyFromEcho(c echo.Context) string {
	key, _ := c.Get(tenantKeyKey).(string)
	return key
}

// TenantResolver reads the tenant key from the configured header (then the
// fallback header, then the default key) and resolves it to a schema. The
// request only reaches next once a schema is attached.
func TenantResolver(resolver registry.Resolver, cfg config.TenantConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			key := tenantKey(c.Request(), cfg)
			schema, err := resolver.Resolve(c.Request().Context(), key)
			if err != nil {
				switch {
				case errors.Is(err, registry.ErrMissingKey):
					return c.JSON(http.StatusBadRequest, model.Fail[any](http.StatusBadRequest, registry.ErrMissingKey.Error()))
				case errors.Is(err, registry.ErrUnknownTenant):
					log.Warn("Unknown tenant", zap.String("tenant", key))
					return c.JSON(http.StatusBadRequest, model.Fail[any](http.StatusBadRequest, registry.ErrUnknownTenant.Error()))
				default:
					log.Error("Tenant resolution failed", zap.String("tenant", key), zap.Error(err))
					return c.JSON(http.StatusInternalServerError, model.Fail[any](http.StatusInternalServerError, "Internal server error"))
				}
			}

			t := Tenant{Key: registry.NormalizeKey(key), Schema: schema}
			c.Set(tenantKeyKey, t.Key)
			c.Set(schemaKey, t.Schema)

			ctx := WithTenant(c.Request().Context(), t)
			ctx = logger.WithContext(ctx, log.With(zap.String("tenant", t.Key)))
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

func tenantKey(r *http.Request, cfg config.TenantConfig) string {
	if key := r.Header.Get(cfg.Header); key != "" {
		return key
	}
	if cfg.FallbackHeader != "" {
		if key := r.Header.Get(cfg.FallbackHeader); key != "" {
			return key
		}
	}
	return cfg.DefaultKey
}
