package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tenant-service/pkg/database"
	"tenant-service/prometheus"

	"go.uber.org/zap"
)

var (
	// ErrMissingKey means the request carried no tenant identifier
	ErrMissingKey = errors.New("tenant identifier required")
	// ErrUnknownTenant means the identifier matched no live tenant
	ErrUnknownTenant = errors.New("invalid tenant")
)

// Resolver maps a tenant key to its schema name
type Resolver interface {
	Resolve(ctx context.Context, key string) (string, error)
}

// Registry resolves tenant keys against the control-plane tenants table
type Registry struct {
	pool          *database.Pool
	controlSchema string
	cache         Cache
	log           *zap.Logger
}

var _ Resolver = (*Registry)(nil)

// New creates a registry. A nil cache disables caching.
func New(pool *database.Pool, controlSchema string, cache Cache, log *zap.Logger) *Registry {
	if cache == nil {
		cache = NopCache{}
	}
	if log == nil {
		log = zap.L()
	}
	return &Registry{pool: pool, controlSchema: controlSchema, cache: cache, log: log}
}

// NormalizeKey trims and lower-cases a tenant key
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Resolve returns the schema stored for key. It returns ErrMissingKey for an
// empty key and ErrUnknownTenant when no live tenant has that subdomain.
func (r *Registry) Resolve(ctx context.Context, key string) (string, error) {
	key = NormalizeKey(key)
	if key == "" {
		prometheus.RecordTenantResolution("missing_key")
		return "", ErrMissingKey
	}

	if schema, ok := r.cache.Get(ctx, key); ok {
		prometheus.RecordTenantResolution("cached")
		return schema, nil
	}

	query := fmt.Sprintf(
		"SELECT schema_name FROM %s WHERE subdomain = ? AND deleted_at IS NULL",
		database.Table(r.controlSchema, "tenants"),
	)

	var schema string
	n, err := r.pool.Query(ctx, r.controlSchema, &schema, query, key)
	if err != nil {
		prometheus.RecordTenantResolution("error")
		return "", fmt.Errorf("resolve tenant %q: %w", key, err)
	}
	if n == 0 {
		prometheus.RecordTenantResolution("unknown_tenant")
		return "", ErrUnknownTenant
	}

	if err := database.ValidateSchemaName(schema); err != nil {
		prometheus.RecordTenantResolution("error")
		r.log.Error("Tenant row holds an unusable schema name",
			zap.String("tenant", key), zap.String("schema", schema))
		return "", fmt.Errorf("resolve tenant %q: %w", key, err)
	}

	r.cache.Set(ctx, key, schema)
	prometheus.RecordTenantResolution("resolved")
	return schema, nil
}

// Invalidate drops any cached resolution for key
func (r *Registry) Invalidate(ctx context.Context, key string) {
	r.cache.Delete(ctx, NormalizeKey(key))
}
