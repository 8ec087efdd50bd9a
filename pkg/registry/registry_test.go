package registry

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"tenant-service/pkg/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const lookupSQL = `SELECT schema_name FROM "public"."tenants" WHERE subdomain = `

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]string{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[key]
	return s, ok
}

func (c *memoryCache) Set(_ context.Context, key, schema string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = schema
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func setupRegistry(t *testing.T, cache Cache) (*Registry, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	pool, err := database.NewPool(db, time.Second, zap.NewNop())
	require.NoError(t, err)
	return New(pool, "public", cache, zap.NewNop()), mock
}

func expectLookup(mock sqlmock.Sqlmock, key string, rows *sqlmock.Rows) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT set_config('search_path'")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"set_config"}).AddRow("public"))
	mock.ExpectQuery(regexp.QuoteMeta(lookupSQL)).WithArgs(key).WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta("RESET search_path")).WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestResolve_KnownTenant(t *testing.T) {
	cache := newMemoryCache()
	reg, mock := setupRegistry(t, cache)

	expectLookup(mock, "demo", sqlmock.NewRows([]string{"schema_name"}).AddRow("tenant_demo"))

	schema, err := reg.Resolve(context.Background(), "  Demo ")
	require.NoError(t, err)
	assert.Equal(t, "tenant_demo", schema)
	assert.NoError(t, mock.ExpectationsWereMet())

	cached, ok := cache.Get(context.Background(), "demo")
	assert.True(t, ok)
	assert.Equal(t, "tenant_demo", cached)
}

func TestResolve_UsesCache(t *testing.T) {
	cache := newMemoryCache()
	cache.Set(context.Background(), "demo", "tenant_demo")
	reg, mock := setupRegistry(t, cache)

	schema, err := reg.Resolve(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, "tenant_demo", schema)
	assert.NoError(t, mock.ExpectationsWereMet(), "cache hit must not touch the database")
}

func TestResolve_UnknownTenant(t *testing.T) {
	cache := newMemoryCache()
	reg, mock := setupRegistry(t, cache)

	expectLookup(mock, "ghost", sqlmock.NewRows([]string{"schema_name"}))

	schema, err := reg.Resolve(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUnknownTenant)
	assert.Empty(t, schema)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, ok := cache.Get(context.Background(), "ghost")
	assert.False(t, ok)
}

func TestResolve_MissingKey(t *testing.T) {
	reg, mock := setupRegistry(t, nil)

	_, err := reg.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_InfrastructureError(t *testing.T) {
	reg, mock := setupRegistry(t, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT set_config('search_path'")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"set_config"}).AddRow("public"))
	mock.ExpectQuery(regexp.QuoteMeta(lookupSQL)).WithArgs("demo").WillReturnError(assert.AnError)
	mock.ExpectExec(regexp.QuoteMeta("RESET search_path")).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := reg.Resolve(context.Background(), "demo")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownTenant)
	assert.NotErrorIs(t, err, ErrMissingKey)
	_, classified := database.KindOf(err)
	assert.True(t, classified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_RejectsCorruptSchemaName(t *testing.T) {
	reg, mock := setupRegistry(t, nil)

	expectLookup(mock, "demo", sqlmock.NewRows([]string{"schema_name"}).AddRow(`x"; DROP TABLE users`))

	_, err := reg.Resolve(context.Background(), "demo")
	assert.ErrorIs(t, err, database.ErrInvalidSchemaName)
}

func TestInvalidate(t *testing.T) {
	cache := newMemoryCache()
	cache.Set(context.Background(), "demo", "tenant_demo")
	reg, _ := setupRegistry(t, cache)

	reg.Invalidate(context.Background(), "DEMO")

	_, ok := cache.Get(context.Background(), "demo")
	assert.False(t, ok)
}
