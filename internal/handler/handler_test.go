package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"tenant-service/internal/handler"
	"tenant-service/internal/middleware"
	"tenant-service/internal/model"
	"tenant-service/internal/repository"
	"tenant-service/internal/routes"
	"tenant-service/internal/service"
	"tenant-service/pkg/config"
	"tenant-service/pkg/database"
	"tenant-service/pkg/hash"
	"tenant-service/pkg/jwtutil"
	"tenant-service/pkg/registry"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	tenantCfg = config.TenantConfig{Header: "x-tenant-id", FallbackHeader: "x-tenant"}
	roleCols  = []string{"id", "name", "description", "created_at", "updated_at"}
)

type envelope struct {
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	StatusCode int             `json:"statusCode"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

// newServer wires the real stack over a sqlmock connection
func newServer(t *testing.T) (*echo.Echo, sqlmock.Sqlmock, *jwtutil.JWTUtil) {
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

	hasher := &hash.Argon2{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	tokens := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-secret", ExpirationHours: 1, Issuer: "test"})
	reg := registry.New(pool, "public", nil, zap.NewNop())

	tenantRepo := repository.NewPostgresTenantRepository(pool, "public")
	userRepo := repository.NewPostgresUserRepository(pool)
	logRepo := repository.NewPostgresOperationLogRepository(pool, "public")
	admins := service.NewSystemAdminService(repository.NewPostgresSystemAdminRepository(pool, "public"), hasher, tokens)

	e := echo.New()
	routes.Register(e, routes.Handlers{
		Health: handler.NewHealthHandler("tenant-service", pool),
		Roles:  handler.NewRoleHandler(service.NewRoleService(repository.NewPostgresRoleRepository(pool))),
		Users:  handler.NewUserHandler(service.NewUserService(userRepo, hasher)),
		Auth:   handler.NewAuthHandler(service.NewAuthService(userRepo, hasher, tokens)),
		Admins: handler.NewAdminHandler(admins),
		Tenants: handler.NewTenantHandler(
			service.NewTenantService(pool, "public", admins, tenantRepo, logRepo, reg),
			service.NewTenantUserService(pool, admins, tenantRepo, userRepo, logRepo, hasher),
		),
	}, reg, tokens, admins, tenantCfg)
	return e, mock, tokens
}

func expectResolve(mock sqlmock.Sqlmock, key, schema string) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT set_config('search_path'")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"set_config"}).AddRow("public"))
	rows := sqlmock.NewRows([]string{"schema_name"})
	if schema != "" {
		rows.AddRow(schema)
	}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT schema_name FROM "public"."tenants" WHERE subdomain = $1 AND deleted_at IS NULL`)).
		WithArgs(key).
		WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta("RESET search_path")).WillReturnResult(sqlmock.NewResult(0, 0))
}

func do(e *echo.Echo, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateRole_ResolvesTenantAndWritesToItsSchema(t *testing.T) {
	e, mock, _ := newServer(t)
	now := time.Now()

	expectResolve(mock, "demo", "tenant_demo")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT set_config('search_path'")).
		WithArgs("tenant_demo").
		WillReturnRows(sqlmock.NewRows([]string{"set_config"}).AddRow("tenant_demo"))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO roles (name, description) VALUES ($1, $2)`)).
		WithArgs("Manager", "desc").
		WillReturnRows(sqlmock.NewRows(roleCols).AddRow(3, "Manager", "desc", now, now))
	mock.ExpectExec(regexp.QuoteMeta("RESET search_path")).WillReturnResult(sqlmock.NewResult(0, 0))

	rec := do(e, http.MethodPost, "/api/v1/roles", `{"name":"Manager","description":"desc"}`,
		map[string]string{"x-tenant-id": "demo"})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, http.StatusCreated, body.StatusCode)

	var role model.Role
	require.NoError(t, json.Unmarshal(body.Data, &role))
	assert.Equal(t, "Manager", role.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRole_ReservedNameInsertsNothing(t *testing.T) {
	e, mock, _ := newServer(t)

	expectResolve(mock, "demo", "tenant_demo")

	rec := do(e, http.MethodPost, "/api/v1/roles", `{"name":"TENANT_ADMIN"}`,
		map[string]string{"x-tenant-id": "demo"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Contains(t, strings.ToLower(body.Message), "reserved")
	assert.Equal(t, "null", string(body.Data))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantScopedRoutes_RejectUnknownTenant(t *testing.T) {
	e, mock, _ := newServer(t)

	expectResolve(mock, "globex", "")

	rec := do(e, http.MethodGet, "/api/v1/users", "", map[string]string{"x-tenant-id": "globex"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid tenant", decode(t, rec).Message)

	rec = do(e, http.MethodGet, "/api/v1/users", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "tenant identifier required", decode(t, rec).Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRoutes_InvalidInput(t *testing.T) {
	e, mock, _ := newServer(t)

	expectResolve(mock, "demo", "tenant_demo")
	rec := do(e, http.MethodGet, "/api/v1/roles/abc", "", map[string]string{"x-tenant-id": "demo"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	expectResolve(mock, "demo", "tenant_demo")
	rec = do(e, http.MethodPost, "/api/v1/roles", `{"name":`, map[string]string{"x-tenant-id": "demo"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decode(t, rec).Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRoutes_RequireAdminToken(t *testing.T) {
	e, mock, tokens := newServer(t)

	rec := do(e, http.MethodGet, "/admin/tenants", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	userToken, err := tokens.GenerateUserToken(1, "a@example.com", "demo", "tenant_demo", nil)
	require.NoError(t, err)
	rec = do(e, http.MethodGet, "/admin/tenants", "", map[string]string{echo.HeaderAuthorization: "Bearer " + userToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectAdminLookup(mock sqlmock.Sqlmock, id uint, active bool) {
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT set_config('search_path'")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"set_config"}).AddRow("public"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "public"."system_admins" WHERE id = $1`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "active", "created_at", "updated_at"}).
			AddRow(id, "root@example.com", "h", "Root", active, now, now))
	mock.ExpectExec(regexp.QuoteMeta("RESET search_path")).WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestAdminRoutes_DeactivatedAdminLosesAccess(t *testing.T) {
	e, mock, tokens := newServer(t)
	token, err := tokens.GenerateAdminToken(1, "root@example.com")
	require.NoError(t, err)
	auth := map[string]string{echo.HeaderAuthorization: "Bearer " + token}

	// The token is still valid, but the admin was deactivated after it was issued
	expectAdminLookup(mock, 1, false)
	rec := do(e, http.MethodPut, "/admin/admins/1", `{"active":true}`, auth)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized operation", decode(t, rec).Message)

	expectAdminLookup(mock, 1, false)
	rec = do(e, http.MethodGet, "/admin/admins", "", auth)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet(), "no admin row may be written or read past the gate")
}

func TestAdminRoutes_ActiveAdminPassesGate(t *testing.T) {
	e, mock, tokens := newServer(t)
	token, err := tokens.GenerateAdminToken(1, "root@example.com")
	require.NoError(t, err)
	now := time.Now()

	expectAdminLookup(mock, 1, true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT set_config('search_path'")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"set_config"}).AddRow("public"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "public"."system_admins" ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "active", "created_at", "updated_at"}).
			AddRow(1, "root@example.com", "h", "Root", true, now, now))
	mock.ExpectExec(regexp.QuoteMeta("RESET search_path")).WillReturnResult(sqlmock.NewResult(0, 0))

	rec := do(e, http.MethodGet, "/admin/admins", "", map[string]string{echo.HeaderAuthorization: "Bearer " + token})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password_hash")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck(t *testing.T) {
	e, _, _ := newServer(t)

	rec := do(e, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

// memoryRoles is a RoleService keeping roles per schema
type memoryRoles struct {
	mu    sync.Mutex
	roles map[string][]model.Role
}

func (m *memoryRoles) Create(_ context.Context, schema string, dto model.CreateRoleDTO) model.Response[model.Role] {
	m.mu.Lock()
	defer m.mu.Unlock()
	role := model.Role{ID: uint(len(m.roles[schema]) + 1), Name: dto.Name}
	m.roles[schema] = append(m.roles[schema], role)
	return model.Created(role, "Role created successfully")
}

func (m *memoryRoles) FindByID(context.Context, string, uint) model.Response[model.Role] {
	return model.Fail[model.Role](http.StatusNotFound, "Role not found")
}

func (m *memoryRoles) FindAll(_ context.Context, schema string) model.Response[[]model.Role] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.OK(append([]model.Role{}, m.roles[schema]...), "Roles retrieved successfully")
}

func (m *memoryRoles) Update(context.Context, string, uint, model.UpdateRoleDTO) model.Response[model.Role] {
	return model.Fail[model.Role](http.StatusNotFound, "Role not found")
}

func (m *memoryRoles) Delete(context.Context, string, uint) model.Response[model.Role] {
	return model.Fail[model.Role](http.StatusNotFound, "Role not found")
}

type mapResolver map[string]string

func (r mapResolver) Resolve(_ context.Context, key string) (string, error) {
	schema, ok := r[registry.NormalizeKey(key)]
	if !ok {
		return "", registry.ErrUnknownTenant
	}
	return schema, nil
}

func TestTenantResolver_RoutesConcurrentRequestsBySchema(t *testing.T) {
	roles := &memoryRoles{roles: map[string][]model.Role{}}
	h := handler.NewRoleHandler(roles)

	e := echo.New()
	api := e.Group("/api/v1", middleware.TenantResolver(mapResolver{"demo": "tenant_demo", "acme": "tenant_acme"}, tenantCfg))
	api.POST("/roles", h.Create)
	api.GET("/roles", h.List)

	tenants := map[string]string{"demo": "Demo Manager", "acme": "Acme Manager"}

	var wg sync.WaitGroup
	for key, name := range tenants {
		wg.Add(1)
		go func(key, name string) {
			defer wg.Done()
			rec := do(e, http.MethodPost, "/api/v1/roles", fmt.Sprintf(`{"name":%q}`, name), map[string]string{"x-tenant-id": key})
			assert.Equal(t, http.StatusCreated, rec.Code)
		}(key, name)
	}
	wg.Wait()

	for key, name := range tenants {
		rec := do(e, http.MethodGet, "/api/v1/roles", "", map[string]string{"x-tenant-id": key})
		require.Equal(t, http.StatusOK, rec.Code)

		var list []model.Role
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &list))
		require.Len(t, list, 1, key)
		assert.Equal(t, name, list[0].Name)
	}
}
