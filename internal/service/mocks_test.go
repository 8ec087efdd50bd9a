package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"tenant-service/internal/model"
	"tenant-service/internal/repository"
	"tenant-service/pkg/database"
	"tenant-service/pkg/hash"
	"tenant-service/pkg/jwtutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func cheapHasher() *hash.Argon2 {
	return &hash.Argon2{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func testTokens() *jwtutil.JWTUtil {
	return jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-secret", ExpirationHours: 24, Issuer: "test"})
}

func strPtr(s string) *string { return &s }

func uintPtr(u uint) *uint { return &u }

func boolPtr(b bool) *bool { return &b }

// countingHasher records how many verifications ran
type countingHasher struct {
	hash.Hasher
	verified int
}

func (c *countingHasher) Verify(password, encoded string) (bool, error) {
	c.verified++
	return c.Hasher.Verify(password, encoded)
}

type mockRoleRepo struct{ mock.Mock }

var _ repository.RoleRepository = (*mockRoleRepo)(nil)

func (m *mockRoleRepo) Create(ctx context.Context, schema string, dto model.CreateRoleDTO) (repository.Result[model.Role], error) {
	args := m.Called(ctx, schema, dto)
	return args.Get(0).(repository.Result[model.Role]), args.Error(1)
}

func (m *mockRoleRepo) FindByID(ctx context.Context, schema string, id uint) (repository.Result[model.Role], error) {
	args := m.Called(ctx, schema, id)
	return args.Get(0).(repository.Result[model.Role]), args.Error(1)
}

func (m *mockRoleRepo) FindByName(ctx context.Context, schema, name string) (repository.Result[model.Role], error) {
	args := m.Called(ctx, schema, name)
	return args.Get(0).(repository.Result[model.Role]), args.Error(1)
}

func (m *mockRoleRepo) FindAll(ctx context.Context, schema string) (repository.Result[[]model.Role], error) {
	args := m.Called(ctx, schema)
	return args.Get(0).(repository.Result[[]model.Role]), args.Error(1)
}

func (m *mockRoleRepo) Update(ctx context.Context, schema string, id uint, dto model.UpdateRoleDTO) (repository.Result[model.Role], error) {
	args := m.Called(ctx, schema, id, dto)
	return args.Get(0).(repository.Result[model.Role]), args.Error(1)
}

func (m *mockRoleRepo) Delete(ctx context.Context, schema string, id uint) (repository.Result[model.Role], error) {
	args := m.Called(ctx, schema, id)
	return args.Get(0).(repository.Result[model.Role]), args.Error(1)
}

type mockUserRepo struct{ mock.Mock }

var _ repository.UserRepository = (*mockUserRepo)(nil)

func (m *mockUserRepo) Create(ctx context.Context, schema string, user model.NewUser) (repository.Result[model.User], error) {
	args := m.Called(ctx, schema, user)
	return args.Get(0).(repository.Result[model.User]), args.Error(1)
}

func (m *mockUserRepo) CreateWith(c *database.Conn, user model.NewUser) (repository.Result[model.User], error) {
	args := m.Called(c, user)
	return args.Get(0).(repository.Result[model.User]), args.Error(1)
}

func (m *mockUserRepo) FindByID(ctx context.Context, schema string, id uint) (repository.Result[model.User], error) {
	args := m.Called(ctx, schema, id)
	return args.Get(0).(repository.Result[model.User]), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, schema, email string) (repository.Result[model.User], error) {
	args := m.Called(ctx, schema, email)
	return args.Get(0).(repository.Result[model.User]), args.Error(1)
}

func (m *mockUserRepo) FindAll(ctx context.Context, schema string) (repository.Result[[]model.User], error) {
	args := m.Called(ctx, schema)
	return args.Get(0).(repository.Result[[]model.User]), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, schema string, id uint, dto model.UserChanges) (repository.Result[model.User], error) {
	args := m.Called(ctx, schema, id, dto)
	return args.Get(0).(repository.Result[model.User]), args.Error(1)
}

func (m *mockUserRepo) Delete(ctx context.Context, schema string, id uint) (repository.Result[model.User], error) {
	args := m.Called(ctx, schema, id)
	return args.Get(0).(repository.Result[model.User]), args.Error(1)
}

type mockAdminRepo struct{ mock.Mock }

var _ repository.SystemAdminRepository = (*mockAdminRepo)(nil)

func (m *mockAdminRepo) Create(ctx context.Context, dto model.NewSystemAdmin) (repository.Result[model.SystemAdmin], error) {
	args := m.Called(ctx, dto)
	return args.Get(0).(repository.Result[model.SystemAdmin]), args.Error(1)
}

func (m *mockAdminRepo) FindByID(ctx context.Context, id uint) (repository.Result[model.SystemAdmin], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(repository.Result[model.SystemAdmin]), args.Error(1)
}

func (m *mockAdminRepo) FindByEmail(ctx context.Context, email string) (repository.Result[model.SystemAdmin], error) {
	args := m.Called(ctx, email)
	return args.Get(0).(repository.Result[model.SystemAdmin]), args.Error(1)
}

func (m *mockAdminRepo) FindAll(ctx context.Context) (repository.Result[[]model.SystemAdmin], error) {
	args := m.Called(ctx)
	return args.Get(0).(repository.Result[[]model.SystemAdmin]), args.Error(1)
}

func (m *mockAdminRepo) Update(ctx context.Context, id uint, dto model.SystemAdminChanges) (repository.Result[model.SystemAdmin], error) {
	args := m.Called(ctx, id, dto)
	return args.Get(0).(repository.Result[model.SystemAdmin]), args.Error(1)
}

func (m *mockAdminRepo) Delete(ctx context.Context, id uint) (repository.Result[model.SystemAdmin], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(repository.Result[model.SystemAdmin]), args.Error(1)
}

type mockGate struct{ mock.Mock }

func (m *mockGate) RequireActive(ctx context.Context, adminID uint) error {
	return m.Called(ctx, adminID).Error(0)
}

type recordingInvalidator struct {
	keys []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, key string) {
	r.keys = append(r.keys, key)
}

func setupMockPool(t *testing.T) (*database.Pool, sqlmock.Sqlmock) {
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
	return pool, mock
}

func expectBind(mock sqlmock.Sqlmock, schema string) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT set_config('search_path'")).
		WithArgs(schema).
		WillReturnRows(sqlmock.NewRows([]string{"set_config"}).AddRow(schema))
}

func expectReset(mock sqlmock.Sqlmock) {
	mock.ExpectExec(regexp.QuoteMeta("RESET search_path")).WillReturnResult(sqlmock.NewResult(0, 0))
}

func errPg(code string) error {
	return &pgconn.PgError{Code: code, Message: "postgres error " + code}
}
