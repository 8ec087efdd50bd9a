package repository

import (
	"regexp"
	"testing"
	"time"

	"tenant-service/pkg/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	roleCols  = []string{"id", "name", "description", "created_at", "updated_at"}
	userCols  = []string{"id", "email", "password_hash", "first_name", "last_name", "role_id", "active", "created_at", "updated_at", "deleted_at"}
	adminCols = []string{"id", "email", "password_hash", "name", "active", "created_at", "updated_at"}
)

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
