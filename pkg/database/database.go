package database

import (
	"fmt"

	"tenant-service/pkg/config"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// InitDB opens the shared connection pool with configuration
func InitDB(dbConfig *config.DBConfig, log *zap.Logger) (*gorm.DB, error) {
	// Configure Postgres options
	pgConfig := postgres.Config{
		DSN:                  dbConfig.GetDSN(),
		PreferSimpleProtocol: true, // no prepared statement may outlive a search_path switch
	}

	db, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(dbConfig.LogLevel),
	})
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Error("Failed to get database object", zap.Error(err))
		return nil, err
	}

	// Set connection pool settings from config
	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	log.Info("Database connected successfully",
		zap.String("host", dbConfig.Host),
		zap.String("database", dbConfig.DBName),
		zap.Int("max_open_conns", dbConfig.MaxOpenConns))

	return db, nil
}

// MigrateControlPlane creates or updates the control-plane tables inside controlSchema
func MigrateControlPlane(db *gorm.DB, controlSchema string, models ...schema.Tabler) error {
	if db == nil {
		return fmt.Errorf("database is not initialized")
	}
	if err := ValidateSchemaName(controlSchema); err != nil {
		return err
	}

	if err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{controlSchema}.Sanitize()).Error; err != nil {
		return fmt.Errorf("failed to create control schema: %w", err)
	}

	for _, m := range models {
		if err := db.Table(controlSchema + "." + m.TableName()).AutoMigrate(m); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", m.TableName(), err)
		}
	}
	return nil
}
