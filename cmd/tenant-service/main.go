package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
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
	"tenant-service/pkg/logger"
	"tenant-service/pkg/registry"
	"tenant-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const serviceName = "tenant-service"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          serviceName,
		Short:        "Schema per tenant API service",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), createAdminCmd())
	return root
}

// app holds what every command needs
type app struct {
	cfg  *config.Config
	log  *zap.Logger
	db   *gorm.DB
	pool *database.Pool
}

func bootstrap() (*app, error) {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load(serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log.Info("Configuration loaded", cfg.LogFields()...)

	db, err := database.InitDB(&cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	pool, err := database.NewPool(db, cfg.DB.AcquireTimeout, log)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, db: db, pool: pool}, nil
}

func (a *app) close() {
	if err := a.pool.SQLDB().Close(); err != nil {
		a.log.Warn("Failed to close database pool", zap.Error(err))
	}
	_ = a.log.Sync()
}

func (a *app) migrate() error {
	if err := database.MigrateControlPlane(a.db, a.cfg.DB.ControlSchema, model.ControlPlaneModels()...); err != nil {
		return fmt.Errorf("failed to migrate control plane: %w", err)
	}
	a.log.Info("Control plane migrated", zap.String("schema", a.cfg.DB.ControlSchema))
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the control-plane tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			return a.migrate()
		},
	}
}

func createAdminCmd() *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a system admin (password is read from ADMIN_PASSWORD)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			if email == "" {
				email = a.cfg.Admin.Email
			}
			if name == "" {
				name = a.cfg.Admin.Name
			}

			tokens := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
				SigningKey:      a.cfg.JWT.SigningKey,
				ExpirationHours: a.cfg.JWT.ExpirationHours,
				Issuer:          a.cfg.JWT.Issuer,
			})
			admins := service.NewSystemAdminService(
				repository.NewPostgresSystemAdminRepository(a.pool, a.cfg.DB.ControlSchema), hash.NewArgon2(), tokens)

			resp := admins.Create(cmd.Context(), model.CreateSystemAdminDTO{
				Email:    email,
				Password: a.cfg.Admin.Password,
				Name:     name,
			})
			if !resp.Success() {
				return fmt.Errorf("create admin: %s", resp.Message)
			}
			a.log.Info("System admin created", zap.Uint("id", resp.Data.ID), zap.String("email", resp.Data.Email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email (defaults to ADMIN_EMAIL)")
	cmd.Flags().StringVar(&name, "name", "", "admin display name (defaults to ADMIN_NAME)")
	return cmd
}

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			if migrate || a.cfg.Server.AutoMigrate {
				if err := a.migrate(); err != nil {
					return err
				}
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "migrate the control plane before serving")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg, log := a.cfg, a.log

	if err := prometheus.RegisterDBStats(a.pool.SQLDB(), cfg.DB.DBName); err != nil {
		log.Warn("Failed to register database pool metrics", zap.Error(err))
	}

	var cache registry.Cache = registry.NopCache{}
	if cfg.Redis.Enabled() {
		client := registry.NewRedisClient(&cfg.Redis)
		defer client.Close()
		cache = registry.NewRedisCache(client, serviceName+":tenant:", cfg.Redis.CacheTTL, log)
		log.Info("Tenant resolution cache enabled", zap.String("addr", cfg.Redis.Addr))
	}
	reg := registry.New(a.pool, cfg.DB.ControlSchema, cache, log)

	tokens := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
		Issuer:          cfg.JWT.Issuer,
	})
	hasher := hash.NewArgon2()

	// Repositories
	roleRepo := repository.NewPostgresRoleRepository(a.pool)
	userRepo := repository.NewPostgresUserRepository(a.pool)
	adminRepo := repository.NewPostgresSystemAdminRepository(a.pool, cfg.DB.ControlSchema)
	tenantRepo := repository.NewPostgresTenantRepository(a.pool, cfg.DB.ControlSchema)
	logRepo := repository.NewPostgresOperationLogRepository(a.pool, cfg.DB.ControlSchema)

	// Services
	admins := service.NewSystemAdminService(adminRepo, hasher, tokens)
	tenants := service.NewTenantService(a.pool, cfg.DB.ControlSchema, admins, tenantRepo, logRepo, reg)
	tenantUsers := service.NewTenantUserService(a.pool, admins, tenantRepo, userRepo, logRepo, hasher)

	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	routes.Register(e, routes.Handlers{
		Health:  handler.NewHealthHandler(serviceName, a.pool),
		Roles:   handler.NewRoleHandler(service.NewRoleService(roleRepo)),
		Users:   handler.NewUserHandler(service.NewUserService(userRepo, hasher)),
		Auth:    handler.NewAuthHandler(service.NewAuthService(userRepo, hasher, tokens)),
		Admins:  handler.NewAdminHandler(admins),
		Tenants: handler.NewTenantHandler(tenants, tenantUsers),
	}, reg, tokens, admins, cfg.Tenant)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server stopped", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
