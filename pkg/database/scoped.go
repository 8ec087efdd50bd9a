package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"tenant-service/prometheus"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	bindSearchPath  = `SELECT set_config('search_path', quote_ident(nspname), false) FROM pg_catalog.pg_namespace WHERE nspname = $1`
	resetSearchPath = `RESET search_path`

	releaseTimeout = 2 * time.Second
)

// Pool hands out connections bound to one schema for the duration of a single operation.
// It is safe for concurrent use; a borrowed connection never serves two operations at once.
type Pool struct {
	db             *gorm.DB
	sqlDB          *sql.DB
	acquireTimeout time.Duration
	log            *zap.Logger
}

// NewPool wraps the shared gorm handle
func NewPool(db *gorm.DB, acquireTimeout time.Duration, log *zap.Logger) (*Pool, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}
	if log == nil {
		log = zap.L()
	}
	return &Pool{db: db, sqlDB: sqlDB, acquireTimeout: acquireTimeout, log: log}, nil
}

// SQLDB exposes the underlying pool for health checks and stats
func (p *Pool) SQLDB() *sql.DB {
	return p.sqlDB
}

// Ping checks that the database is reachable
func (p *Pool) Ping(ctx context.Context) error {
	if err := p.sqlDB.PingContext(ctx); err != nil {
		return newError(KindAcquire, "ping", err)
	}
	return nil
}

// Conn is a connection bound to one schema. It is only valid inside the
// callback that received it.
type Conn struct {
	db     *gorm.DB
	schema string
}

// Schema returns the namespace this connection is bound to
func (c *Conn) Schema() string {
	return c.schema
}

// Exec runs a statement with ? placeholders and returns the affected row count
func (c *Conn) Exec(query string, args ...any) (int64, error) {
	defer prometheus.TrackDBOperation("exec")(time.Now())

	tx := c.db.Exec(query, args...)
	if tx.Error != nil {
		return 0, classify("exec", tx.Error)
	}
	return tx.RowsAffected, nil
}

// Query runs a statement with ? placeholders and scans the returned rows into dest
func (c *Conn) Query(dest any, query string, args ...any) (int64, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	tx := c.db.Raw(query, args...).Scan(dest)
	if tx.Error != nil {
		return 0, classify("query", tx.Error)
	}
	return tx.RowsAffected, nil
}

// Do borrows a connection, binds it to schema, runs fn and releases the
// connection on every exit path.
func (p *Pool) Do(ctx context.Context, schema string, fn func(*Conn) error) error {
	if err := ValidateSchemaName(schema); err != nil {
		return newError(KindBind, "validate", err)
	}

	conn, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer p.release(conn, schema)

	if err := p.bind(ctx, conn, schema); err != nil {
		return err
	}

	session := p.db.Session(&gorm.Session{NewDB: true, Context: ctx})
	session.Statement.ConnPool = conn

	return fn(&Conn{db: session, schema: schema})
}

// Tx runs fn inside a transaction on a single borrowed connection. The
// transaction is rolled back when fn returns an error or panics.
func (p *Pool) Tx(ctx context.Context, schema string, fn func(*Conn) error) error {
	return p.Do(ctx, schema, func(c *Conn) (err error) {
		defer prometheus.TrackDBOperation("tx")(time.Now())

		tx := c.db.Begin()
		if tx.Error != nil {
			return classify("begin", tx.Error)
		}

		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
				panic(r)
			}
		}()

		if err = fn(&Conn{db: tx, schema: c.schema}); err != nil {
			if rbErr := tx.Rollback().Error; rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				p.log.Error("Failed to roll back transaction", zap.String("schema", c.schema), zap.Error(rbErr))
				err = multierr.Append(err, classify("rollback", rbErr))
			}
			return err
		}

		if err := tx.Commit().Error; err != nil {
			return classify("commit", err)
		}
		return nil
	})
}

// Exec runs a single statement against schema
func (p *Pool) Exec(ctx context.Context, schema, query string, args ...any) (int64, error) {
	var affected int64
	err := p.Do(ctx, schema, func(c *Conn) error {
		var err error
		affected, err = c.Exec(query, args...)
		return err
	})
	return affected, err
}

// Query runs a single query against schema and scans the result into dest
func (p *Pool) Query(ctx context.Context, schema string, dest any, query string, args ...any) (int64, error) {
	var affected int64
	err := p.Do(ctx, schema, func(c *Conn) error {
		var err error
		affected, err = c.Query(dest, query, args...)
		return err
	})
	return affected, err
}

func (p *Pool) acquire(ctx context.Context) (*sql.Conn, error) {
	defer prometheus.TrackDBOperation("acquire")(time.Now())

	acquireCtx := ctx
	if p.acquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, p.acquireTimeout)
		defer cancel()
	}

	conn, err := p.sqlDB.Conn(acquireCtx)
	if err != nil {
		return nil, newError(KindAcquire, "acquire", err)
	}
	return conn, nil
}

func (p *Pool) bind(ctx context.Context, conn *sql.Conn, schema string) error {
	defer prometheus.TrackDBOperation("bind")(time.Now())

	var path string
	err := conn.QueryRowContext(ctx, bindSearchPath, schema).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return newError(KindBind, "bind", fmt.Errorf("%w: %s", ErrUnknownSchema, schema))
	}
	if err != nil {
		return newError(KindBind, "bind", err)
	}
	return nil
}

// release resets the session and hands the connection back. A connection
// whose reset fails is discarded instead of returned with a stale search_path.
func (p *Pool) release(conn *sql.Conn, schema string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	if _, err := conn.ExecContext(ctx, resetSearchPath); err != nil {
		p.log.Warn("Discarding connection after failed reset",
			zap.String("schema", schema), zap.Error(err))
		_ = conn.Raw(func(any) error { return driver.ErrBadConn })
	}
	if err := conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		p.log.Warn("Failed to release connection", zap.String("schema", schema), zap.Error(err))
	}
}
