package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tenant-service/prometheus"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind classifies a database failure so callers can map it to an outcome
type Kind int

const (
	KindStatement Kind = iota
	KindAcquire
	KindBind
	KindConflict
	KindConstraint
)

func (k Kind) String() string {
	switch k {
	case KindAcquire:
		return "acquire"
	case KindBind:
		return "bind"
	case KindConflict:
		return "conflict"
	case KindConstraint:
		return "constraint"
	default:
		return "statement"
	}
}

// SQLSTATE codes used for classification
const (
	codeUniqueViolation = "23505"
	classIntegrity      = "23"
	codeInvalidSchema   = "3F000"
	codeDuplicateSchema = "42P06"
	codeDuplicateTable  = "42P07"
)

var (
	ErrInvalidSchemaName = errors.New("invalid schema name")
	ErrUnknownSchema     = errors.New("unknown schema")
)

// Error is a classified database failure
type Error struct {
	Kind Kind
	Op   string
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("database %s error during %s (%s): %v", e.Kind, e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("database %s error during %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of a classified database error
func KindOf(err error) (Kind, bool) {
	var dbErr *Error
	if errors.As(err, &dbErr) {
		return dbErr.Kind, true
	}
	return 0, false
}

// IsConflict reports whether err is a unique constraint violation
func IsConflict(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindConflict
}

func newError(kind Kind, op string, err error) error {
	prometheus.RecordDBError(kind.String())
	return &Error{Kind: kind, Op: op, Err: err}
}

// classify wraps a driver error into an *Error, leaving already classified errors alone
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var dbErr *Error
	if errors.As(err, &dbErr) {
		return err
	}

	e := &Error{Kind: KindStatement, Op: op, Err: err}
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		e.Kind = KindConflict
	case errors.As(err, &pgErr):
		e.Code = pgErr.Code
		switch {
		case pgErr.Code == codeUniqueViolation, pgErr.Code == codeDuplicateSchema, pgErr.Code == codeDuplicateTable:
			e.Kind = KindConflict
		case strings.HasPrefix(pgErr.Code, classIntegrity):
			e.Kind = KindConstraint
		case pgErr.Code == codeInvalidSchema:
			e.Kind = KindBind
		}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		e.Op = op + " (cancelled)"
	}
	prometheus.RecordDBError(e.Kind.String())
	return e
}
