package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
)

// Result is the envelope every repository call returns. A missing row is
// Success=false with a message, never an error.
type Result[T any] struct {
	Success bool
	Message string
	Data    T
}

// Repository is the capability every tenant-scoped entity repository provides.
// schema selects the tenant namespace the statements run in.
type Repository[T, C, U any] interface {
	Create(ctx context.Context, schema string, dto C) (Result[T], error)
	FindByID(ctx context.Context, schema string, id uint) (Result[T], error)
	FindAll(ctx context.Context, schema string) (Result[[]T], error)
	Update(ctx context.Context, schema string, id uint, dto U) (Result[T], error)
	Delete(ctx context.Context, schema string, id uint) (Result[T], error)
}

// ControlRepository is the same capability for control-plane entities, whose
// namespace is fixed when the repository is constructed.
type ControlRepository[T, C, U any] interface {
	Create(ctx context.Context, dto C) (Result[T], error)
	FindByID(ctx context.Context, id uint) (Result[T], error)
	FindAll(ctx context.Context) (Result[[]T], error)
	Update(ctx context.Context, id uint, dto U) (Result[T], error)
	Delete(ctx context.Context, id uint) (Result[T], error)
}

func ok[T any](data T, message string) Result[T] {
	return Result[T]{Success: true, Message: message, Data: data}
}

func missing[T any](message string) Result[T] {
	return Result[T]{Message: message}
}

// one turns a single-row statement outcome into a Result
func one[T any](n int64, err error, data T, okMessage, missingMessage string) (Result[T], error) {
	if err != nil {
		return Result[T]{}, err
	}
	if n == 0 {
		return missing[T](missingMessage), nil
	}
	return ok(data, okMessage), nil
}

// many normalizes a list so callers always get an empty slice, never nil
func many[T any](items []T, err error, message string) (Result[[]T], error) {
	if err != nil {
		return Result[[]T]{}, err
	}
	if items == nil {
		items = []T{}
	}
	return ok(items, message), nil
}

// changes collects the columns a sparse update really modifies
type changes map[string]interface{}

func setIfChanged[V comparable](c changes, column string, next *V, current V) {
	if next != nil && *next != current {
		c[column] = *next
	}
}

func setIfChangedPtr[V comparable](c changes, column string, next *V, current *V) {
	if next == nil {
		return
	}
	if current != nil && *current == *next {
		return
	}
	c[column] = *next
}

// updateStatement builds UPDATE table SET ... WHERE id = ? RETURNING columns
func updateStatement(table string, id uint, set changes, returning string) (string, []interface{}, error) {
	return sq.Update(table).
		SetMap(set).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + returning).
		ToSql()
}
