package service

import (
	"context"
	"errors"
	"net/http"

	"tenant-service/internal/model"
	"tenant-service/internal/repository"
	"tenant-service/pkg/database"
	"tenant-service/pkg/logger"

	"go.uber.org/zap"
)

// Op is the validate, guard, persist, respond sequence every service call
// follows. Validate and Guard short-circuit before any write.
type Op[In, Out any] struct {
	Name     string
	Validate func(In) error
	Guard    func(context.Context, In) error
	Persist  func(context.Context, In) (repository.Result[Out], error)
	// Status is used on success; 200 when zero
	Status int
	// Conflict is the message returned for a unique violation
	Conflict string
}

// Run executes the operation and converts every outcome into an envelope
func (op Op[In, Out]) Run(ctx context.Context, in In) model.Response[Out] {
	if op.Validate != nil {
		if err := op.Validate(in); err != nil {
			return model.Fail[Out](http.StatusBadRequest, err.Error())
		}
	}

	if op.Guard != nil {
		if err := op.Guard(ctx, in); err != nil {
			return op.failure(ctx, err)
		}
	}

	result, err := op.Persist(ctx, in)
	if err != nil {
		return op.failure(ctx, err)
	}
	if !result.Success {
		return model.Fail[Out](http.StatusNotFound, result.Message)
	}

	switch op.Status {
	case 0, http.StatusOK:
		return model.OK(result.Data, result.Message)
	case http.StatusCreated:
		return model.Created(result.Data, result.Message)
	case http.StatusAccepted:
		return model.Accepted(result.Data, result.Message)
	case http.StatusNoContent:
		return model.NoContent[Out](result.Message)
	default:
		return model.Response[Out]{Data: &result.Data, Message: result.Message, StatusCode: op.Status}
	}
}

func (op Op[In, Out]) failure(ctx context.Context, err error) model.Response[Out] {
	var f *Failure
	if errors.As(err, &f) {
		return model.Fail[Out](f.Status, f.Message)
	}

	if kind, ok := database.KindOf(err); ok {
		switch kind {
		case database.KindConflict:
			msg := op.Conflict
			if msg == "" {
				msg = "Resource already exists"
			}
			return model.Fail[Out](http.StatusConflict, msg)
		case database.KindConstraint:
			return model.Fail[Out](http.StatusBadRequest, "Request violates a data constraint")
		}
	}

	logger.FromContext(ctx).Error("Operation failed", zap.String("operation", op.Name), zap.Error(err))
	return model.Fail[Out](http.StatusInternalServerError, msgInternal)
}
