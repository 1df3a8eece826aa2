// Package executor wraps the execution of one business operation and turns
// any outcome into a protocol.Response. It is the single seam between
// business code and the wire: no failure crosses it unshaped.
package executor

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"forest-tails/server/internal/apperr"
	"forest-tails/server/internal/protocol"
	"forest-tails/server/internal/store"
)

const (
	internalErrorMessage = "An unexpected internal error has occurred. The incident has been logged."
	timeoutMessage       = "The server took too long to respond. Please try again."
	canceledMessage      = "The operation was canceled."
)

type Executor struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Executor {
	return &Executor{logger: logger}
}

// Execute runs op and shapes its outcome. Domain errors keep their code and
// message, timeouts and cancellations map to the timeout code, tagged
// infrastructure errors map to their band, and anything else (including a
// panic) becomes a generic internal error that never leaks the original
// text.
func Execute[T any](ex *Executor, ctx context.Context, name string, op func(context.Context) (T, error)) (resp protocol.Response[T]) {
	defer func() {
		if r := recover(); r != nil {
			ex.logger.Error("uncontrolled crash in operation",
				zap.String("operation", name), zap.Any("panic", r), zap.Stack("stack"))
			resp = protocol.Fail[T](protocol.CodeServerInternalError, internalErrorMessage)
		}
	}()

	data, err := op(ctx)
	if err == nil {
		return protocol.OK(data)
	}
	code, message := ex.resolve(name, err)
	return protocol.Fail[T](code, message)
}

// Run is the no-result variant of Execute.
func Run(ex *Executor, ctx context.Context, name string, op func(context.Context) error) protocol.Response[bool] {
	return Execute(ex, ctx, name, func(ctx context.Context) (bool, error) {
		if err := op(ctx); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (ex *Executor) resolve(name string, err error) (protocol.Code, string) {
	if e, ok := apperr.As(err); ok {
		ex.logger.Warn("business rule error in operation",
			zap.String("operation", name), zap.Int("code", int(e.Code)), zap.String("message", e.Message))
		return e.Code, e.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		ex.logger.Error("timeout in operation", zap.String("operation", name), zap.Error(err))
		return protocol.CodeTimeout, timeoutMessage
	}
	if errors.Is(err, context.Canceled) {
		ex.logger.Info("cancellation in operation", zap.String("operation", name))
		return protocol.CodeTimeout, canceledMessage
	}
	if code, message, ok := classifyInfra(err); ok {
		ex.logger.Warn("infrastructure error controlled in operation",
			zap.String("operation", name), zap.Error(err))
		return code, message
	}
	ex.logger.Error("uncontrolled crash in operation",
		zap.String("operation", name), zap.Error(err), zap.Stack("stack"))
	return protocol.CodeServerInternalError, internalErrorMessage
}

// classifyInfra matches the storage tags, first through the error chain and
// then by message prefix for errors raised outside the store package.
func classifyInfra(err error) (protocol.Code, string, bool) {
	for _, m := range infraTags {
		if errors.Is(err, m.tag) || strings.HasPrefix(err.Error(), m.tag.Error()) {
			return m.code, m.message, true
		}
	}
	return protocol.CodeServerInternalError, "", false
}

var infraTags = []struct {
	tag     error
	code    protocol.Code
	message string
}{
	{store.ErrConflict, protocol.CodeConflict, "A conflicting record already exists."},
	{store.ErrConstraint, protocol.CodeValidationError, "The request violates a data constraint."},
	{store.ErrBusy, protocol.CodeTimeout, timeoutMessage},
	{store.ErrAuthFailure, protocol.CodeUnauthorized, "Access denied."},
	{store.ErrUnavailable, protocol.CodeDatabaseError, "The data store is currently unavailable."},
}
