package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	errOperationFailed = errors.New("operation failed")
	errAuthRequired    = errors.New("authentication required")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest checks the validate tags of a request message.
func validateRequest(msg any) error {
	if err := validate.Struct(msg); err != nil {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	return nil
}

// callerID returns the authenticated user ID from the context.
func callerID(ctx context.Context) (int64, error) {
	userID := middleware.GetUserID(ctx)
	if userID == 0 {
		return 0, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}
	return userID, nil
}

func permissionDenied(format string, args ...any) error {
	return connect.NewError(connect.CodePermissionDenied, fmt.Errorf(format, args...))
}

func failedPrecondition(format string, args ...any) error {
	return connect.NewError(connect.CodeFailedPrecondition, fmt.Errorf(format, args...))
}

// toConnectError maps storage and ledger errors to Connect codes. Errors
// without a dedicated code are logged and reported as an opaque failure.
func toConnectError(logger *slog.Logger, op string, err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return connectErr
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, storage.ErrRetryable):
		logger.Warn(op+" failed, retryable", "error", err)
		return connect.NewError(connect.CodeUnavailable, errors.New("ledger is busy, retry"))
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	logger.Error(op+" failed", "error", err)
	return connect.NewError(connect.CodeInternal, errOperationFailed)
}

func errDuplicateDebtor(debtorID int64) error {
	return fmt.Errorf("debtor %d listed more than once", debtorID)
}

func errItemNotOnBill(itemID int64, billID string) error {
	return fmt.Errorf("item %d is not on bill %s", itemID, billID)
}
