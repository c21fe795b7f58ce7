package service

import (
	"errors"

	"gov-be/internal/domain"
	apperrors "gov-be/pkg/errors"
)

// MapError translates engine sentinel errors into the structured error
// taxonomy the HTTP layer serializes. Unknown errors become internal errors
// so storage details never leak to callers.
func MapError(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return apperrors.NewUnauthorizedError(err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return apperrors.NewNotFoundError(err.Error())
	case errors.Is(err, domain.ErrInvalidWindow):
		return apperrors.NewInvalidWindowError(err.Error())
	case errors.Is(err, domain.ErrWindowClosed):
		return apperrors.NewWindowClosedError(err.Error())
	case errors.Is(err, domain.ErrInvalidChoice):
		return apperrors.NewInvalidChoiceError(err.Error())
	case errors.Is(err, domain.ErrAlreadyExecuted):
		return apperrors.NewAlreadyExecutedError(err.Error())
	case errors.Is(err, domain.ErrAlreadyWithdrawn):
		return apperrors.NewAlreadyWithdrawnError(err.Error())
	case errors.Is(err, domain.ErrInsufficientApprovals):
		return apperrors.NewInsufficientApprovalsError(err.Error(), nil)
	case errors.Is(err, domain.ErrExternalExecutionFailed):
		return apperrors.NewExternalExecutionError(err.Error(), err)
	default:
		return apperrors.NewInternalError("internal server error", err)
	}
}
