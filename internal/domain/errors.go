package domain

import "errors"

// Sentinel errors returned by the governance engine. Services return these
// (possibly wrapped) and the facade maps them to the external error taxonomy.
var (
	ErrUnauthorized            = errors.New("caller lacks required permission")
	ErrNotFound                = errors.New("entity not found")
	ErrInvalidWindow           = errors.New("election window is invalid")
	ErrWindowClosed            = errors.New("election window is closed")
	ErrInvalidChoice           = errors.New("ballot references unregistered candidate")
	ErrAlreadyExecuted         = errors.New("action already executed")
	ErrAlreadyWithdrawn        = errors.New("action already withdrawn")
	ErrInsufficientApprovals   = errors.New("approval count below team threshold")
	ErrExternalExecutionFailed = errors.New("external execution failed after action was marked executed")
)
