// Package errors contains domain-specific errors for the catalog domain
package errors

import (
	pkgerrors "github.com/RaShaimardanov/franky/pkg/errors"
)

// Domain errors for catalog operations
var (
	ErrInvalidLink       = pkgerrors.NewValidationError("link text does not describe a broadcast")
	ErrAlreadyIngested   = pkgerrors.NewConflictError("broadcast source already ingested")
	ErrSiteUnavailable   = pkgerrors.NewServiceUnavailableError("catalog site unavailable")
	ErrDownloadFailed    = pkgerrors.NewServiceUnavailableError("failed to download broadcast")
	ErrDatabaseOperation = pkgerrors.NewInternalError("database operation failed")
)
