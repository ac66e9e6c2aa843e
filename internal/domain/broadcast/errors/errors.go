// Package errors contains domain-specific errors for the broadcast domain
package errors

import (
	pkgerrors "github.com/RaShaimardanov/franky/pkg/errors"
)

// Domain errors for broadcast operations
var (
	// ErrAssetUnresolvable means the transport no longer recognises a stored asset handle
	ErrAssetUnresolvable = pkgerrors.NewNotFoundError("asset handle is no longer resolvable")
	// ErrSourceFileMissing means the broadcast has no file in the file store
	ErrSourceFileMissing = pkgerrors.NewNotFoundError("source audio file is missing")
	// ErrPersistence means a handle write did not commit
	ErrPersistence = pkgerrors.NewInternalError("failed to persist asset handle")

	ErrBroadcastNotFound  = pkgerrors.NewNotFoundError("broadcast not found")
	ErrUserNotFound       = pkgerrors.NewNotFoundError("user not found")
	ErrDeliveryNotFound   = pkgerrors.NewNotFoundError("delivery not found")
	ErrListenStateMissing = pkgerrors.NewNotFoundError("listen state not found")
	ErrInvalidFilename    = pkgerrors.NewValidationError("invalid audio filename")
	ErrFileExists         = pkgerrors.NewConflictError("audio file already exists")
	ErrInvalidUser        = pkgerrors.NewValidationError("invalid user")
	ErrDatabaseOperation  = pkgerrors.NewInternalError("database operation failed")
	ErrStateStore         = pkgerrors.NewServiceUnavailableError("state store unavailable")
)
