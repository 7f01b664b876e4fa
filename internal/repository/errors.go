package repository

import "github.com/postpilot/postpilot-api/internal/apperrors"

// ErrNoRowsAffected is returned by updates and deletes that matched nothing.
var ErrNoRowsAffected error = &apperrors.NotFoundError{Resource: "Record"}
