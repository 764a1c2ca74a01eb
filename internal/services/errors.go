package services

import "errors"

// Domain error taxonomy. Handlers map these onto HTTP status codes; anything
// not in this list is treated as a store failure.
var (
	ErrNotFound           = errors.New("record not found")
	ErrEmailTaken         = errors.New("email already exists")
	ErrSelfDelete         = errors.New("cannot delete yourself")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidPriority    = errors.New("invalid priority")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("insufficient permissions")
)
