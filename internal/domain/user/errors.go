package user

import "errors"

var (
	ErrUnauthenticated         = errors.New("authentication required")
	ErrInvalidRole             = errors.New("invalid role")
	ErrAdminAccessRequired     = errors.New("admin access required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
