package handler

const (
	errInternalServer     = "Internal server error"
	errEmailTaken         = "Email is already registered"
	errInvalidCredentials = "Invalid email or password"
	errUnauthorized       = "Unauthorized"
	errProjectNotFound    = "Project not found"
)
