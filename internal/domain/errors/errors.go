package errors

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInternalServer    = errors.New("internal server error")
	ErrBadRequest        = errors.New("bad request")

	ErrConfigFileReadFailed = errors.New("failed to read config file")
	ErrConfigParseFailed    = errors.New("failed to parse config file")
	ErrConfigInvalidFormat  = errors.New("invalid config value")
)
