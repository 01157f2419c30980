package service

import "errors"

var (
	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")

	ErrInvalidInput = errors.New("invalid input")
	ErrNotDirector  = errors.New("principal is not a director")
)
