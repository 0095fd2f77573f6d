package identity

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateIdentity = errors.New("identity already exists")

	ErrDuplicateEmployeeID = fmt.Errorf("%w: employee id", ErrDuplicateIdentity)
	ErrDuplicateUsername   = fmt.Errorf("%w: username", ErrDuplicateIdentity)
	ErrDuplicateEmail      = fmt.Errorf("%w: email", ErrDuplicateIdentity)

	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords; callers must not be able to tell which happened.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrEmailDomainNotAllowed = errors.New("email domain not allowed")

	ErrNotFound = errors.New("user not found")
)
