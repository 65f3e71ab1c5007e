package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrCannotDelete    = errors.New("cannot delete")
	ErrUnavailable     = errors.New("temporarily unavailable")
	ErrCatalogDisabled = errors.New("catalog integration disabled")

	ErrTechnologyNotFound  = fmt.Errorf("technology %w", ErrNotFound)
	ErrServerNotFound      = fmt.Errorf("server %w", ErrNotFound)
	ErrApplicationNotFound = fmt.Errorf("application %w", ErrNotFound)
	ErrRemediationNotFound = fmt.Errorf("remediation %w", ErrNotFound)
	ErrCatalogItemNotFound = fmt.Errorf("catalog item %w", ErrNotFound)
)
