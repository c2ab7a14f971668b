package shared

import (
	"github.com/pkg/errors"
)

var (
	// Derived data is inconsistent with the chain or with itself, e.g., a spent
	// output was never indexed. Fatal for the current phase.
	ErrDataIntegrity = errors.New("data integrity violation")

	// Lookup of an entity that must exist failed
	ErrNotFound = errors.New("not found")

	// A pipeline run was requested while another one is in progress
	ErrAlreadyRunning = errors.New("pipeline is already running")
)

func DataIntegrityError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDataIntegrity, format, args...)
}

func NotFoundError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrNotFound, format, args...)
}
