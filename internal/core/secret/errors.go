package secret

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPassword means no secret could be resolved from any source.
	ErrNoPassword = errors.New("no vault password could be resolved")

	// ErrNotVault means the file does not start with a supported vault header.
	ErrNotVault = errors.New("not a supported ansible vault file")
)

// ReadError represents a failure to read the vault file.
type ReadError struct {
	Path  string
	Cause error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading vault file '%s' failed: %v", e.Path, e.Cause)
}

func (e *ReadError) Unwrap() error {
	return e.Cause
}

// DecryptError represents a vault that no resolved secret could decrypt.
type DecryptError struct {
	Path     string
	Attempts int
	Cause    error
}

func (e *DecryptError) Error() string {
	return fmt.Sprintf("decrypting vault file '%s' failed after %d attempt(s): %v", e.Path, e.Attempts, e.Cause)
}

func (e *DecryptError) Unwrap() error {
	return e.Cause
}

// DecodeError represents decrypted content that is not a mapping.
type DecodeError struct {
	Path   string
	Format string
	Cause  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding vault file '%s' as %s failed: %v", e.Path, e.Format, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// SourceError represents a password source that could not be loaded.
// It is a setup error and is never collapsed into an empty result.
type SourceError struct {
	Source string
	Cause  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("loading vault password from '%s' failed: %v", e.Source, e.Cause)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}

// IsContentError reports whether err is a content-level failure that callers
// see as empty content by default.
func IsContentError(err error) bool {
	if err == nil {
		return false
	}

	var readErr *ReadError
	var decryptErr *DecryptError
	var decodeErr *DecodeError

	switch {
	case errors.Is(err, ErrNoPassword), errors.Is(err, ErrNotVault):
		return true
	case errors.As(err, &readErr), errors.As(err, &decryptErr), errors.As(err, &decodeErr):
		return true
	default:
		return false
	}
}
