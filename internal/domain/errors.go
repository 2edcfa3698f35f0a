package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrMissingSource    = errors.New("missing source file")
	ErrMalformedSource  = errors.New("malformed source")
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// LocaleError ties a failure to the locale whose processing produced it.
// Phase is the pipeline phase ("fetch", "filter", "store").
type LocaleError struct {
	Locale Locale
	Phase  string
	Err    error
}

func (e *LocaleError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Phase, e.Locale, e.Err)
}

func (e *LocaleError) Unwrap() error { return e.Err }

// NewLocaleError wraps err with locale and phase. Returns nil for a nil err.
func NewLocaleError(locale Locale, phase string, err error) error {
	if err == nil {
		return nil
	}
	return &LocaleError{Locale: locale, Phase: phase, Err: err}
}

// ErrorKind returns a short, stable label for err, suitable for logs and
// metric labels.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrMissingSource):
		return "missing_source"
	case errors.Is(err, ErrMalformedSource):
		return "malformed_source"
	case errors.Is(err, ErrChecksumMismatch):
		return "checksum_mismatch"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return "internal"
	}
}

// MalformedError describes why a source could not be read as a flat
// string-to-string mapping.
type MalformedError struct {
	// Key is the offending key, empty when the problem is not key-specific.
	Key    string
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("malformed source: %s", e.Reason)
	}
	return fmt.Sprintf("malformed source: key %q: %s", e.Key, e.Reason)
}

func (e *MalformedError) Unwrap() error { return ErrMalformedSource }

// NewMalformedError creates a MalformedError. key may be empty.
func NewMalformedError(key, reason string) *MalformedError {
	return &MalformedError{Key: key, Reason: reason}
}

// ChecksumError reports a download whose content hash differs from the
// expected one.
type ChecksumError struct {
	Source string
	Want   string
	Got    string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: want %s, got %s", e.Source, e.Want, e.Got)
}

func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }
