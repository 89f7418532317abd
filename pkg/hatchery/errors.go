package hatchery

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrGooseNotFound indicates no goose has the requested slug
	ErrGooseNotFound = errors.New("goose not found")

	// ErrDuplicateSlug indicates the store already holds a goose with the slug
	ErrDuplicateSlug = errors.New("slug already taken")

	// ErrSlugExhausted indicates every slug candidate within the budget collided
	ErrSlugExhausted = errors.New("slug candidates exhausted")

	// ErrUploadFailed indicates the asset host did not accept the image
	ErrUploadFailed = errors.New("upload failed")

	// ErrTimeSource indicates the current time could not be read for signing
	ErrTimeSource = errors.New("time source unavailable")
)

// ValidationError is a malformed input field. It is always caused by the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// StoreError represents a failed repository lookup or insert
type StoreError struct {
	Op   string
	Slug string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s failed for slug %q: %v", e.Op, e.Slug, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// UploadError represents a failed transmission to an asset host. It matches
// ErrUploadFailed with errors.Is.
type UploadError struct {
	Backend    string
	PublicID   string
	StatusCode int
	Err        error
}

func (e *UploadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upload of %s to %s failed with status %d: %v", e.PublicID, e.Backend, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upload of %s to %s failed: %v", e.PublicID, e.Backend, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

func (e *UploadError) Is(target error) bool {
	return target == ErrUploadFailed
}

// IsClientError returns true if err was caused by the caller's input rather
// than by the server or one of its collaborators.
func IsClientError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
