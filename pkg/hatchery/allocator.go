package hatchery

import (
	"context"
	"fmt"
)

// DefaultSlugAttempts is the number of existence checks made before giving up
// on a slug candidate.
const DefaultSlugAttempts = 5

// SlugExistsFunc reports whether a slug is already taken.
type SlugExistsFunc func(ctx context.Context, slug string) (bool, error)

// SlugAllocator finds a free slug by extending a candidate with random
// characters until the store reports it unused.
//
// The check is not reserved: a concurrent request may claim the same slug
// before insert. Repositories close that gap by rejecting duplicates in
// InsertUnique.
type SlugAllocator struct {
	attempts int
	extend   func() string
}

// AllocatorOption configures a SlugAllocator
type AllocatorOption func(*SlugAllocator)

// WithSlugAttempts sets the total number of existence checks
func WithSlugAttempts(n int) AllocatorOption {
	return func(a *SlugAllocator) {
		if n > 0 {
			a.attempts = n
		}
	}
}

// WithSlugExtender replaces the random suffix generator
func WithSlugExtender(fn func() string) AllocatorOption {
	return func(a *SlugAllocator) {
		if fn != nil {
			a.extend = fn
		}
	}
}

// NewSlugAllocator creates an allocator with the default budget
func NewSlugAllocator(opts ...AllocatorOption) *SlugAllocator {
	a := &SlugAllocator{
		attempts: DefaultSlugAttempts,
		extend:   func() string { return RandomAlphanumeric(1) },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate returns the first candidate that exists reports as free. After
// each collision one random character is appended. It fails with
// ErrSlugExhausted once the budget is spent and with a *StoreError when the
// existence check fails.
func (a *SlugAllocator) Allocate(ctx context.Context, candidate string, exists SlugExistsFunc) (string, error) {
	slug := candidate
	for attempt := 0; attempt < a.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if attempt > 0 {
			slug += a.extend()
		}

		taken, err := exists(ctx, slug)
		if err != nil {
			return "", &StoreError{Op: "find_by_slug", Slug: slug, Err: err}
		}
		if !taken {
			return slug, nil
		}
	}

	return "", fmt.Errorf("%w: no free slug derived from %q in %d attempts", ErrSlugExhausted, candidate, a.attempts)
}
