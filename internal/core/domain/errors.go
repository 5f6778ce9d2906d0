package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrInvalidInput       = errors.New("invalid input")
	// ErrTemporary marks transient backend failures worth retrying.
	ErrTemporary = errors.New("temporary failure")
	// ErrMalformedResponse marks non-array or schema-violating backend output.
	// Retried as transient since it is often a truncation artifact.
	ErrMalformedResponse = errors.New("malformed backend response")
	// ErrNoChunks is the only pipeline-fatal condition: the document produced
	// no analyzable text at all.
	ErrNoChunks = errors.New("no analyzable chunks extracted")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
