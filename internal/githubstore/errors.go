package githubstore

import (
	"errors"
	"fmt"
)

// Error classes reported by the store. Callers branch with errors.Is; the
// wrapped message carries the request detail.
var (
	// ErrNotFound means the path (or the repo/branch itself) does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrVersionConflict means the supplied sha no longer matches the
	// object's current version. The caller must re-read before retrying.
	ErrVersionConflict = errors.New("version conflict")

	// ErrAccessDenied covers bad or insufficient credentials. Not retryable.
	ErrAccessDenied = errors.New("access denied")

	// ErrAlreadyExists is returned by create-only writes (empty sha) when
	// the path already holds content.
	ErrAlreadyExists = errors.New("object already exists")

	// ErrTransient covers network failures and upstream 5xx responses.
	// Safe to retry a bounded number of times from a fresh read.
	ErrTransient = errors.New("transient upstream error")
)

func statusErr(method, path string, status int, body string) error {
	if len(body) > 200 {
		body = body[:200]
	}
	switch {
	case status == 404:
		return fmt.Errorf("github: %s %s: %w", method, path, ErrNotFound)
	case status == 401 || status == 403:
		return fmt.Errorf("github: %s %s: status %d: %s: %w", method, path, status, body, ErrAccessDenied)
	case status == 409 || status == 422:
		return fmt.Errorf("github: %s %s: status %d: %s: %w", method, path, status, body, ErrVersionConflict)
	case status >= 500:
		return fmt.Errorf("github: %s %s: status %d: %w", method, path, status, ErrTransient)
	default:
		return fmt.Errorf("github: %s %s: unexpected status %d: %s", method, path, status, body)
	}
}

func netErr(method, path string, err error) error {
	return fmt.Errorf("github: %s %s: %v (%w)", method, path, err, ErrTransient)
}
