package githubstore

import (
	"context"
	"errors"
)

// TransformFunc rebuilds an object's serialized form from its current
// content. found is false when the path does not exist yet; content is nil
// in that case. The function must re-derive its mutation from the content it
// is handed every time it runs, because Update re-invokes it after a version
// conflict with freshly read state. Returning an error aborts the update
// without writing.
type TransformFunc func(content []byte, found bool) ([]byte, error)

const (
	conflictRetries  = 1
	transientRetries = 2
)

// Update runs the read-mutate-write cycle for one logical mutation of a
// versioned object:
//
//  1. read current content + sha (absent object starts from nil),
//  2. fn produces the new serialized content,
//  3. write with the observed sha as precondition (create-only when absent).
//
// A version conflict (or a create racing an earlier create) triggers exactly
// one retry from a fresh read; a second conflict is returned to the caller.
// Transient store errors retry the whole cycle a bounded number of times.
// The original payload is never resubmitted blindly.
func Update(ctx context.Context, s Store, path, message string, fn TransformFunc) (string, error) {
	conflicts := 0
	transients := 0
	for {
		var content []byte
		var sha string
		obj, err := s.Read(ctx, path)
		switch {
		case err == nil:
			content = obj.Content
			sha = obj.SHA
		case errors.Is(err, ErrNotFound):
			// create path: fn sees found=false
		case errors.Is(err, ErrTransient) && transients < transientRetries:
			transients++
			continue
		default:
			return "", err
		}

		next, err := fn(content, sha != "")
		if err != nil {
			return "", err
		}

		newSHA, err := s.Write(ctx, path, next, sha, message)
		if err == nil {
			return newSHA, nil
		}
		if errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrAlreadyExists) {
			if conflicts >= conflictRetries {
				return "", err
			}
			conflicts++
			continue
		}
		if errors.Is(err, ErrTransient) && transients < transientRetries {
			transients++
			continue
		}
		return "", err
	}
}
