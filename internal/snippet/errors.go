package snippet

import "errors"

// errIndexGone marks a delete whose index no longer exists in the freshly
// read list. Reported as a conflict, never applied.
var errIndexGone = errors.New("snippet index no longer valid")

func isIndexGone(err error) bool {
	return errors.Is(err, errIndexGone)
}
