package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPageOutOfRange is returned by Paginate when the requested page index is
// outside [1, totalPages]. Callers are expected to clamp before asking, so
// seeing this error indicates a caller bug rather than a user condition.
var ErrPageOutOfRange = errors.New("page index out of range")

// ValidationError reports every missing or invalid field of a draft entry.
// The entry is not created and no state changes when it is returned.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid cost entry: " + strings.Join(e.Fields, ", ")
}

// NotFoundError reports a mutation referencing an ID absent from the store.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cost entry %d not found", e.ID)
}
