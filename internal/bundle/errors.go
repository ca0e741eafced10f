package bundle

import (
	"errors"
	"fmt"
)

var (
	ErrDestinationExists = errors.New("destination directory exists")
	ErrLocked            = errors.New("destination is being bundled by another process")
	ErrAlreadyRun        = errors.New("assembler has already run")
)

// CollisionError reports two different sources that would land on the same
// name in the bundle. First is empty when Name is reserved by the bundle
// itself.
type CollisionError struct {
	Name   string
	First  string
	Second string
}

func (e *CollisionError) Error() string {
	if e.First == "" {
		return fmt.Sprintf("%s: name is reserved by the bundle, cannot place %s there", e.Name, e.Second)
	}
	return fmt.Sprintf("%s: both %s and %s flatten to this name", e.Name, e.First, e.Second)
}
