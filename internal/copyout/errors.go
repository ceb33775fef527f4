package copyout

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration       = errors.New("invalid copy configuration")
	ErrEngineAccess        = errors.New("container engine access failed")
	ErrExtraction          = errors.New("archive extraction failed")
	ErrFileSystemOperation = errors.New("file system operation failed")
)

// Classifies err under sentinel unless it already is.
func wrap(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
