package batch

import "errors"

var (
	// ErrNotFound reports an unknown item id.
	ErrNotFound = errors.New("item not found")
	// ErrAlreadyConverting rejects a second conversion of an item in flight.
	ErrAlreadyConverting = errors.New("conversion already in progress")
	// ErrRemoved reports that an item was removed while it was converting.
	ErrRemoved = errors.New("item removed during conversion")
	// ErrClosed reports use of a closed manager.
	ErrClosed = errors.New("batch manager closed")
)
