package instances

import "errors"

var (
	// ErrInvalidRequest is returned when an instance-creation request is malformed
	ErrInvalidRequest = errors.New("invalid instance request")
)
