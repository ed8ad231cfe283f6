package serverconfig

import "errors"

var (
	// ErrMissingOption is returned when a required option is absent
	ErrMissingOption = errors.New("missing option")

	// ErrInvalidOption is returned when an option is present but has the wrong shape
	ErrInvalidOption = errors.New("invalid option")

	// ErrUnsupportedFormat is returned when a config file extension is not recognized
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrUnknownKey is returned when a config document has keys outside the schema
	ErrUnknownKey = errors.New("unknown config key")
)
