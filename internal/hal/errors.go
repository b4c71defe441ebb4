package hal

import "errors"

// Sentinel errors returned at the contract boundary. Implementations wrap them
// with context; callers match with errors.Is.
var (
	ErrInvalidArgument = errors.New("hal: invalid argument")
	ErrInvalidName     = errors.New("hal: invalid interface name")
	ErrDuplicateIface  = errors.New("hal: duplicate interface in list")
	ErrCapacity        = errors.New("hal: capacity exceeded")
	ErrOutOfRange      = errors.New("hal: value out of range")
	ErrNotSupported    = errors.New("hal: not supported")
)

const (
	// StatusSuccess and StatusFailure are the only two outcomes the numeric
	// contract defines.
	StatusSuccess = 0
	StatusFailure = -1

	// InterfaceExist and InterfaceNotExist are returned by existence checks.
	InterfaceExist    = 0
	InterfaceNotExist = -1
)

// Status maps an error to the numeric contract: nil is StatusSuccess,
// anything else StatusFailure.
func Status(err error) int {
	if err != nil {
		return StatusFailure
	}
	return StatusSuccess
}

// ExistStatus maps the result of an existence check to InterfaceExist or
// InterfaceNotExist. A lookup error counts as not existing.
func ExistStatus(ok bool, err error) int {
	if err != nil || !ok {
		return InterfaceNotExist
	}
	return InterfaceExist
}
