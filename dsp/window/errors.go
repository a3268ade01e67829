package window

import "errors"

var (
	errMismatchedLength = errors.New("window: mismatched slice lengths")
	errWindowTooShort   = errors.New("window: length must be >= 2")
)

func validateLength(size int) error {
	if size < 2 {
		return errWindowTooShort
	}

	return nil
}
