package errors

import (
	goerrors "errors"
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return goerrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return goerrors.As(err, target)
}

// Unwrap returns the next error in err's chain, or nil.
func Unwrap(err error) error {
	return goerrors.Unwrap(err)
}
