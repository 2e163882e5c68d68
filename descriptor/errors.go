package descriptor

import "errors"

// ErrInvalidParameter is wrapped by every recoverable error returned by this
// package. The receiver of a failed operation is left untouched.
var ErrInvalidParameter = errors.New("invalid parameter")
