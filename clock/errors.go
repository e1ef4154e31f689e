package clock

import "errors"

// ErrInvalidArgument is returned by mutators given a value that cannot be a
// tempo or time-signature component (NaN or infinite). Checks run before any
// state change, so a failed call leaves the scheduler untouched.
var ErrInvalidArgument = errors.New("invalid argument")
