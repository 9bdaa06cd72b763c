package parallel

import "errors"

// ErrInvalidConfig indicates a simulator config that cannot drive a run.
var ErrInvalidConfig = errors.New("parallel: invalid config")
