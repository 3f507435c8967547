package engine

import "errors"

var (
	ErrInvalidConfig = errors.New("engine: invalid configuration")
	ErrRunInProgress = errors.New("engine: another run holds the lock")
)
