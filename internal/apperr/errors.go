package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrUpdateRunning = errors.New("update cycle already running")
	ErrPathContract  = errors.New("tag path outside node subtree")
)
