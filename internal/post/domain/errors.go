package domain

import "errors"

var (
	ErrInvalidPost       = errors.New("invalid_post")
	ErrPostNotFound      = errors.New("post_not_found")
	ErrInvalidTransition = errors.New("invalid_post_transition")
	ErrNotRetryable      = errors.New("post_not_retryable")
	ErrNotCancelable     = errors.New("post_not_cancelable")
)
