package domain

import "errors"

var (
	ErrInvalidAccount     = errors.New("invalid_social_account")
	ErrInvalidPlatform    = errors.New("invalid_platform")
	ErrAccountNotFound    = errors.New("social_account_not_found")
	ErrNoActiveAccount    = errors.New("no_active_account")
	ErrTokenDecryption    = errors.New("token_decryption_failed")
	ErrMissingTokenSecret = errors.New("missing_token_encryption_secret")
)
