package domain

import "errors"

var (
	ErrInvalidOrganization  = errors.New("invalid_organization")
	ErrInvalidName          = errors.New("invalid_name")
	ErrOrganizationExists   = errors.New("organization_exists")
	ErrOrganizationNotFound = errors.New("organization_not_found")
	ErrProfileNotFound      = errors.New("business_profile_not_found")
	ErrConfigNotFound       = errors.New("marketing_config_not_found")
)
