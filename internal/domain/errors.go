package domain

import "errors"

var (
	ErrNoSession       = errors.New("no session id available")
	ErrPopupBlocked    = errors.New("popup blocked, allow popups for this site")
	ErrLoginTimeout    = errors.New("authentication timed out")
	ErrAuthFailed      = errors.New("authentication failed")
	ErrInvalidProvider = errors.New("unknown identity provider")
	ErrAccountNotFound = errors.New("account not found")
	ErrTenantNotFound  = errors.New("workspace not found")
	ErrSessionRejected = errors.New("session rejected by backend")
)
