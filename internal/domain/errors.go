package domain

import "errors"

var (
	ErrInvalidSettings      = errors.New("invalid settings")
	ErrNoSessions           = errors.New("no usable sessions found")
	ErrSessionUnauthorized  = errors.New("session is not authorized")
	ErrProfileNotFound      = errors.New("account profile not found")
	ErrRateLimited          = errors.New("rate limited by messaging platform")
	ErrAccessHashUnresolved = errors.New("bot access hash unresolved")
	ErrWebAppDataMissing    = errors.New("web app data missing from web view url")
	ErrMissingAuthToken     = errors.New("auth token missing from response")
	ErrMalformedResponse    = errors.New("malformed response")
	ErrNoClickerUser        = errors.New("response has no clicker user")
)
