package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Credential/session lifecycle errors
	ErrInvalidOrExpiredCode  = errors.New("invalid or expired code")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrEmailDispatchFailed   = errors.New("email dispatch failed")
)
