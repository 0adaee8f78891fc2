package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrInvalidUsername   = errors.New("username must be alphanumeric and non-empty")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrWeakPassword      = errors.New("password must be at least 4 characters")

	// ErrAuthFailed deliberately covers both unknown-user and wrong-password
	// so login responses cannot be used to enumerate usernames.
	ErrAuthFailed = errors.New("invalid username or password")

	// Token errors
	ErrInvalidToken = errors.New("invalid or expired token")

	// Protocol errors
	ErrProtocol = errors.New("malformed or out-of-phase message")

	// Match errors
	ErrInvalidInput = errors.New("invalid paddle input")
)
