package auth

import "errors"

var (
	// ErrMalformed is returned when a token cannot be parsed
	ErrMalformed = errors.New("malformed token")

	// ErrBadSignature is returned when the token signature does not match its contents
	ErrBadSignature = errors.New("token signature invalid")

	// ErrExpired is returned when the token is past its expiry
	ErrExpired = errors.New("token expired")

	// ErrInvalidHashFormat is returned when a stored password hash cannot be decoded
	ErrInvalidHashFormat = errors.New("invalid password hash format")

	// ErrEmptyPassword is returned when hashing an empty password
	ErrEmptyPassword = errors.New("password cannot be empty")
)
