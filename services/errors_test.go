package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeNotFound,
				Message: "User not found",
				Err:     errors.New("db error"),
			},
			wantMsg: "not_found: User not found (db error)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	assert.Equal(t, baseErr, errors.Unwrap(domainErr))
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "sentinel itself",
			err:    ErrInvalidCredentials,
			target: ErrInvalidCredentials,
			want:   true,
		},
		{
			name:   "sentinel wrapped with a cause",
			err:    ErrDuplicateEmail.Wrap(errors.New("unique violation")),
			target: ErrDuplicateEmail,
			want:   true,
		},
		{
			name:   "same type different message",
			err:    ErrMissingToken,
			target: ErrInvalidCredentials,
			want:   false,
		},
		{
			name:   "different error type",
			err:    NewDomainError(ErrorTypeValidation, "User not found", nil),
			target: ErrUserNotFound,
			want:   false,
		},
		{
			name:   "not a domain error",
			err:    ErrUserNotFound,
			target: errors.New("regular error"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := ErrInvalidInput.WithDetail("field", "email").WithDetail("value", "invalid-email")

	assert.Equal(t, "email", err.Details["field"])
	assert.Equal(t, "invalid-email", err.Details["value"])
	assert.Empty(t, ErrInvalidInput.Details, "sentinel must not be mutated")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestErrorTypeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", ErrUserNotFound, IsNotFoundError, true},
		{"wrapped not found", fmt.Errorf("wrapped: %w", ErrUserNotFound), IsNotFoundError, true},
		{"nil is not not found", nil, IsNotFoundError, false},
		{"validation", ErrInvalidInput, IsValidationError, true},
		{"not found is not validation", ErrUserNotFound, IsValidationError, false},
		{"invalid credentials", ErrInvalidCredentials, IsUnauthorizedError, true},
		{"missing token", ErrMissingToken, IsUnauthorizedError, true},
		{"expired token", ErrTokenExpired, IsUnauthorizedError, true},
		{"duplicate email", ErrDuplicateEmail, IsConflictError, true},
		{"validation is not conflict", ErrInvalidInput, IsConflictError, false},
		{"internal", ErrDatabaseError, IsInternalError, true},
		{"regular error", errors.New("regular"), IsInternalError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"not found", ErrUserNotFound, ErrorTypeNotFound},
		{"validation", ErrInvalidInput, ErrorTypeValidation},
		{"conflict", ErrDuplicateEmail, ErrorTypeConflict},
		{"unauthorized", ErrInvalidCredentials, ErrorTypeUnauthorized},
		{"regular error", errors.New("regular"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorType(tt.err))
		})
	}
}

func TestGetErrorDetails(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "validation error", nil).
		WithDetail("field", "email").
		WithDetail("reason", "invalid format")

	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "email", details["field"])
	assert.Equal(t, "invalid format", details["reason"])

	assert.Nil(t, GetErrorDetails(errors.New("regular error")))
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, "User already exists with this email", GetErrorMessage(fmt.Errorf("x: %w", ErrDuplicateEmail)))
	assert.Empty(t, GetErrorMessage(errors.New("regular")))
}

func TestWrapInternal(t *testing.T) {
	baseErr := errors.New("database connection failed")
	wrapped := WrapInternal("failed to connect", baseErr)

	assert.True(t, IsInternalError(wrapped))
	assert.Equal(t, baseErr, errors.Unwrap(wrapped))
}
