package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"validation", NewValidationError("bad input", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{"not found", NewNotFound("ticket", nil), "NOT_FOUND", http.StatusNotFound},
		{"unauthorized", NewUnauthorized("nope"), "UNAUTHORIZED", http.StatusUnauthorized},
		{"forbidden", NewForbidden("no"), "FORBIDDEN", http.StatusForbidden},
		{"conflict", NewConflict("taken", nil), "CONFLICT", http.StatusConflict},
		{"password change", NewPasswordChangeRequired(), "PASSWORD_CHANGE_REQUIRED", http.StatusForbidden},
		{"internal", NewInternalError(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			domainErr := ToDomainError(tt.err)
			assert.Equal(t, tt.code, domainErr.Code)
			assert.Equal(t, tt.status, domainErr.HTTPStatus)
		})
	}
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	domainErr := ToDomainError(pgx.ErrNoRows)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)

	wrapped := fmt.Errorf("loading ticket: %w", pgx.ErrNoRows)
	assert.Equal(t, "NOT_FOUND", ToDomainError(wrapped).Code)
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("connection reset")
	domainErr := ToDomainError(cause)
	assert.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	assert.ErrorIs(t, domainErr, cause)
}

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewConflict("taken", map[string]any{"username": "maria"})
	domainErr := ToDomainError(fmt.Errorf("outer: %w", original))
	require.NotNil(t, domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
	assert.Equal(t, "maria", domainErr.Details["username"])

	assert.Nil(t, ToDomainError(nil))
}

func TestDomainErrorMessage(t *testing.T) {
	plain := &DomainError{Message: "falhou"}
	assert.Equal(t, "falhou", plain.Error())

	withCause := &DomainError{Message: "falhou", Err: errors.New("causa")}
	assert.Contains(t, withCause.Error(), "causa")
}
