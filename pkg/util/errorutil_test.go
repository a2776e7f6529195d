package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"row miss maps to not found", pgx.ErrNoRows, "NOT_FOUND", http.StatusNotFound},
		{"wrapped row miss maps to not found", fmt.Errorf("fetch ticket: %w", pgx.ErrNoRows), "NOT_FOUND", http.StatusNotFound},
		{"unique violation maps to conflict", &pgconn.PgError{Code: "23505"}, "CONFLICT", http.StatusConflict},
		{"other pg errors map to internal", &pgconn.PgError{Code: "40001"}, "INTERNAL_ERROR", http.StatusInternalServerError},
		{"unknown errors map to internal", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			domainErr := ToDomainError(tt.err)
			require.NotNil(t, domainErr)
			assert.Equal(t, tt.wantCode, domainErr.Code)
			assert.Equal(t, tt.wantStatus, domainErr.HTTPStatus)
		})
	}
}

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewForbidden("not yours")
	domainErr := ToDomainError(fmt.Errorf("outer: %w", original))
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	assert.Equal(t, http.StatusForbidden, domainErr.HTTPStatus)
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(pgx.ErrNoRows))
	assert.True(t, IsNotFound(NewNotFound("ticket", nil)))
	assert.False(t, IsNotFound(NewConflict("dup", nil)))
	assert.False(t, IsNotFound(nil))
}
