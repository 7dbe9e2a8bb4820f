// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

package dberr_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangadiyari/api/internal/platform/apperr"
	"github.com/mangadiyari/api/internal/platform/dberr"
)

func TestWrap_Classification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil_passthrough", nil, ""},
		{"no_rows", pgx.ErrNoRows, "NOT_FOUND"},
		{"context_canceled", context.Canceled, "STORAGE_UNAVAILABLE"},
		{"deadline_exceeded", context.DeadlineExceeded, "STORAGE_UNAVAILABLE"},
		{"unique_violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, "CONFLICT"},
		{"connection_failure", &pgconn.PgError{Code: pgerrcode.ConnectionFailure}, "STORAGE_UNAVAILABLE"},
		{"serialization_failure", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, "STORAGE_UNAVAILABLE"},
		{"unknown_error", errors.New("boom"), "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tt.err, "test_action")

			if tt.wantCode == "" {
				assert.NoError(t, wrapped)
				return
			}

			ae := apperr.As(wrapped)
			require.NotNil(t, ae)
			assert.Equal(t, tt.wantCode, ae.Code)
		})
	}
}

func TestWrap_HidesCauseFromClient(t *testing.T) {
	cause := errors.New("SELECT * FROM social.comment blew up")
	wrapped := dberr.Wrap(cause, "load_thread")

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)

	// The client-facing message must never contain SQL fragments.
	assert.NotContains(t, ae.Message, "SELECT")
	assert.ErrorContains(t, ae.Cause, "load_thread")
}
