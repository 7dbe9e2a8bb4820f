// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

package ctxutil_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangadiyari/api/internal/platform/ctxutil"
	"github.com/mangadiyari/api/internal/platform/sec"
)

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", ctxutil.GetRequestID(ctx))
}

func TestLogger_FallbackToDefault(t *testing.T) {
	// A bare context must never return a nil logger.
	logger := ctxutil.GetLogger(context.Background())
	require.NotNil(t, logger)
}

func TestLogger_RoundTrip(t *testing.T) {
	custom := slog.Default().With(slog.String("scope", "test"))
	ctx := ctxutil.WithLogger(context.Background(), custom)

	assert.Same(t, custom, ctxutil.GetLogger(ctx))
}

func TestAuthUser_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ctxutil.GetAuthUser(ctx))

	claims := &sec.AuthClaims{UserID: "user-1", Username: "okur", Role: "member"}
	ctx = ctxutil.WithAuthUser(ctx, claims)

	got := ctxutil.GetAuthUser(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.UserID)
}
