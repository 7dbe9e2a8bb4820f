// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts the underlying router's parameter extraction and common body
decoding patterns, ensuring consistent error handling across handlers.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mangadiyari/api/internal/platform/apperr"
	"github.com/mangadiyari/api/internal/platform/ctxutil"
	"github.com/mangadiyari/api/internal/platform/sec"
	"github.com/mangadiyari/api/internal/platform/validate"
)

// DecodeJSON reads the request body and decodes it into the target structure.
// It returns validate.ErrInvalidJSON if decoding fails.
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Claims extracts the authenticated user claims from the request context.
// It returns nil if the request is anonymous.
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

// RequiredClaims ensures the request is authenticated and returns the claims.
//
// Returns:
//   - *sec.AuthClaims: The authenticated user claims
//   - error: apperr.Unauthorized if the request is not authenticated
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

// RequiredUserID returns the user ID of the currently logged-in user.
//
// Returns:
//   - string: User UUID
//   - error: apperr.Unauthorized if not authenticated
func RequiredUserID(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// OptionalUserID returns a pointer to the current user's ID, or nil when the
// request is anonymous. Endpoints that allow unauthenticated participation
// (posting, reading threads) use this instead of [RequiredUserID].
func OptionalUserID(request *http.Request) *string {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil
	}
	return &claims.UserID
}
