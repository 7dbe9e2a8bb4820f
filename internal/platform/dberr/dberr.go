// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

// Package dberr bridges low-level database errors and application errors.
//
// # Classification
//
// Storage failures fall into three classes with different caller contracts:
//
//   - Missing rows map to NOT_FOUND (never retryable).
//   - Connectivity and cancellation failures map to STORAGE_UNAVAILABLE,
//     the only class a caller may safely retry.
//   - Everything else is an INTERNAL_ERROR whose cause stays server-side.
package dberr

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mangadiyari/api/internal/platform/apperr"
)

var (
	// ErrNotFound is the standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the
// error type. The action label is carried on the cause chain for logging.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Missing row
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Caller went away or the statement timed out; transient, retryable.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.StorageUnavailable(wrapAction(err, action))
	}

	// 3. SQLSTATE classification
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.UniqueViolation:
			return apperr.Conflict("Resource already exists")
		case pgerrcode.IsConnectionException(pgErr.Code),
			pgErr.Code == pgerrcode.TooManyConnections,
			pgErr.Code == pgerrcode.CannotConnectNow,
			pgErr.Code == pgerrcode.SerializationFailure,
			pgErr.Code == pgerrcode.DeadlockDetected:
			return apperr.StorageUnavailable(wrapAction(err, action))
		}
	}

	// 4. Network-level failures surface before a PgError exists.
	if pgconn.SafeToRetry(err) {
		return apperr.StorageUnavailable(wrapAction(err, action))
	}

	// 5. Unknown query errors become internal server errors.
	return apperr.Internal(wrapAction(err, action))
}

// actionError preserves the storage action label on the cause chain.
type actionError struct {
	action string
	err    error
}

func (e *actionError) Error() string { return e.action + ": " + e.err.Error() }
func (e *actionError) Unwrap() error { return e.err }

func wrapAction(err error, action string) error {
	if action == "" {
		return err
	}
	return &actionError{action: action, err: err}
}
