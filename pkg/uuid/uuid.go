// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

/*
Package uuid generates time-ordered unique identifiers for the platform.

It wraps the standard UUID library to always produce Version 7 values.

Advantages:

  - Sortable: Naturally ordered by creation time (millisecond precision).
  - Index friendly: Avoids B-tree fragmentation in PostgreSQL primary keys.
  - Compact: 128-bit storage, compatible with the standard 'uuid' column type.

All primary keys in the Mangadiyari schema use this ID type.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
func New() string {
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// IsValid reports whether the value parses as a UUID of any version.
func IsValid(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}
