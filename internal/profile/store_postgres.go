// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

package profile

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangadiyari/api/internal/platform/database/schema"
	"github.com/mangadiyari/api/internal/platform/dberr"
)

// PostgresResolver implements [Resolver] against the users.account table.
type PostgresResolver struct {
	db *pgxpool.Pool
}

// NewPostgresResolver constructs a PostgreSQL backed profile resolver.
func NewPostgresResolver(db *pgxpool.Pool) *PostgresResolver {
	return &PostgresResolver{db: db}
}

/*
ResolveByIDs fetches public profiles for a set of user IDs in a single query.

Description: Uses id = ANY($1) so thread assembly costs one round trip
regardless of how many distinct authors appear in the thread.

Parameters:
  - ctx: context.Context
  - ids: []string

Returns:
  - map[string]Profile: Keyed by user ID
  - error: Database retrieval failures
*/
func (resolver *PostgresResolver) ResolveByIDs(ctx context.Context, ids []string) (map[string]Profile, error) {
	profiles := make(map[string]Profile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = ANY($1::uuid[]) AND %s IS NULL`,
		schema.UserAccount.ID, schema.UserAccount.Username,
		schema.UserAccount.AvatarURL, schema.UserAccount.Role,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt,
	)

	rows, err := resolver.db.Query(ctx, query, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "resolve_profiles")
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var p Profile
		if err := rows.Scan(&id, &p.Username, &p.AvatarURL, &p.Role); err != nil {
			return nil, dberr.Wrap(err, "scan_profile")
		}
		profiles[id] = p
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "resolve_profiles")
	}

	return profiles, nil
}
