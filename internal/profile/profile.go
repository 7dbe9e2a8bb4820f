// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

/*
Package profile resolves public display identities for comment rendering.

It is the read-side of the identity collaborator: account management lives in
the identity service, this package only answers "what does this set of user
IDs look like to a reader" in one batched lookup.

# Core Responsibility

  - Batching: One "id in set" query per thread load, never per-row lookups.
  - Caching: A Redis read-through decorator keeps hot profiles off PostgreSQL.

The resolved [Profile] carries only public fields, no email and no credentials.
*/
package profile

import "context"

// Profile is the public display identity of a registered user.
type Profile struct {
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar,omitempty"`
	Role      *string `json:"role,omitempty"`
}

// Resolver answers batched identity lookups by user ID set.
type Resolver interface {

	/*
		ResolveByIDs fetches public profiles for the given user IDs in one call.

		Parameters:
		  - ctx: context.Context
		  - ids: []string (User UUIDs, duplicates tolerated)

		Returns:
		  - map[string]Profile: Keyed by user ID; unknown IDs are simply absent
		  - error: Retrieval failures
	*/
	ResolveByIDs(ctx context.Context, ids []string) (map[string]Profile, error)
}
