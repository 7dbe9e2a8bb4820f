// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

package discussion

import "context"

// # Moderation Gate

// Visible is the moderation gate: a comment may be rendered if and only if
// it has been approved. Pure predicate with no state and no I/O.
func Visible(comment *Comment) bool {
	return comment.IsApproved
}

// # Moderation Policy

// ModerationPolicy answers whether comments on a manga require approval
// before becoming visible. The flag is owned by the catalogue collaborator;
// this engine only reads it.
type ModerationPolicy interface {

	/*
		IsModerated reports whether new comments on the manga start unapproved.

		Parameters:
		  - ctx: context.Context
		  - mangaID: string (Manga UUID)

		Returns:
		  - bool: true when moderation is active for the manga
		  - error: NOT_FOUND when the manga does not exist, or storage failures
	*/
	IsModerated(ctx context.Context, mangaID string) (bool, error)
}
