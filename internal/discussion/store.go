// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

package discussion

import "context"

// # Comment Data Access

// Repository defines the persistence contract for comments.
//
// List methods return both approved and unapproved rows; visibility is the
// moderation gate's concern, applied by the service layer.
type Repository interface {

	/*
		FindByID retrieves a comment by its UUID, with derived counts attached.

		Parameters:
		  - ctx: context.Context
		  - id: string (Comment UUID)

		Returns:
		  - *Comment: Hydrated entity
		  - error: NOT_FOUND if missing
	*/
	FindByID(ctx context.Context, id string) (*Comment, error)

	/*
		ListTopLevel returns a manga's top-level comments, newest first.

		Parameters:
		  - ctx: context.Context
		  - mangaID: string (Manga UUID)

		Returns:
		  - []*Comment: Ordered descending by creation time
		  - error: Database retrieval failures
	*/
	ListTopLevel(ctx context.Context, mangaID string) ([]*Comment, error)

	/*
		ListReplies returns ALL replies of a manga's thread in one call,
		oldest first, so the assembler can group them without per-parent
		round trips.

		Parameters:
		  - ctx: context.Context
		  - mangaID: string (Manga UUID)

		Returns:
		  - []*Comment: Ordered ascending by creation time
		  - error: Database retrieval failures
	*/
	ListReplies(ctx context.Context, mangaID string) ([]*Comment, error)

	/*
		ListPending returns a page of unapproved comments for the moderation
		queue, oldest first, and the total pending count.

		Parameters:
		  - ctx: context.Context
		  - limit, offset: int

		Returns:
		  - []*Comment: Page of pending comments
		  - int: Total pending count
		  - error: Database retrieval failures
	*/
	ListPending(ctx context.Context, limit, offset int) ([]*Comment, int, error)

	/*
		Create persists a new comment. CreatedAt/UpdatedAt are set by the store.

		Parameters:
		  - ctx: context.Context
		  - comment: *Comment

		Returns:
		  - error: Persistence failures
	*/
	Create(ctx context.Context, comment *Comment) error

	/*
		Update persists body, spoiler flag, and approval flag changes.

		Parameters:
		  - ctx: context.Context
		  - comment: *Comment

		Returns:
		  - error: NOT_FOUND if missing, or persistence failures
	*/
	Update(ctx context.Context, comment *Comment) error

	/*
		Delete removes a comment together with its replies and reactions.

		Parameters:
		  - ctx: context.Context
		  - id: string (Comment UUID)

		Returns:
		  - error: Persistence failures
	*/
	Delete(ctx context.Context, id string) error
}

// # Reaction Data Access

// ReactionRepository defines the persistence contract for reaction rows.
//
// Uniqueness of (comment, viewer) is enforced here; concurrent writes from
// the same viewer resolve to exactly one final row, never duplicates.
type ReactionRepository interface {

	/*
		Find retrieves the viewer's reaction row for one comment.

		Parameters:
		  - ctx: context.Context
		  - commentID, userID: string

		Returns:
		  - *Reaction: nil (with nil error) when no row exists
		  - error: Database retrieval failures
	*/
	Find(ctx context.Context, commentID, userID string) (*Reaction, error)

	/*
		FindForViewer batch-fetches the viewer's reactions for an id set in
		one call. This is the only reaction lookup thread assembly performs.

		Parameters:
		  - ctx: context.Context
		  - commentIDs: []string
		  - userID: string

		Returns:
		  - map[string]bool: comment ID -> islike; absent means no reaction
		  - error: Database retrieval failures
	*/
	FindForViewer(ctx context.Context, commentIDs []string, userID string) (map[string]bool, error)

	/*
		Upsert inserts the viewer's reaction or overwrites its islike value.

		Parameters:
		  - ctx: context.Context
		  - commentID, userID: string
		  - isLike: bool

		Returns:
		  - error: Persistence failures
	*/
	Upsert(ctx context.Context, commentID, userID string, isLike bool) error

	/*
		Delete removes the viewer's reaction row. Removing an absent row is
		not an error.

		Parameters:
		  - ctx: context.Context
		  - commentID, userID: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(ctx context.Context, commentID, userID string) error

	/*
		Count recounts a comment's reactions from live rows.

		Parameters:
		  - ctx: context.Context
		  - commentID: string

		Returns:
		  - int: Like count
		  - int: Dislike count
		  - error: Database retrieval failures
	*/
	Count(ctx context.Context, commentID string) (likes int, dislikes int, err error)
}
