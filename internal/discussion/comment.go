// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

/*
Package discussion implements the threaded comment and reaction engine for
manga pages.

It is the one genuinely stateful social subsystem of the platform: comment
threads with a strict two-level shape, per-manga moderation visibility, and a
per-viewer like/dislike toggle with counters that stay correct under
concurrent use.

# Core Responsibility

  - Threads: Assemble a manga's comment thread with author identity and the
    viewer's own reaction attached, newest conversations first.
  - Lifecycle: Post, edit, and delete comments under ownership rules, with
    anonymous participation allowed.
  - Reactions: A tri-state (none/liked/disliked) toggle per comment and
    viewer, backed by at most one reaction row per pair.
  - Moderation: Approval-gated visibility plus a moderator queue.

# Consistency Model

Like and reply counts are always recomputed from live rows, never applied as
caller-supplied deltas, and the (comment, viewer) reaction row is unique at
the storage layer. Concurrent toggles therefore converge without locks.
*/
package discussion

import (
	"net/http"
	"time"

	"github.com/mangadiyari/api/internal/platform/apperr"
)

// MaxBodyLength is the maximum comment length in Unicode characters.
const MaxBodyLength = 500

// # Domain Errors

var (
	// ErrEmptyContent rejects bodies that are empty after trimming.
	ErrEmptyContent = apperr.New("EMPTY_CONTENT", "Comment content cannot be empty", http.StatusBadRequest)

	// ErrContentTooLong rejects bodies longer than [MaxBodyLength] characters.
	ErrContentTooLong = apperr.New("CONTENT_TOO_LONG", "Comment content cannot exceed 500 characters", http.StatusBadRequest)

	// ErrInvalidParent rejects replies that target another reply or a comment
	// belonging to a different manga. Threads are exactly two levels deep.
	ErrInvalidParent = apperr.New("INVALID_PARENT", "Replies can only target top-level comments of the same manga", http.StatusBadRequest)
)

// # Core Entities

// Comment represents a single comment row.
//
// AuthorID is nil for anonymous comments; ParentID is nil for top-level
// comments. The three counters are derived on read from live rows and are
// never accepted from callers.
type Comment struct {
	ID           string    `json:"id"` // UUIDv7
	MangaID      string    `json:"manga_id"`
	AuthorID     *string   `json:"author_id,omitempty"`
	ParentID     *string   `json:"parent_id,omitempty"`
	Body         string    `json:"body"`
	IsSpoiler    bool      `json:"is_spoiler"`
	IsApproved   bool      `json:"is_approved"`
	LikeCount    int       `json:"like_count"`
	DislikeCount int       `json:"dislike_count"`
	ReplyCount   int       `json:"reply_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsTopLevel reports whether the comment starts a conversation.
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}

// Reaction is a viewer's recorded stance on one comment.
//
// At most one row exists per (comment, viewer) pair; absence of a row is the
// sole representation of "no opinion". There is no explicit neutral row.
type Reaction struct {
	CommentID string    `json:"comment_id"`
	UserID    string    `json:"user_id"`
	IsLike    bool      `json:"is_like"`
	CreatedAt time.Time `json:"created_at"`
}

// # Reaction States

// ReactionState is the viewer's stance on a comment as rendered in a thread.
//
// It is deliberately a single tri-state value rather than two booleans, so
// "liked and disliked simultaneously" is unrepresentable by construction.
type ReactionState string

const (
	StateNone     ReactionState = "none"
	StateLiked    ReactionState = "liked"
	StateDisliked ReactionState = "disliked"
)

// stateOf maps a reaction row (or its absence) to a [ReactionState].
func stateOf(reaction *Reaction) ReactionState {
	switch {
	case reaction == nil:
		return StateNone
	case reaction.IsLike:
		return StateLiked
	default:
		return StateDisliked
	}
}

// # Read Models

// Author is the display identity attached to a rendered comment.
type Author struct {
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar"`
	Role      *string `json:"role"`
}

// AnonymousAuthor is the fixed sentinel identity for comments posted without
// an account. It is resolved at read time, never stored.
var AnonymousAuthor = Author{Name: "Anonim"}

// CommentView is a comment prepared for rendering: the row itself, its
// resolved author, the viewer's own reaction state, and (for top-level
// comments) its replies in chronological order.
type CommentView struct {
	Comment
	Author      Author         `json:"author"`
	ViewerState ReactionState  `json:"viewer_state"`
	Replies     []*CommentView `json:"replies,omitempty"`
}

// Thread is the fully assembled comment thread of one manga.
type Thread struct {
	MangaID  string         `json:"manga_id"`
	Comments []*CommentView `json:"comments"`
}

// ReactionResult is the outcome of a reaction toggle: the viewer's new state
// and the comment's recounted totals.
type ReactionResult struct {
	State        ReactionState `json:"state"`
	LikeCount    int           `json:"like_count"`
	DislikeCount int           `json:"dislike_count"`
}

// # Field Identifiers

const (
	FieldBody      = "body"
	FieldMangaID   = "manga_id"
	FieldCommentID = "comment_id"
	FieldParentID  = "parent_id"
	FieldLike      = "like"
	FieldApproved  = "approved"
)
