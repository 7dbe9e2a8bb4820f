// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

/*
Package notify provides fire-and-forget event dispatch for social activity.

The discussion engine emits an [Event] when something another service cares
about happens (a reply lands, a moderator approves or rejects a comment).
Delivery, fan-out, and push notifications are owned by downstream consumers;
this package only publishes.

# Contract

Dispatch must never block a request on broker availability and must never
fail the operation that triggered it. Callers log dispatch errors and move on.
*/
package notify

import (
	"context"
	"time"
)

// # Event Types

const (
	// EventCommentReplied fires when a reply is posted under a comment
	// whose author is a registered user.
	EventCommentReplied = "social.comment.replied"

	// EventCommentApproved fires when a moderator approves a comment.
	EventCommentApproved = "social.comment.approved"

	// EventCommentRejected fires when a moderator rejects a comment.
	EventCommentRejected = "social.comment.rejected"
)

// Event is the payload handed to the dispatcher.
type Event struct {
	// ID is a unique event identifier (UUIDv7) for consumer-side dedup.
	ID string `json:"id"`
	// Type is one of the Event* subject constants.
	Type string `json:"type"`
	// CommentID is the comment the event concerns.
	CommentID string `json:"comment_id"`
	// MangaID is the manga that hosts the comment thread.
	MangaID string `json:"manga_id"`
	// RecipientID is the user who should be informed, when known.
	RecipientID *string `json:"recipient_id,omitempty"`
	// ActorID is the user whose action produced the event, when known.
	ActorID *string `json:"actor_id,omitempty"`
	// OccurredAt is the event timestamp (UTC).
	OccurredAt time.Time `json:"occurred_at"`
}

// Dispatcher publishes events to interested consumers.
type Dispatcher interface {

	/*
		Dispatch publishes a single event.

		Parameters:
		  - ctx: context.Context
		  - event: Event

		Returns:
		  - error: Publish failures. Callers treat this as advisory only.
	*/
	Dispatch(ctx context.Context, event Event) error
}

// NopDispatcher discards all events. Used in tests and when no broker is
// configured.
type NopDispatcher struct{}

// Dispatch implements [Dispatcher] by doing nothing.
func (NopDispatcher) Dispatch(context.Context, Event) error { return nil }
