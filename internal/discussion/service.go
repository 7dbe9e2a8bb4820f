// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

package discussion

import (
	"context"
	"net/http"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mangadiyari/api/internal/notify"
	"github.com/mangadiyari/api/internal/platform/apperr"
	"github.com/mangadiyari/api/internal/profile"
	"github.com/mangadiyari/api/pkg/slice"
	"github.com/mangadiyari/api/pkg/uuid"
)

// # Service Layer

// Service orchestrates thread assembly, the comment lifecycle, reactions,
// and the moderation queue.
//
// The service holds no mutable state of its own; all state lives in the
// repositories, so every method is safe for concurrent use.
type Service struct {
	comments   Repository
	reactions  ReactionRepository
	profiles   profile.Resolver
	policy     ModerationPolicy
	dispatcher notify.Dispatcher
	logger     *slog.Logger
}

// NewService constructs a new discussion [Service].
func NewService(
	comments Repository,
	reactions ReactionRepository,
	profiles profile.Resolver,
	policy ModerationPolicy,
	dispatcher notify.Dispatcher,
	logger *slog.Logger,
) *Service {
	return &Service{
		comments:   comments,
		reactions:  reactions,
		profiles:   profiles,
		policy:     policy,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// # Thread Assembly

/*
LoadThread assembles the full comment thread of a manga for one viewer.

Description: Top-level comments are ordered newest first; replies under each
comment are ordered oldest first so conversations read top-down. Only
approved comments survive the moderation gate. Author identities and the
viewer's reactions are each resolved in ONE batched lookup over the
surviving id set. A manga without comments (including an unknown manga)
yields an empty thread, not an error. Any storage failure fails the whole
call, so a partial thread is never returned.

Parameters:
  - ctx: context.Context
  - mangaID: string (Manga UUID)
  - viewerID: *string (nil for anonymous readers)

Returns:
  - *Thread: Ordered, fully resolved thread
  - error: Storage retrieval failures
*/
func (service *Service) LoadThread(ctx context.Context, mangaID string, viewerID *string) (*Thread, error) {
	topLevel, err := service.comments.ListTopLevel(ctx, mangaID)
	if err != nil {
		return nil, err
	}
	topLevel = slice.Filter(topLevel, Visible)

	replies, err := service.comments.ListReplies(ctx, mangaID)
	if err != nil {
		return nil, err
	}
	replies = slice.Filter(replies, Visible)

	// Group surviving replies under their parent; store order (ascending) is
	// preserved by the grouping.
	repliesByParent := make(map[string][]*Comment)
	for _, reply := range replies {
		parentID := *reply.ParentID
		repliesByParent[parentID] = append(repliesByParent[parentID], reply)
	}

	surviving := append(append([]*Comment{}, topLevel...), replies...)

	authors, err := service.resolveAuthors(ctx, surviving)
	if err != nil {
		return nil, err
	}

	viewerStates, err := service.resolveViewerStates(ctx, surviving, viewerID)
	if err != nil {
		return nil, err
	}

	views := make([]*CommentView, 0, len(topLevel))
	for _, comment := range topLevel {
		view := buildView(comment, authors, viewerStates)

		for _, reply := range repliesByParent[comment.ID] {
			view.Replies = append(view.Replies, buildView(reply, authors, viewerStates))
		}

		views = append(views, view)
	}

	return &Thread{MangaID: mangaID, Comments: views}, nil
}

// resolveAuthors performs the single batched identity lookup for a thread.
func (service *Service) resolveAuthors(ctx context.Context, comments []*Comment) (map[string]profile.Profile, error) {
	idSet := make(map[string]struct{})
	for _, comment := range comments {
		if comment.AuthorID != nil {
			idSet[*comment.AuthorID] = struct{}{}
		}
	}

	if len(idSet) == 0 {
		return map[string]profile.Profile{}, nil
	}

	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	return service.profiles.ResolveByIDs(ctx, ids)
}

// resolveViewerStates performs the single batched reaction lookup for a thread.
// It returns nil when the viewer is anonymous.
func (service *Service) resolveViewerStates(ctx context.Context, comments []*Comment, viewerID *string) (map[string]bool, error) {
	if viewerID == nil || len(comments) == 0 {
		return nil, nil
	}

	ids := slice.Map(comments, func(c *Comment) string { return c.ID })
	return service.reactions.FindForViewer(ctx, ids, *viewerID)
}

// buildView resolves one comment into its read model.
func buildView(comment *Comment, authors map[string]profile.Profile, viewerStates map[string]bool) *CommentView {
	view := &CommentView{
		Comment:     *comment,
		Author:      AnonymousAuthor,
		ViewerState: StateNone,
	}

	if comment.AuthorID != nil {
		if resolved, ok := authors[*comment.AuthorID]; ok {
			view.Author = Author{
				Name:      resolved.Username,
				AvatarURL: resolved.AvatarURL,
				Role:      resolved.Role,
			}
		}
	}

	if isLike, ok := viewerStates[comment.ID]; ok {
		if isLike {
			view.ViewerState = StateLiked
		} else {
			view.ViewerState = StateDisliked
		}
	}

	return view
}

// # Comment Lifecycle

// PostCommentInput carries the caller-supplied fields for a new comment.
type PostCommentInput struct {
	MangaID   string
	AuthorID  *string // nil posts anonymously
	ParentID  *string // nil posts top-level
	Body      string
	IsSpoiler bool
}

/*
PostComment validates and persists a new comment or reply.

Description: The body must be non-empty after trimming and at most 500
characters. A reply's parent must exist, belong to the same manga, and be
top-level itself: threads are exactly two levels deep, enforced here at
write time rather than by traversal at read time. The approval flag follows
the manga's moderation policy. Posting anonymously (nil author) is allowed
by design.

Parameters:
  - ctx: context.Context
  - input: PostCommentInput

Returns:
  - *Comment: The created comment
  - error: EMPTY_CONTENT, CONTENT_TOO_LONG, INVALID_PARENT, NOT_FOUND, or storage failures
*/
func (service *Service) PostComment(ctx context.Context, input PostCommentInput) (*Comment, error) {
	body, err := validateBody(input.Body)
	if err != nil {
		return nil, err
	}

	var parent *Comment
	if input.ParentID != nil {
		parent, err = service.comments.FindByID(ctx, *input.ParentID)
		if err != nil {
			if ae := apperr.As(err); ae != nil && ae.HTTPStatus == http.StatusNotFound {
				return nil, apperr.NotFound("Parent comment")
			}
			return nil, err
		}

		// Depth guard: a reply to a reply, or a parent on another manga,
		// is structurally invalid.
		if !parent.IsTopLevel() || parent.MangaID != input.MangaID {
			return nil, ErrInvalidParent
		}
	}

	moderated, err := service.policy.IsModerated(ctx, input.MangaID)
	if err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:         uuid.New(),
		MangaID:    input.MangaID,
		AuthorID:   input.AuthorID,
		ParentID:   input.ParentID,
		Body:       body,
		IsSpoiler:  input.IsSpoiler,
		IsApproved: !moderated,
	}

	if err := service.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	service.logger.Info("comment_posted",
		slog.String("comment_id", comment.ID),
		slog.String("manga_id", comment.MangaID),
		slog.Bool("is_reply", comment.ParentID != nil),
		slog.Bool("is_anonymous", comment.AuthorID == nil),
	)

	// Fire-and-forget: a failed reply notification never fails the post.
	if parent != nil && parent.AuthorID != nil && !sameAuthor(parent.AuthorID, comment.AuthorID) {
		service.dispatch(ctx, notify.Event{
			ID:          uuid.New(),
			Type:        notify.EventCommentReplied,
			CommentID:   comment.ID,
			MangaID:     comment.MangaID,
			RecipientID: parent.AuthorID,
			ActorID:     comment.AuthorID,
			OccurredAt:  time.Now().UTC(),
		})
	}

	return comment, nil
}

/*
EditComment updates the body and spoiler flag of the viewer's own comment.

Description: Only the stored author may edit; anonymous comments have no
author to match and can never be edited. The body is re-validated under the
same rules as posting. When moderation is active for the manga, an edit
resets the approval flag; prior approval does not cover new content.

Parameters:
  - ctx: context.Context
  - commentID, viewerID: string
  - body: string
  - isSpoiler: bool

Returns:
  - *Comment: The updated comment
  - error: NOT_FOUND, FORBIDDEN, validation, or storage failures
*/
func (service *Service) EditComment(ctx context.Context, commentID, viewerID, body string, isSpoiler bool) (*Comment, error) {
	comment, err := service.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if comment.AuthorID == nil || *comment.AuthorID != viewerID {
		return nil, apperr.Forbidden("You can only edit your own comments")
	}

	validBody, err := validateBody(body)
	if err != nil {
		return nil, err
	}

	moderated, err := service.policy.IsModerated(ctx, comment.MangaID)
	if err != nil {
		return nil, err
	}

	comment.Body = validBody
	comment.IsSpoiler = isSpoiler
	if moderated {
		// An edit invalidates prior approval.
		comment.IsApproved = false
	}

	if err := service.comments.Update(ctx, comment); err != nil {
		return nil, err
	}

	service.logger.Info("comment_edited",
		slog.String("comment_id", comment.ID),
		slog.String("user_id", viewerID),
	)

	return comment, nil
}

/*
DeleteComment removes the viewer's own comment, along with its replies and
reactions.

Parameters:
  - ctx: context.Context
  - commentID, viewerID: string

Returns:
  - error: NOT_FOUND, FORBIDDEN, or storage failures
*/
func (service *Service) DeleteComment(ctx context.Context, commentID, viewerID string) error {
	comment, err := service.comments.FindByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.AuthorID == nil || *comment.AuthorID != viewerID {
		return apperr.Forbidden("You can only delete your own comments")
	}

	if err := service.comments.Delete(ctx, commentID); err != nil {
		return err
	}

	service.logger.Info("comment_deleted",
		slog.String("comment_id", commentID),
		slog.String("user_id", viewerID),
	)

	return nil
}

// # Reaction Toggle Engine

/*
React applies one step of the like/dislike state machine for a viewer.

Description: The viewer's stance on a comment is one of none, liked, or
disliked, sourced from the presence and value of a single reaction row.
Repeating the current action removes the row (toggle off); the opposite
action overwrites it. After the transition, both counters are recomputed by
counting live rows, never by trusting an increment, so concurrent
reactions converge to the correct totals without locking.

Transition table (current -> like / dislike):

	none     -> liked    / disliked
	liked    -> none     / disliked
	disliked -> liked    / none

Parameters:
  - ctx: context.Context
  - commentID: string
  - viewerID: string (required; anonymous viewers cannot react)
  - wantLike: bool

Returns:
  - *ReactionResult: New state plus recounted totals
  - error: UNAUTHORIZED, NOT_FOUND, or storage failures
*/
func (service *Service) React(ctx context.Context, commentID, viewerID string, wantLike bool) (*ReactionResult, error) {
	if viewerID == "" {
		return nil, apperr.Unauthorized("Authentication required to react")
	}

	if _, err := service.comments.FindByID(ctx, commentID); err != nil {
		return nil, err
	}

	current, err := service.reactions.Find(ctx, commentID, viewerID)
	if err != nil {
		return nil, err
	}

	wanted := StateDisliked
	if wantLike {
		wanted = StateLiked
	}

	var state ReactionState
	if stateOf(current) == wanted {
		// Repeating the current stance toggles it off.
		if err := service.reactions.Delete(ctx, commentID, viewerID); err != nil {
			return nil, err
		}
		state = StateNone
	} else {
		// A fresh or opposite stance writes the row either way.
		if err := service.reactions.Upsert(ctx, commentID, viewerID, wantLike); err != nil {
			return nil, err
		}
		state = wanted
	}

	likes, dislikes, err := service.reactions.Count(ctx, commentID)
	if err != nil {
		return nil, err
	}

	service.logger.Info("reaction_toggled",
		slog.String("comment_id", commentID),
		slog.String("user_id", viewerID),
		slog.String("state", string(state)),
	)

	return &ReactionResult{
		State:        state,
		LikeCount:    likes,
		DislikeCount: dislikes,
	}, nil
}

// # Moderation Queue

/*
ListPendingComments returns a page of comments awaiting approval, oldest
first, with the total pending count.

Parameters:
  - ctx: context.Context
  - limit, offset: int

Returns:
  - []*Comment: Page of pending comments
  - int: Total pending count
  - error: Storage retrieval failures
*/
func (service *Service) ListPendingComments(ctx context.Context, limit, offset int) ([]*Comment, int, error) {
	return service.comments.ListPending(ctx, limit, offset)
}

/*
SetApproval approves or rejects a comment and dispatches the corresponding
notification event.

Parameters:
  - ctx: context.Context
  - commentID: string
  - approved: bool
  - moderatorID: string (for the audit log and the dispatched event)

Returns:
  - *Comment: The updated comment
  - error: NOT_FOUND or storage failures
*/
func (service *Service) SetApproval(ctx context.Context, commentID string, approved bool, moderatorID string) (*Comment, error) {
	comment, err := service.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	comment.IsApproved = approved
	if err := service.comments.Update(ctx, comment); err != nil {
		return nil, err
	}

	service.logger.Info("comment_approval_changed",
		slog.String("comment_id", comment.ID),
		slog.Bool("approved", approved),
		slog.String("moderator_id", moderatorID),
	)

	eventType := notify.EventCommentApproved
	if !approved {
		eventType = notify.EventCommentRejected
	}

	service.dispatch(ctx, notify.Event{
		ID:          uuid.New(),
		Type:        eventType,
		CommentID:   comment.ID,
		MangaID:     comment.MangaID,
		RecipientID: comment.AuthorID,
		ActorID:     &moderatorID,
		OccurredAt:  time.Now().UTC(),
	})

	return comment, nil
}

// # Helpers

// validateBody enforces the content rules shared by posting and editing.
func validateBody(raw string) (string, error) {
	body := strings.TrimSpace(raw)
	if body == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return "", ErrContentTooLong
	}
	return body, nil
}

// dispatch publishes an event without letting broker failures surface.
func (service *Service) dispatch(ctx context.Context, event notify.Event) {
	if err := service.dispatcher.Dispatch(ctx, event); err != nil {
		service.logger.Warn("notify_dispatch_failed",
			slog.String("event_type", event.Type),
			slog.String("comment_id", event.CommentID),
			slog.Any("error", err),
		)
	}
}

// sameAuthor compares two nullable author references.
func sameAuthor(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}
