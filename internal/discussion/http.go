// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

/*
Package discussion (HTTP) exposes the REST surface of the comment engine.

# Routing Strategy

  - Public (v1): Thread reads and anonymous posting (GET/POST under manga).
  - Authenticated: Editing, deleting, and reacting to comments.
  - Restricted: The moderation queue, mounted behind a moderator role check.

The handler translates between the REST layer and the [Service] domain.
*/
package discussion

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/mangadiyari/api/internal/platform/request"
	"github.com/mangadiyari/api/internal/platform/respond"
	"github.com/mangadiyari/api/internal/platform/validate"
	"github.com/mangadiyari/api/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for comment and reaction operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new discussion [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ThreadRoutes returns the router mounted under a manga path. Reading and
// posting work without authentication; posting without a token creates an
// anonymous comment.
func (handler *Handler) ThreadRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.getThread)
	router.Post("/", handler.postComment)

	return router
}

// CommentRoutes returns the router for operations addressing one comment.
// All of these require an authenticated viewer.
func (handler *Handler) CommentRoutes() chi.Router {
	router := chi.NewRouter()

	router.Patch("/{commentID}", handler.editComment)
	router.Delete("/{commentID}", handler.deleteComment)
	router.Put("/{commentID}/reaction", handler.react)

	return router
}

// ModerationRoutes returns the moderation queue router.
// Mount behind [middleware.RequireRole] for moderators.
func (handler *Handler) ModerationRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listPending)
	router.Patch("/{commentID}/approval", handler.setApproval)

	return router
}

// # Request Payloads

type postCommentRequest struct {
	Body      string  `json:"body"`
	IsSpoiler bool    `json:"is_spoiler"`
	ParentID  *string `json:"parent_id"`
}

type editCommentRequest struct {
	Body      string `json:"body"`
	IsSpoiler bool   `json:"is_spoiler"`
}

type reactionRequest struct {
	Like *bool `json:"like"`
}

type approvalRequest struct {
	Approved *bool `json:"approved"`
}

// # Thread Endpoints

/*
GET /api/v1/manga/{mangaID}/comments.

Description: Retrieves the manga's full comment thread. Top-level comments
come newest first with their replies nested oldest first. When the request
carries a valid token, each comment also reports the viewer's own reaction
state.

Request:
  - mangaID: string (Manga UUID)

Response:
  - 200: Thread: Assembled thread (empty list when no comments exist)
  - 400: Validation: Malformed manga id
*/
func (handler *Handler) getThread(writer http.ResponseWriter, request *http.Request) {
	mangaID := requestutil.Param(request, "mangaID")

	v := &validate.Validator{}
	v.UUID(FieldMangaID, mangaID)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	thread, err := handler.service.LoadThread(request.Context(), mangaID, requestutil.OptionalUserID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, thread)
}

/*
POST /api/v1/manga/{mangaID}/comments.

Description: Posts a top-level comment or a reply. Unauthenticated requests
post anonymously. When the manga has comment moderation enabled, the new
comment starts unapproved and stays invisible until a moderator approves it.

Request (Body):
  - body: string (1-500 characters after trimming)
  - is_spoiler: bool
  - parent_id: string|null (Top-level comment UUID to reply under)

Response:
  - 201: Comment: Created comment
  - 400: EMPTY_CONTENT/CONTENT_TOO_LONG/INVALID_PARENT: Invalid input
  - 404: ErrNotFound: Manga or parent comment not found
*/
func (handler *Handler) postComment(writer http.ResponseWriter, request *http.Request) {
	mangaID := requestutil.Param(request, "mangaID")

	var input postCommentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.UUID(FieldMangaID, mangaID)
	if input.ParentID != nil {
		v.UUID(FieldParentID, *input.ParentID)
	}
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.PostComment(request.Context(), PostCommentInput{
		MangaID:   mangaID,
		AuthorID:  requestutil.OptionalUserID(request),
		ParentID:  input.ParentID,
		Body:      input.Body,
		IsSpoiler: input.IsSpoiler,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, comment)
}

// # Comment Endpoints

/*
PATCH /api/v1/comments/{commentID}.

Description: Edits the caller's own comment. The new body is validated like
a fresh post, and on moderated mangas the edit resets the approval flag.

Request:
  - commentID: string (Comment UUID)
  - body: { "body": "string", "is_spoiler": bool }

Response:
  - 200: Comment: Updated comment
  - 400: EMPTY_CONTENT/CONTENT_TOO_LONG: Invalid input
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Not the author (anonymous comments can never be edited)
  - 404: ErrNotFound: Comment not found
*/
func (handler *Handler) editComment(writer http.ResponseWriter, request *http.Request) {
	commentID := requestutil.Param(request, "commentID")

	viewerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input editCommentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.UUID(FieldCommentID, commentID)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.EditComment(request.Context(), commentID, viewerID, input.Body, input.IsSpoiler)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comment)
}

/*
DELETE /api/v1/comments/{commentID}.

Description: Deletes the caller's own comment together with its replies and
all reaction rows.

Request:
  - commentID: string (Comment UUID)

Response:
  - 204: No Content: Success
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Not the author
  - 404: ErrNotFound: Comment not found
*/
func (handler *Handler) deleteComment(writer http.ResponseWriter, request *http.Request) {
	commentID := requestutil.Param(request, "commentID")

	viewerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.UUID(FieldCommentID, commentID)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteComment(request.Context(), commentID, viewerID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Reaction Endpoints

/*
PUT /api/v1/comments/{commentID}/reaction.

Description: Applies one step of the reaction toggle. Sending the viewer's
current stance removes it; sending the opposite stance replaces it. The
response carries the new state and counters recounted from live rows.

Request:
  - commentID: string (Comment UUID)
  - body: { "like": bool }

Response:
  - 200: ReactionResult: New state and totals
  - 400: Validation: Missing like field
  - 401: ErrUnauthorized: Authentication required
  - 404: ErrNotFound: Comment not found
*/
func (handler *Handler) react(writer http.ResponseWriter, request *http.Request) {
	commentID := requestutil.Param(request, "commentID")

	viewerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input reactionRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.UUID(FieldCommentID, commentID)
	v.Custom(FieldLike, input.Like == nil, "like is required")
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.React(request.Context(), commentID, viewerID, *input.Like)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

// # Moderation Endpoints

/*
GET /api/v1/moderation/comments.

Description: Lists comments awaiting approval across all mangas, oldest
first.

Request:
  - page: int
  - limit: int

Response:
  - 200: []Comment: Paginated pending queue
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Moderator role required
*/
func (handler *Handler) listPending(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	comments, total, err := handler.service.ListPendingComments(request.Context(), paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if comments == nil {
		comments = []*Comment{}
	}

	respond.Paginated(writer, comments, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
PATCH /api/v1/moderation/comments/{commentID}/approval.

Description: Approves or rejects a pending comment. Approval makes the
comment visible in its thread; rejection keeps it hidden but in the queue.

Request:
  - commentID: string (Comment UUID)
  - body: { "approved": bool }

Response:
  - 200: Comment: Updated comment
  - 400: Validation: Missing approved field
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Moderator role required
  - 404: ErrNotFound: Comment not found
*/
func (handler *Handler) setApproval(writer http.ResponseWriter, request *http.Request) {
	commentID := requestutil.Param(request, "commentID")

	moderatorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input approvalRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.UUID(FieldCommentID, commentID)
	v.Custom(FieldApproved, input.Approved == nil, "approved is required")
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.SetApproval(request.Context(), commentID, *input.Approved, moderatorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comment)
}
