// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

/*
Package discussion (Postgres) implements the storage layer for threads and
reactions.

# Schema Table Mapping
  - social.comment: Comment rows, both levels of the thread.
  - social.commentreaction: One like/dislike row per (comment, viewer).
  - core.manga: Source of the per-manga moderation flag.

All counters are derived in SQL from live rows at read time. The comment
table carries no counter columns, so there is nothing to drift under
concurrent writes.
*/
package discussion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangadiyari/api/internal/platform/apperr"
	"github.com/mangadiyari/api/internal/platform/database/schema"
	"github.com/mangadiyari/api/internal/platform/dberr"
)

// # Repository Implementations

// PostgresCommentRepository implements [Repository] using pgx.
type PostgresCommentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository constructs a PostgreSQL backed comment store.
func NewCommentRepository(pool *pgxpool.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

// PostgresReactionRepository implements [ReactionRepository] using pgx.
type PostgresReactionRepository struct {
	pool *pgxpool.Pool
}

// NewReactionRepository constructs a PostgreSQL backed reaction store.
func NewReactionRepository(pool *pgxpool.Pool) *PostgresReactionRepository {
	return &PostgresReactionRepository{pool: pool}
}

// PostgresModerationPolicy implements [ModerationPolicy] from the manga table.
type PostgresModerationPolicy struct {
	pool *pgxpool.Pool
}

// NewModerationPolicy constructs a PostgreSQL backed moderation policy.
func NewModerationPolicy(pool *pgxpool.Pool) *PostgresModerationPolicy {
	return &PostgresModerationPolicy{pool: pool}
}

// # Query Fragments

// selectComment builds the shared projection with derived counters attached.
// The comment row is aliased 'c'.
func selectComment() string {
	comment := schema.SocialComment
	reaction := schema.SocialCommentReaction

	return fmt.Sprintf(`
		SELECT
			c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s,
			(SELECT COUNT(*) FROM %s r WHERE r.%s = c.%s AND r.%s) AS likecount,
			(SELECT COUNT(*) FROM %s r WHERE r.%s = c.%s AND NOT r.%s) AS dislikecount,
			(SELECT COUNT(*) FROM %s ch WHERE ch.%s = c.%s) AS replycount,
			c.%s, c.%s
		FROM %s c`,
		comment.ID, comment.MangaID, comment.AuthorID, comment.ParentID,
		comment.Body, comment.IsSpoiler, comment.IsApproved,
		reaction.Table, reaction.CommentID, comment.ID, reaction.IsLike,
		reaction.Table, reaction.CommentID, comment.ID, reaction.IsLike,
		comment.Table, comment.ParentID, comment.ID,
		comment.CreatedAt, comment.UpdatedAt,
		comment.Table,
	)
}

// scanComment hydrates one row produced by [selectComment].
func scanComment(row pgx.Row) (*Comment, error) {
	comment := &Comment{}
	err := row.Scan(
		&comment.ID,
		&comment.MangaID,
		&comment.AuthorID,
		&comment.ParentID,
		&comment.Body,
		&comment.IsSpoiler,
		&comment.IsApproved,
		&comment.LikeCount,
		&comment.DislikeCount,
		&comment.ReplyCount,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// collectComments drains a multi-row result produced by [selectComment].
func collectComments(rows pgx.Rows, action string) ([]*Comment, error) {
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, dberr.Wrap(err, action)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, action)
	}

	return comments, nil
}

// # Comment Repository Implementation

/*
FindByID retrieves a single comment with its derived counters.

Parameters:
  - ctx: context.Context
  - id: string (Comment UUID)

Returns:
  - *Comment: Hydrated entity
  - error: NOT_FOUND or database retrieval failures
*/
func (repository *PostgresCommentRepository) FindByID(ctx context.Context, id string) (*Comment, error) {
	query := fmt.Sprintf("%s WHERE c.%s = $1", selectComment(), schema.SocialComment.ID)

	comment, err := scanComment(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Comment")
		}
		return nil, dberr.Wrap(err, "get_comment_by_id")
	}
	return comment, nil
}

/*
ListTopLevel retrieves a manga's top-level comments, newest first.

Parameters:
  - ctx: context.Context
  - mangaID: string (Manga UUID)

Returns:
  - []*Comment: Ordered descending by creation time
  - error: Database retrieval failures
*/
func (repository *PostgresCommentRepository) ListTopLevel(ctx context.Context, mangaID string) ([]*Comment, error) {
	query := fmt.Sprintf("%s WHERE c.%s = $1 AND c.%s IS NULL ORDER BY c.%s DESC",
		selectComment(), schema.SocialComment.MangaID, schema.SocialComment.ParentID, schema.SocialComment.CreatedAt,
	)

	rows, err := repository.pool.Query(ctx, query, mangaID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_top_level_comments")
	}
	return collectComments(rows, "list_top_level_comments")
}

/*
ListReplies retrieves every reply of a manga's thread in one query, oldest
first, for in-memory grouping by the service.

Parameters:
  - ctx: context.Context
  - mangaID: string (Manga UUID)

Returns:
  - []*Comment: Ordered ascending by creation time
  - error: Database retrieval failures
*/
func (repository *PostgresCommentRepository) ListReplies(ctx context.Context, mangaID string) ([]*Comment, error) {
	query := fmt.Sprintf("%s WHERE c.%s = $1 AND c.%s IS NOT NULL ORDER BY c.%s ASC",
		selectComment(), schema.SocialComment.MangaID, schema.SocialComment.ParentID, schema.SocialComment.CreatedAt,
	)

	rows, err := repository.pool.Query(ctx, query, mangaID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_replies")
	}
	return collectComments(rows, "list_replies")
}

/*
ListPending retrieves a page of unapproved comments, oldest first, with the
total pending count computed by a window function in the same round trip.

Parameters:
  - ctx: context.Context
  - limit, offset: int

Returns:
  - []*Comment: Page of pending comments
  - int: Total pending count
  - error: Database retrieval failures
*/
func (repository *PostgresCommentRepository) ListPending(ctx context.Context, limit, offset int) ([]*Comment, int, error) {
	comment := schema.SocialComment
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s,
			COUNT(*) OVER() AS total_count
		FROM %s
		WHERE NOT %s
		ORDER BY %s ASC
		LIMIT $1 OFFSET $2`,
		comment.ID, comment.MangaID, comment.AuthorID, comment.ParentID,
		comment.Body, comment.IsSpoiler, comment.IsApproved,
		comment.CreatedAt, comment.UpdatedAt,
		comment.Table,
		comment.IsApproved,
		comment.CreatedAt,
	)

	rows, err := repository.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_pending_comments")
	}
	defer rows.Close()

	var comments []*Comment
	var totalCount int
	for rows.Next() {
		entry := &Comment{}
		err := rows.Scan(
			&entry.ID, &entry.MangaID, &entry.AuthorID, &entry.ParentID,
			&entry.Body, &entry.IsSpoiler, &entry.IsApproved,
			&entry.CreatedAt, &entry.UpdatedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_pending_comment")
		}
		comments = append(comments, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_pending_comments")
	}

	return comments, totalCount, nil
}

/*
Create inserts a new comment row. Timestamps are set by the database and
written back onto the entity.

Parameters:
  - ctx: context.Context
  - comment: *Comment

Returns:
  - error: Persistence failures
*/
func (repository *PostgresCommentRepository) Create(ctx context.Context, comment *Comment) error {
	table := schema.SocialComment
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING %s, %s`,
		table.Table,
		table.ID, table.MangaID, table.AuthorID, table.ParentID,
		table.Body, table.IsSpoiler, table.IsApproved,
		table.CreatedAt, table.UpdatedAt,
		table.CreatedAt, table.UpdatedAt,
	)

	err := repository.pool.QueryRow(ctx, query,
		comment.ID, comment.MangaID, comment.AuthorID, comment.ParentID,
		comment.Body, comment.IsSpoiler, comment.IsApproved,
	).Scan(&comment.CreatedAt, &comment.UpdatedAt)

	return dberr.Wrap(err, "create_comment")
}

/*
Update persists body, spoiler flag, and approval flag changes.

Parameters:
  - ctx: context.Context
  - comment: *Comment

Returns:
  - error: NOT_FOUND if missing, or persistence failures
*/
func (repository *PostgresCommentRepository) Update(ctx context.Context, comment *Comment) error {
	table := schema.SocialComment
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		table.Table,
		table.Body, table.IsSpoiler, table.IsApproved, table.UpdatedAt,
		table.ID,
		table.UpdatedAt,
	)

	err := repository.pool.QueryRow(ctx, query,
		comment.ID, comment.Body, comment.IsSpoiler, comment.IsApproved,
	).Scan(&comment.UpdatedAt)

	return dberr.Wrap(err, "update_comment")
}

/*
Delete removes a comment row. Replies and reaction rows follow through
ON DELETE CASCADE foreign keys.

Parameters:
  - ctx: context.Context
  - id: string (Comment UUID)

Returns:
  - error: Persistence failures
*/
func (repository *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		schema.SocialComment.Table, schema.SocialComment.ID,
	)

	_, err := repository.pool.Exec(ctx, query, id)
	return dberr.Wrap(err, "delete_comment")
}

// # Reaction Repository Implementation

/*
Find retrieves the viewer's reaction row for one comment.

Parameters:
  - ctx: context.Context
  - commentID, userID: string

Returns:
  - *Reaction: nil (with nil error) when the viewer has no recorded stance
  - error: Database retrieval failures
*/
func (repository *PostgresReactionRepository) Find(ctx context.Context, commentID, userID string) (*Reaction, error) {
	table := schema.SocialCommentReaction
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2`,
		table.CommentID, table.UserID, table.IsLike, table.CreatedAt,
		table.Table,
		table.CommentID, table.UserID,
	)

	reaction := &Reaction{}
	err := repository.pool.QueryRow(ctx, query, commentID, userID).Scan(
		&reaction.CommentID, &reaction.UserID, &reaction.IsLike, &reaction.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dberr.Wrap(err, "get_reaction")
	}
	return reaction, nil
}

/*
FindForViewer batch-fetches the viewer's reactions over an id set.

Parameters:
  - ctx: context.Context
  - commentIDs: []string
  - userID: string

Returns:
  - map[string]bool: comment ID -> islike; absent key means no reaction
  - error: Database retrieval failures
*/
func (repository *PostgresReactionRepository) FindForViewer(ctx context.Context, commentIDs []string, userID string) (map[string]bool, error) {
	states := make(map[string]bool, len(commentIDs))
	if len(commentIDs) == 0 {
		return states, nil
	}

	table := schema.SocialCommentReaction
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM %s
		WHERE %s = ANY($1::uuid[]) AND %s = $2`,
		table.CommentID, table.IsLike,
		table.Table,
		table.CommentID, table.UserID,
	)

	rows, err := repository.pool.Query(ctx, query, commentIDs, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_viewer_reactions")
	}
	defer rows.Close()

	for rows.Next() {
		var commentID string
		var isLike bool
		if err := rows.Scan(&commentID, &isLike); err != nil {
			return nil, dberr.Wrap(err, "scan_viewer_reaction")
		}
		states[commentID] = isLike
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_viewer_reactions")
	}

	return states, nil
}

/*
Upsert inserts the viewer's reaction or overwrites its islike value.

Description: The (commentid, userid) primary key makes concurrent writes
from one viewer collapse into a single final row. Whichever write lands
last wins; no duplicate row can exist.

Parameters:
  - ctx: context.Context
  - commentID, userID: string
  - isLike: bool

Returns:
  - error: Persistence failures
*/
func (repository *PostgresReactionRepository) Upsert(ctx context.Context, commentID, userID string, isLike bool) error {
	table := schema.SocialCommentReaction
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (%s, %s) DO UPDATE SET %s = EXCLUDED.%s`,
		table.Table,
		table.CommentID, table.UserID, table.IsLike, table.CreatedAt,
		table.CommentID, table.UserID,
		table.IsLike, table.IsLike,
	)

	_, err := repository.pool.Exec(ctx, query, commentID, userID, isLike)
	return dberr.Wrap(err, "upsert_reaction")
}

/*
Delete removes the viewer's reaction row. Deleting an absent row succeeds.

Parameters:
  - ctx: context.Context
  - commentID, userID: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresReactionRepository) Delete(ctx context.Context, commentID, userID string) error {
	table := schema.SocialCommentReaction
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND %s = $2",
		table.Table, table.CommentID, table.UserID,
	)

	_, err := repository.pool.Exec(ctx, query, commentID, userID)
	return dberr.Wrap(err, "delete_reaction")
}

/*
Count recounts a comment's reactions from live rows in one query.

Parameters:
  - ctx: context.Context
  - commentID: string

Returns:
  - int: Like count
  - int: Dislike count
  - error: Database retrieval failures
*/
func (repository *PostgresReactionRepository) Count(ctx context.Context, commentID string) (int, int, error) {
	table := schema.SocialCommentReaction
	query := fmt.Sprintf(`
		SELECT
			COUNT(*) FILTER (WHERE %s),
			COUNT(*) FILTER (WHERE NOT %s)
		FROM %s
		WHERE %s = $1`,
		table.IsLike, table.IsLike,
		table.Table,
		table.CommentID,
	)

	var likes, dislikes int
	err := repository.pool.QueryRow(ctx, query, commentID).Scan(&likes, &dislikes)
	if err != nil {
		return 0, 0, dberr.Wrap(err, "count_reactions")
	}
	return likes, dislikes, nil
}

// # Moderation Policy Implementation

/*
IsModerated reads the manga's pre-approval flag.

Parameters:
  - ctx: context.Context
  - mangaID: string (Manga UUID)

Returns:
  - bool: true when new comments require moderator approval
  - error: NOT_FOUND when the manga does not exist, or retrieval failures
*/
func (policy *PostgresModerationPolicy) IsModerated(ctx context.Context, mangaID string) (bool, error) {
	manga := schema.CoreManga
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		manga.IsCommentModerated,
		manga.Table,
		manga.ID, manga.DeletedAt,
	)

	var moderated bool
	err := policy.pool.QueryRow(ctx, query, mangaID).Scan(&moderated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperr.NotFound("Manga")
		}
		return false, dberr.Wrap(err, "get_moderation_flag")
	}
	return moderated, nil
}
