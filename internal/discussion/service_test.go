// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

package discussion_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangadiyari/api/internal/discussion"
	"github.com/mangadiyari/api/internal/notify"
	"github.com/mangadiyari/api/internal/platform/apperr"
	"github.com/mangadiyari/api/internal/profile"
	"github.com/mangadiyari/api/pkg/pointer"
	"github.com/mangadiyari/api/pkg/uuid"
)

// fixture bundles the service with its in-memory backing stores so tests can
// seed and inspect state directly.
type fixture struct {
	service   *discussion.Service
	comments  *discussion.MemoryCommentRepository
	reactions *discussion.MemoryReactionRepository
	profiles  *profile.MemoryResolver
	policy    *discussion.MemoryModerationPolicy
}

func newFixture() *fixture {
	reactions := discussion.NewMemoryReactionRepository()
	comments := discussion.NewMemoryCommentRepository(reactions)
	profiles := profile.NewMemoryResolver()
	policy := discussion.NewMemoryModerationPolicy()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		service:   discussion.NewService(comments, reactions, profiles, policy, notify.NopDispatcher{}, logger),
		comments:  comments,
		reactions: reactions,
		profiles:  profiles,
		policy:    policy,
	}
}

// registerUser seeds a resolvable profile and returns its ID.
func (f *fixture) registerUser(username string) string {
	id := uuid.New()
	f.profiles.Put(id, profile.Profile{Username: username})
	return id
}

// post is a shorthand for posting a valid comment in test setup.
func (f *fixture) post(t *testing.T, mangaID string, authorID *string, parentID *string, body string) *discussion.Comment {
	t.Helper()

	comment, err := f.service.PostComment(context.Background(), discussion.PostCommentInput{
		MangaID:  mangaID,
		AuthorID: authorID,
		ParentID: parentID,
		Body:     body,
	})
	require.NoError(t, err)
	return comment
}

// # Thread Assembly

/*
TestLoadThread_Ordering verifies the ordering asymmetry: top-level comments
newest first, replies under each comment oldest first.
*/
func TestLoadThread_Ordering(t *testing.T) {
	f := newFixture()
	mangaID := uuid.New()
	f.policy.SetModerated(mangaID, false)
	author := f.registerUser("okuyucu")

	first := f.post(t, mangaID, &author, nil, "first")
	second := f.post(t, mangaID, &author, nil, "second")
	third := f.post(t, mangaID, &author, nil, "third")

	replyOld := f.post(t, mangaID, &author, &first.ID, "older reply")
	replyNew := f.post(t, mangaID, &author, &first.ID, "newer reply")

	thread, err := f.service.LoadThread(context.Background(), mangaID, nil)
	require.NoError(t, err)
	require.Len(t, thread.Comments, 3)

	assert.Equal(t, third.ID, thread.Comments[0].ID)
	assert.Equal(t, second.ID, thread.Comments[1].ID)
	assert.Equal(t, first.ID, thread.Comments[2].ID)

	replies := thread.Comments[2].Replies
	require.Len(t, replies, 2)
	assert.Equal(t, replyOld.ID, replies[0].ID)
	assert.Equal(t, replyNew.ID, replies[1].ID)
	assert.Equal(t, 2, thread.Comments[2].ReplyCount)
}

/*
TestLoadThread_UnknownManga verifies that a manga without comments yields an
empty thread rather than an error.
*/
func TestLoadThread_UnknownManga(t *testing.T) {
	f := newFixture()

	thread, err := f.service.LoadThread(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Empty(t, thread.Comments)
}

/*
TestLoadThread_ModerationGate verifies that unapproved comments and their
replies stay invisible until approved.
*/
func TestLoadThread_ModerationGate(t *testing.T) {
	f := newFixture()
	mangaID := uuid.New()
	f.policy.SetModerated(mangaID, true)
	author := f.registerUser("yazar")
	moderator := f.registerUser("moderator")

	pending := f.post(t, mangaID, &author, nil, "awaiting approval")

	thread, err := f.service.LoadThread(context.Background(), mangaID, nil)
	require.NoError(t, err)
	assert.Empty(t, thread.Comments, "unapproved comment must be invisible")

	_, err = f.service.SetApproval(context.Background(), pending.ID, true, moderator)
	require.NoError(t, err)

	thread, err = f.service.LoadThread(context.Background(), mangaID, nil)
	require.NoError(t, err)
	require.Len(t, thread.Comments, 1)
	assert.Equal(t, pending.ID, thread.Comments[0].ID)

	// An approved parent still hides its own unapproved replies.
	f.post(t, mangaID, &author, &pending.ID, "pending reply")

	thread, err = f.service.LoadThread(context.Background(), mangaID, nil)
	require.NoError(t, err)
	assert.Empty(t, thread.Comments[0].Replies)
}

/*
TestLoadThread_AuthorResolution verifies identity attachment: registered
authors resolve to their profile, anonymous comments render as Anonim.
*/
func TestLoadThread_AuthorResolution(t *testing.T) {
	f := newFixture()
	mangaID := uuid.New()
	f.policy.SetModerated(mangaID, false)
	author := f.registerUser("sakura_fan")

	f.post(t, mangaID, nil, nil, "anonymous opinion")
	f.post(t, mangaID, &author, nil, "signed opinion")

	thread, err := f.service.LoadThread(context.Background(), mangaID, nil)
	require.NoError(t, err)
	require.Len(t, thread.Comments, 2)

	assert.Equal(t, "sakura_fan", thread.Comments[0].Author.Name)
	assert.Equal(t, discussion.AnonymousAuthor, thread.Comments[1].Author)
}

/*
TestLoadThread_ViewerState verifies that the viewer's own reactions are
attached and that anonymous readers always see None.
*/
func TestLoadThread_ViewerState(t *testing.T) {
	f := newFixture()
	mangaID := uuid.New()
	f.policy.SetModerated(mangaID, false)
	author := f.registerUser("ilkyazar")
	viewer := f.registerUser("begenen")

	liked := f.post(t, mangaID, &author, nil, "liked by viewer")
	ignored := f.post(t, mangaID, &author, nil, "no reaction")

	_, err := f.service.React(context.Background(), liked.ID, viewer, true)
	require.NoError(t, err)

	thread, err := f.service.LoadThread(context.Background(), mangaID, &viewer)
	require.NoError(t, err)
	require.Len(t, thread.Comments, 2)

	byID := map[string]*discussion.CommentView{}
	for _, view := range thread.Comments {
		byID[view.ID] = view
	}
	assert.Equal(t, discussion.StateLiked, byID[liked.ID].ViewerState)
	assert.Equal(t, discussion.StateNone, byID[ignored.ID].ViewerState)

	// Anonymous readers carry no state.
	thread, err = f.service.LoadThread(context.Background(), mangaID, nil)
	require.NoError(t, err)
	for _, view := range thread.Comments {
		assert.Equal(t, discussion.StateNone, view.ViewerState)
	}
}

// # Comment Lifecycle

/*
TestPostComment_BodyValidation exercises the content rules shared by posting
and editing: trimmed emptiness and the 500 character ceiling counted in
runes, not bytes.
*/
func TestPostComment_BodyValidation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"empty", "", "EMPTY_CONTENT"},
		{"whitespace_only", "   \t\n  ", "EMPTY_CONTENT"},
		{"max_length_ok", strings.Repeat("a", 500), ""},
		{"one_over_limit", strings.Repeat("a", 501), "CONTENT_TOO_LONG"},
		{"unicode_counted_as_runes", strings.Repeat("ğ", 500), ""},
		{"unicode_over_limit", strings.Repeat("ğ", 501), "CONTENT_TOO_LONG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			mangaID := uuid.New()
			f.policy.SetModerated(mangaID, false)

			_, err := f.service.PostComment(context.Background(), discussion.PostCommentInput{
				MangaID: mangaID,
				Body:    tt.body,
			})

			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, tt.wantCode, ae.Code)
		})
	}
}

/*
TestPostComment_TrimsBody verifies that surrounding whitespace is stripped
before persisting.
*/
func TestPostComment_TrimsBody(t *testing.T) {
	f := newFixture()
	mangaID := uuid.New()
	f.policy.SetModerated(mangaID, false)

	comment := f.post(t, mangaID, nil, nil, "  Harika bölüm  ")
	assert.Equal(t, "Harika bölüm", comment.Body)
}

/*
TestPostComment_DepthGuard verifies the two-level thread shape enforced at
write time: replies can only target existing top-level comments of the same
manga.
*/
func TestPostComment_DepthGuard(t *testing.T) {
	f := newFixture()
	mangaID := uuid.New()
	otherMangaID := uuid.New()
	f.policy.SetModerated(mangaID, false)
	f.policy.SetModerated(otherMangaID, false)

	top := f.post(t, mangaID, nil, nil, "top level")
	reply := f.post(t, mangaID, nil, &top.ID, "first level reply")

	t.Run("reply_to_reply_rejected", func(t *testing.T) {
		_, err := f.service.PostComment(context.Background(), discussion.PostCommentInput{
			MangaID:  mangaID,
			ParentID: &reply.ID,
			Body:     "too deep",
		})
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "INVALID_PARENT", ae.Code)
	})

	t.Run("cross_manga_parent_rejected", func(t *testing.T) {
		_, err := f.service.PostComment(context.Background(), discussion.PostCommentInput{
			MangaID:  otherMangaID,
			ParentID: &top.ID,
			Body:     "wrong manga",
		})
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "INVALID_PARENT", ae.Code)
	})

	t.Run("missing_parent_rejected", func(t *testing.T) {
		_, err := f.service.PostComment(context.Background(), discussion.PostCommentInput{
			MangaID:  mangaID,
			ParentID: pointer.To(uuid.New()),
			Body:     "orphan reply",
		})
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "NOT_FOUND", ae.Code)
	})
}

/*
TestPostComment_ApprovalFollowsPolicy verifies the moderation flag on new
comments and the NOT_FOUND on unknown mangas.
*/
func TestPostComment_ApprovalFollowsPolicy(t *testing.T) {
	f := newFixture()
	openManga := uuid.New()
	gatedManga := uuid.New()
	f.policy.SetModerated(openManga, false)
	f.policy.SetModerated(gatedManga, true)

	open := f.post(t, openManga, nil, nil, "instantly visible")
	assert.True(t, open.IsApproved)

	gated := f.post(t, gatedManga, nil, nil, "needs approval")
	assert.False(t, gated.IsApproved)

	_, err := f.service.PostComment(context.Background(), discussion.PostCommentInput{
		MangaID: uuid.New(),
		Body:    "no such manga",
	})
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

/*
TestEditComment_Ownership verifies that only the stored author may edit, and
that anonymous comments can never be edited.
*/
func TestEditComment_Ownership(t *testing.T) {
	f := newFixture()
	mangaID := uuid.New()
	f.policy.SetModerated(mangaID, false)
	author := f.registerUser("sahibi")
	stranger := f.registerUser("baskasi")

	owned := f.post(t, mangaID, &author, nil, "my comment")
	anonymous := f.post(t, mangaID, nil, nil, "nobody's comment")

	_, err := f.service.EditComment(context.Background(), owned.ID, stranger, "hijacked", false)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "FORBIDDEN", ae.Code)

	_, err = f.service.EditComment(context.Background(), anonymous.ID, author, "claimed", false)
	ae = apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "FORBIDDEN", ae.Code)

	updated, err := f.service.EditComment(context.Background(), owned.ID, author, "revised text", true)
	require.NoError(t, err)
	assert.Equal(t, "revised text", updated.Body)
	assert.True(t, updated.IsSpoiler)
}

/*
TestEditComment_ResetsApproval verifies that editing a comment on a moderated
manga sends it back through the approval queue.
*/
func TestEditComment_ResetsApproval(t *testing.T) {
	f := newFixture()
	mangaID := uuid.New()
	f.policy.SetModerated(mangaID, true)
	author := f.registerUser("yazar")
	moderator := f.registerUser("moderator")

	comment := f.post(t, mangaID, &author, nil, "original")
	_, err := f.service.SetApproval(context.Background(), comment.ID, true, moderator)
	require.NoError(t, err)

	updated, err := f.service.EditComment(context.Background(), comment.ID, author, "edited after approval", false)
	require.NoError(t, err)
	assert.False(t, updated.IsApproved, "edit must invalidate prior approval")
}

/*
TestDeleteComment verifies ownership enforcement and that replies disappear
with their parent.
*/
func TestDeleteComment(t *testing.T) {
	f := newFixture()
	mangaID := uuid.New()
	f.policy.SetModerated(mangaID, false)
	author := f.registerUser("silen")
	stranger := f.registerUser("baskasi")

	parent := f.post(t, mangaID, &author, nil, "to be deleted")
	f.post(t, mangaID, &stranger, &parent.ID, "reply that goes with it")
	survivor := f.post(t, mangaID, &author, nil, "unrelated")

	err := f.service.DeleteComment(context.Background(), parent.ID, stranger)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "FORBIDDEN", ae.Code)

	require.NoError(t, f.service.DeleteComment(context.Background(), parent.ID, author))

	thread, err := f.service.LoadThread(context.Background(), mangaID, nil)
	require.NoError(t, err)
	require.Len(t, thread.Comments, 1)
	assert.Equal(t, survivor.ID, thread.Comments[0].ID)
}

// # Moderation Queue

/*
TestModerationQueue verifies pending listing order, pagination totals, and
that rejection keeps a comment hidden.
*/
func TestModerationQueue(t *testing.T) {
	f := newFixture()
	mangaID := uuid.New()
	f.policy.SetModerated(mangaID, true)
	moderator := f.registerUser("moderator")

	oldest := f.post(t, mangaID, nil, nil, "first in queue")
	middle := f.post(t, mangaID, nil, nil, "second in queue")
	newest := f.post(t, mangaID, nil, nil, "third in queue")

	pending, total, err := f.service.ListPendingComments(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, pending, 2)
	assert.Equal(t, oldest.ID, pending[0].ID)
	assert.Equal(t, middle.ID, pending[1].ID)

	_, err = f.service.SetApproval(context.Background(), oldest.ID, true, moderator)
	require.NoError(t, err)
	rejected, err := f.service.SetApproval(context.Background(), newest.ID, false, moderator)
	require.NoError(t, err)
	assert.False(t, rejected.IsApproved)

	thread, err := f.service.LoadThread(context.Background(), mangaID, nil)
	require.NoError(t, err)
	require.Len(t, thread.Comments, 1)
	assert.Equal(t, oldest.ID, thread.Comments[0].ID)
}

// # End To End Scenario

/*
TestScenario_CommentLifecycle walks the canonical flow: a comment is posted,
liked, the like flips to a dislike, and a reply arrives.
*/
func TestScenario_CommentLifecycle(t *testing.T) {
	f := newFixture()
	mangaID := uuid.New()
	f.policy.SetModerated(mangaID, false)
	viewerA := f.registerUser("viewer_a")
	viewerB := f.registerUser("viewer_b")
	viewerC := f.registerUser("viewer_c")

	posted := f.post(t, mangaID, &viewerA, nil, "Harika bölüm")

	thread, err := f.service.LoadThread(context.Background(), mangaID, nil)
	require.NoError(t, err)
	require.Len(t, thread.Comments, 1)
	assert.Equal(t, 0, thread.Comments[0].ReplyCount)
	assert.Equal(t, 0, thread.Comments[0].LikeCount)

	result, err := f.service.React(context.Background(), posted.ID, viewerB, true)
	require.NoError(t, err)
	assert.Equal(t, discussion.StateLiked, result.State)
	assert.Equal(t, 1, result.LikeCount)

	result, err = f.service.React(context.Background(), posted.ID, viewerB, false)
	require.NoError(t, err)
	assert.Equal(t, discussion.StateDisliked, result.State)
	assert.Equal(t, 0, result.LikeCount)
	assert.Equal(t, 1, result.DislikeCount)

	f.post(t, mangaID, &viewerC, &posted.ID, "Katılıyorum")

	thread, err = f.service.LoadThread(context.Background(), mangaID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, thread.Comments[0].ReplyCount)
}
