// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

package discussion_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangadiyari/api/internal/discussion"
	"github.com/mangadiyari/api/internal/platform/apperr"
	"github.com/mangadiyari/api/pkg/uuid"
)

// reactionFixture seeds one comment to react against.
func reactionFixture(t *testing.T) (*fixture, string) {
	t.Helper()

	f := newFixture()
	mangaID := uuid.New()
	f.policy.SetModerated(mangaID, false)
	author := f.registerUser("konu_sahibi")
	comment := f.post(t, mangaID, &author, nil, "react to me")
	return f, comment.ID
}

/*
TestReact_TransitionTable exercises every row of the toggle state machine.
*/
func TestReact_TransitionTable(t *testing.T) {
	tests := []struct {
		name      string
		setup     []bool // reactions applied before the action under test
		action    bool
		wantState discussion.ReactionState
		wantLikes int
		wantDis   int
	}{
		{"none_like", nil, true, discussion.StateLiked, 1, 0},
		{"none_dislike", nil, false, discussion.StateDisliked, 0, 1},
		{"liked_like_toggles_off", []bool{true}, true, discussion.StateNone, 0, 0},
		{"liked_dislike_switches", []bool{true}, false, discussion.StateDisliked, 0, 1},
		{"disliked_dislike_toggles_off", []bool{false}, false, discussion.StateNone, 0, 0},
		{"disliked_like_switches", []bool{false}, true, discussion.StateLiked, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, commentID := reactionFixture(t)
			viewer := f.registerUser("tepki_veren")

			for _, isLike := range tt.setup {
				_, err := f.service.React(context.Background(), commentID, viewer, isLike)
				require.NoError(t, err)
			}

			result, err := f.service.React(context.Background(), commentID, viewer, tt.action)
			require.NoError(t, err)

			assert.Equal(t, tt.wantState, result.State)
			assert.Equal(t, tt.wantLikes, result.LikeCount)
			assert.Equal(t, tt.wantDis, result.DislikeCount)
		})
	}
}

/*
TestReact_ToggleRoundTrip verifies that repeating a full like/unlike/like
cycle is stable and ends where it started.
*/
func TestReact_ToggleRoundTrip(t *testing.T) {
	f, commentID := reactionFixture(t)
	viewer := f.registerUser("kararsiz")

	states := []discussion.ReactionState{
		discussion.StateLiked,
		discussion.StateNone,
		discussion.StateLiked,
		discussion.StateNone,
	}
	for i, want := range states {
		result, err := f.service.React(context.Background(), commentID, viewer, true)
		require.NoError(t, err)
		assert.Equal(t, want, result.State, "step %d", i)
	}

	likes, dislikes, err := f.reactions.Count(context.Background(), commentID)
	require.NoError(t, err)
	assert.Zero(t, likes)
	assert.Zero(t, dislikes)
}

/*
TestReact_MutualExclusion verifies that a like and a dislike from the same
viewer can never coexist: the opposite action replaces the row.
*/
func TestReact_MutualExclusion(t *testing.T) {
	f, commentID := reactionFixture(t)
	viewer := f.registerUser("fikir_degistiren")

	_, err := f.service.React(context.Background(), commentID, viewer, true)
	require.NoError(t, err)

	result, err := f.service.React(context.Background(), commentID, viewer, false)
	require.NoError(t, err)

	assert.Equal(t, discussion.StateDisliked, result.State)
	assert.Equal(t, 0, result.LikeCount, "prior like must not linger")
	assert.Equal(t, 1, result.DislikeCount)
}

/*
TestReact_CountsAcrossViewers verifies that counters aggregate all viewers
while each viewer's state stays independent.
*/
func TestReact_CountsAcrossViewers(t *testing.T) {
	f, commentID := reactionFixture(t)

	likers := []string{f.registerUser("u1"), f.registerUser("u2"), f.registerUser("u3")}
	for _, viewer := range likers {
		_, err := f.service.React(context.Background(), commentID, viewer, true)
		require.NoError(t, err)
	}
	disliker := f.registerUser("u4")

	result, err := f.service.React(context.Background(), commentID, disliker, false)
	require.NoError(t, err)
	assert.Equal(t, 3, result.LikeCount)
	assert.Equal(t, 1, result.DislikeCount)

	// One liker backs out; everyone else's rows are untouched.
	result, err = f.service.React(context.Background(), commentID, likers[0], true)
	require.NoError(t, err)
	assert.Equal(t, discussion.StateNone, result.State)
	assert.Equal(t, 2, result.LikeCount)
	assert.Equal(t, 1, result.DislikeCount)
}

/*
TestReact_Errors covers the anonymous viewer and missing comment cases.
*/
func TestReact_Errors(t *testing.T) {
	f, commentID := reactionFixture(t)

	_, err := f.service.React(context.Background(), commentID, "", true)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "UNAUTHORIZED", ae.Code)

	viewer := f.registerUser("tepki_veren")
	_, err = f.service.React(context.Background(), uuid.New(), viewer, true)
	ae = apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}
