// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

package discussion_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangadiyari/api/internal/discussion"
	"github.com/mangadiyari/api/internal/platform/ctxutil"
	"github.com/mangadiyari/api/internal/platform/sec"
	"github.com/mangadiyari/api/pkg/uuid"
)

// newRouter mounts the discussion handler the way the server does.
func newRouter(f *fixture) *chi.Mux {
	handler := discussion.NewHandler(f.service)

	router := chi.NewRouter()
	router.Mount("/manga/{mangaID}/comments", handler.ThreadRoutes())
	router.Mount("/comments", handler.CommentRoutes())
	router.Mount("/moderation/comments", handler.ModerationRoutes())
	return router
}

// doJSON performs a request with an optional authenticated viewer.
func doJSON(t *testing.T, router http.Handler, method, path string, payload any, viewerID string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	request := httptest.NewRequest(method, path, &body)
	if viewerID != "" {
		claims := &sec.AuthClaims{UserID: viewerID, Username: "test", Role: string(sec.RoleMember)}
		request = request.WithContext(ctxutil.WithAuthUser(context.Background(), claims))
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

/*
TestHTTP_ThreadRoundTrip posts a comment over HTTP and reads it back in the
assembled thread.
*/
func TestHTTP_ThreadRoundTrip(t *testing.T) {
	f := newFixture()
	mangaID := uuid.New()
	f.policy.SetModerated(mangaID, false)
	router := newRouter(f)

	resp := doJSON(t, router, http.MethodPost,
		"/manga/"+mangaID+"/comments",
		map[string]any{"body": "Harika bölüm", "is_spoiler": false},
		"",
	)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var created struct {
		Data discussion.Comment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal(t, "Harika bölüm", created.Data.Body)
	assert.Nil(t, created.Data.AuthorID, "unauthenticated post is anonymous")

	resp = doJSON(t, router, http.MethodGet, "/manga/"+mangaID+"/comments", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)

	var thread struct {
		Data discussion.Thread `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &thread))
	require.Len(t, thread.Data.Comments, 1)
	assert.Equal(t, created.Data.ID, thread.Data.Comments[0].ID)
	assert.Equal(t, "Anonim", thread.Data.Comments[0].Author.Name)
}

/*
TestHTTP_ValidationErrors verifies the error envelope for malformed input.
*/
func TestHTTP_ValidationErrors(t *testing.T) {
	f := newFixture()
	mangaID := uuid.New()
	f.policy.SetModerated(mangaID, false)
	router := newRouter(f)

	tests := []struct {
		name     string
		method   string
		path     string
		payload  any
		viewerID string
		wantCode int
	}{
		{"bad_manga_id", http.MethodGet, "/manga/not-a-uuid/comments", nil, "", http.StatusBadRequest},
		{"empty_body", http.MethodPost, "/manga/" + mangaID + "/comments", map[string]any{"body": "   "}, "", http.StatusBadRequest},
		{"edit_without_auth", http.MethodPatch, "/comments/" + uuid.New(), map[string]any{"body": "x"}, "", http.StatusUnauthorized},
		{"react_without_auth", http.MethodPut, fmt.Sprintf("/comments/%s/reaction", uuid.New()), map[string]any{"like": true}, "", http.StatusUnauthorized},
		{"react_missing_like", http.MethodPut, fmt.Sprintf("/comments/%s/reaction", uuid.New()), map[string]any{}, uuid.New(), http.StatusBadRequest},
		{"react_unknown_comment", http.MethodPut, fmt.Sprintf("/comments/%s/reaction", uuid.New()), map[string]any{"like": true}, uuid.New(), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, router, tt.method, tt.path, tt.payload, tt.viewerID)
			assert.Equal(t, tt.wantCode, resp.Code, resp.Body.String())
		})
	}
}

/*
TestHTTP_ReactionToggle verifies the reaction endpoint payload shape.
*/
func TestHTTP_ReactionToggle(t *testing.T) {
	f := newFixture()
	mangaID := uuid.New()
	f.policy.SetModerated(mangaID, false)
	author := f.registerUser("konu_sahibi")
	comment := f.post(t, mangaID, &author, nil, "react over http")
	viewer := f.registerUser("tepki_veren")
	router := newRouter(f)

	resp := doJSON(t, router, http.MethodPut,
		"/comments/"+comment.ID+"/reaction",
		map[string]any{"like": true},
		viewer,
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var result struct {
		Data discussion.ReactionResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Equal(t, discussion.StateLiked, result.Data.State)
	assert.Equal(t, 1, result.Data.LikeCount)
}

/*
TestHTTP_ModerationQueue lists pending comments and approves one.
*/
func TestHTTP_ModerationQueue(t *testing.T) {
	f := newFixture()
	mangaID := uuid.New()
	f.policy.SetModerated(mangaID, true)
	pending := f.post(t, mangaID, nil, nil, "queued")
	moderator := f.registerUser("moderator")
	router := newRouter(f)

	resp := doJSON(t, router, http.MethodGet, "/moderation/comments", nil, moderator)
	require.Equal(t, http.StatusOK, resp.Code)

	var queue struct {
		Data []discussion.Comment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &queue))
	require.Len(t, queue.Data, 1)
	assert.Equal(t, pending.ID, queue.Data[0].ID)

	resp = doJSON(t, router, http.MethodPatch,
		"/moderation/comments/"+pending.ID+"/approval",
		map[string]any{"approved": true},
		moderator,
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var approved struct {
		Data discussion.Comment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &approved))
	assert.True(t, approved.Data.IsApproved)
}
