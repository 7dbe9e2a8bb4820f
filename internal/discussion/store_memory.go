// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

package discussion

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mangadiyari/api/internal/platform/apperr"
)

// MemoryCommentRepository is a development and test implementation of
// [Repository]. Counters are derived on read, same as the SQL store.
type MemoryCommentRepository struct {
	mu        sync.RWMutex
	comments  map[string]*Comment
	seq       map[string]int // insertion order, tie-break for equal timestamps
	nextSeq   int
	reactions *MemoryReactionRepository
}

// NewMemoryCommentRepository constructs an empty in-memory comment store.
// The reaction repository supplies derived like/dislike counts; pass nil
// when reactions are not under test.
func NewMemoryCommentRepository(reactions *MemoryReactionRepository) *MemoryCommentRepository {
	return &MemoryCommentRepository{
		comments:  make(map[string]*Comment),
		seq:       make(map[string]int),
		reactions: reactions,
	}
}

func (s *MemoryCommentRepository) FindByID(_ context.Context, id string) (*Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, apperr.NotFound("Comment")
	}
	return s.hydrate(comment), nil
}

func (s *MemoryCommentRepository) ListTopLevel(_ context.Context, mangaID string) ([]*Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tops []*Comment
	for _, c := range s.comments {
		if c.MangaID == mangaID && c.ParentID == nil {
			tops = append(tops, s.hydrate(c))
		}
	}

	// Newest first; insertion order breaks timestamp ties.
	sort.Slice(tops, func(i, j int) bool {
		if !tops[i].CreatedAt.Equal(tops[j].CreatedAt) {
			return tops[i].CreatedAt.After(tops[j].CreatedAt)
		}
		return s.seq[tops[i].ID] > s.seq[tops[j].ID]
	})

	return tops, nil
}

func (s *MemoryCommentRepository) ListReplies(_ context.Context, mangaID string) ([]*Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var replies []*Comment
	for _, c := range s.comments {
		if c.MangaID == mangaID && c.ParentID != nil {
			replies = append(replies, s.hydrate(c))
		}
	}

	// Oldest first.
	sort.Slice(replies, func(i, j int) bool {
		if !replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		}
		return s.seq[replies[i].ID] < s.seq[replies[j].ID]
	})

	return replies, nil
}

func (s *MemoryCommentRepository) ListPending(_ context.Context, limit, offset int) ([]*Comment, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []*Comment
	for _, c := range s.comments {
		if !c.IsApproved {
			pending = append(pending, s.hydrate(c))
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].CreatedAt.Before(pending[j].CreatedAt)
		}
		return s.seq[pending[i].ID] < s.seq[pending[j].ID]
	})

	total := len(pending)
	if offset >= total {
		return []*Comment{}, total, nil
	}
	pending = pending[offset:]
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}

	return pending, total, nil
}

func (s *MemoryCommentRepository) Create(_ context.Context, comment *Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	stored := *comment
	s.comments[comment.ID] = &stored
	s.seq[comment.ID] = s.nextSeq
	s.nextSeq++

	return nil
}

func (s *MemoryCommentRepository) Update(_ context.Context, comment *Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.comments[comment.ID]
	if !ok {
		return apperr.NotFound("Comment")
	}

	stored.Body = comment.Body
	stored.IsSpoiler = comment.IsSpoiler
	stored.IsApproved = comment.IsApproved
	stored.UpdatedAt = time.Now().UTC()
	comment.UpdatedAt = stored.UpdatedAt

	return nil
}

func (s *MemoryCommentRepository) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := []string{id}
	for replyID, c := range s.comments {
		if c.ParentID != nil && *c.ParentID == id {
			removed = append(removed, replyID)
		}
	}

	for _, victim := range removed {
		delete(s.comments, victim)
		delete(s.seq, victim)
		if s.reactions != nil {
			s.reactions.removeAll(victim)
		}
	}

	return nil
}

// hydrate copies a stored row and attaches derived counters.
// Callers must hold at least the read lock.
func (s *MemoryCommentRepository) hydrate(stored *Comment) *Comment {
	comment := *stored

	for _, c := range s.comments {
		if c.ParentID != nil && *c.ParentID == comment.ID {
			comment.ReplyCount++
		}
	}

	if s.reactions != nil {
		comment.LikeCount, comment.DislikeCount = s.reactions.counts(comment.ID)
	}

	return &comment
}

// MemoryReactionRepository is a development and test implementation of
// [ReactionRepository].
type MemoryReactionRepository struct {
	mu   sync.RWMutex
	rows map[string]map[string]*Reaction // commentID -> userID -> row
}

// NewMemoryReactionRepository constructs an empty in-memory reaction store.
func NewMemoryReactionRepository() *MemoryReactionRepository {
	return &MemoryReactionRepository{
		rows: make(map[string]map[string]*Reaction),
	}
}

func (s *MemoryReactionRepository) Find(_ context.Context, commentID, userID string) (*Reaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[commentID][userID]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (s *MemoryReactionRepository) FindForViewer(_ context.Context, commentIDs []string, userID string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make(map[string]bool, len(commentIDs))
	for _, commentID := range commentIDs {
		if row, ok := s.rows[commentID][userID]; ok {
			states[commentID] = row.IsLike
		}
	}
	return states, nil
}

func (s *MemoryReactionRepository) Upsert(_ context.Context, commentID, userID string, isLike bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rows[commentID] == nil {
		s.rows[commentID] = make(map[string]*Reaction)
	}
	if existing, ok := s.rows[commentID][userID]; ok {
		existing.IsLike = isLike
		return nil
	}

	s.rows[commentID][userID] = &Reaction{
		CommentID: commentID,
		UserID:    userID,
		IsLike:    isLike,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *MemoryReactionRepository) Delete(_ context.Context, commentID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rows[commentID], userID)
	return nil
}

func (s *MemoryReactionRepository) Count(_ context.Context, commentID string) (int, int, error) {
	likes, dislikes := s.counts(commentID)
	return likes, dislikes, nil
}

func (s *MemoryReactionRepository) counts(commentID string) (likes, dislikes int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, row := range s.rows[commentID] {
		if row.IsLike {
			likes++
		} else {
			dislikes++
		}
	}
	return likes, dislikes
}

func (s *MemoryReactionRepository) removeAll(commentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rows, commentID)
}

// MemoryModerationPolicy is a map-backed [ModerationPolicy] for tests.
// Mangas must be registered with [MemoryModerationPolicy.SetModerated];
// unknown ids behave like a missing manga row.
type MemoryModerationPolicy struct {
	mu     sync.RWMutex
	mangas map[string]bool
}

// NewMemoryModerationPolicy constructs an empty in-memory policy.
func NewMemoryModerationPolicy() *MemoryModerationPolicy {
	return &MemoryModerationPolicy{mangas: make(map[string]bool)}
}

// SetModerated registers a manga and its moderation flag.
func (p *MemoryModerationPolicy) SetModerated(mangaID string, moderated bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.mangas[mangaID] = moderated
}

func (p *MemoryModerationPolicy) IsModerated(_ context.Context, mangaID string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	moderated, ok := p.mangas[mangaID]
	if !ok {
		return false, apperr.NotFound("Manga")
	}
	return moderated, nil
}
