// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

package profile

import (
	"context"
	"sync"
)

// MemoryResolver is an in-memory [Resolver] used by tests.
type MemoryResolver struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryResolver constructs an empty in-memory resolver.
func NewMemoryResolver() *MemoryResolver {
	return &MemoryResolver{profiles: make(map[string]Profile)}
}

// Put registers a profile under the given user ID.
func (resolver *MemoryResolver) Put(id string, p Profile) {
	resolver.mu.Lock()
	defer resolver.mu.Unlock()
	resolver.profiles[id] = p
}

// ResolveByIDs implements [Resolver].
func (resolver *MemoryResolver) ResolveByIDs(_ context.Context, ids []string) (map[string]Profile, error) {
	resolver.mu.RLock()
	defer resolver.mu.RUnlock()

	result := make(map[string]Profile, len(ids))
	for _, id := range ids {
		if p, ok := resolver.profiles[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}
