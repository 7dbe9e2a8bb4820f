// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

package profile

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mangadiyari/api/internal/platform/constants"
)

// cacheTTL bounds profile staleness. Username and avatar changes propagate
// within this window without any invalidation traffic.
const cacheTTL = 5 * time.Minute

// CachedResolver is a Redis read-through decorator around another [Resolver].
//
// # Degradation
//
// Cache failures are logged and ignored; profile resolution falls back to
// the inner resolver, so Redis being down slows thread loads but never
// fails them.
type CachedResolver struct {
	inner  Resolver
	client *redis.Client
	logger *slog.Logger
}

// NewCachedResolver wraps a resolver with a Redis profile cache.
func NewCachedResolver(inner Resolver, client *redis.Client, logger *slog.Logger) *CachedResolver {
	return &CachedResolver{
		inner:  inner,
		client: client,
		logger: logger,
	}
}

/*
ResolveByIDs answers the lookup from cache where possible and delegates the
remainder to the inner resolver in a single batched call.

Parameters:
  - ctx: context.Context
  - ids: []string

Returns:
  - map[string]Profile: Keyed by user ID
  - error: Inner resolver failures (cache failures are swallowed)
*/
func (resolver *CachedResolver) ResolveByIDs(ctx context.Context, ids []string) (map[string]Profile, error) {
	profiles := make(map[string]Profile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	// One MGET for all requested ids.
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = constants.RedisPrefixProfile + id
	}

	var missed []string
	cached, err := resolver.client.MGet(ctx, keys...).Result()
	if err != nil {
		resolver.logger.Warn("profile_cache_read_failed", slog.Any("error", err))
		missed = ids
	} else {
		for i, raw := range cached {
			payload, ok := raw.(string)
			if !ok {
				missed = append(missed, ids[i])
				continue
			}

			var p Profile
			if err := json.Unmarshal([]byte(payload), &p); err != nil {
				missed = append(missed, ids[i])
				continue
			}
			profiles[ids[i]] = p
		}
	}

	if len(missed) == 0 {
		return profiles, nil
	}

	// Delegate the misses in one batch and backfill the cache.
	resolved, err := resolver.inner.ResolveByIDs(ctx, missed)
	if err != nil {
		return nil, err
	}

	for id, p := range resolved {
		profiles[id] = p

		payload, err := json.Marshal(p)
		if err != nil {
			continue
		}
		if err := resolver.client.Set(ctx, constants.RedisPrefixProfile+id, payload, cacheTTL).Err(); err != nil {
			resolver.logger.Warn("profile_cache_write_failed",
				slog.String("user_id", id),
				slog.Any("error", err),
			)
		}
	}

	return profiles, nil
}
