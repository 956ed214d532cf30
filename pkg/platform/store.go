// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package platform

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"turn-based-flow-grpc-plugin-server-go/pkg/match"
)

var ErrMatchNotFound = errors.New("match not found")

// MatchStore keeps the authoritative match records. Implementations hand out
// copies so callers can mutate what they load.
type MatchStore interface {
	Load(ctx context.Context, matchID string) (*match.Match, error)
	Save(ctx context.Context, m *match.Match) error
}

// CacheStore keeps match records in process. Ended matches are evicted after
// the retention period.
type CacheStore struct {
	cache     *cache.Cache
	retention time.Duration
}

func NewCacheStore(retention, cleanupInterval time.Duration) *CacheStore {
	return &CacheStore{
		cache:     cache.New(cache.NoExpiration, cleanupInterval),
		retention: retention,
	}
}

func (s *CacheStore) Load(_ context.Context, matchID string) (*match.Match, error) {
	v, found := s.cache.Get(matchID)
	if !found {
		return nil, errors.Wrapf(ErrMatchNotFound, "load %s", matchID)
	}

	return v.(*match.Match).Clone(), nil
}

func (s *CacheStore) Save(_ context.Context, m *match.Match) error {
	s.cache.Set(m.MatchID, m.Clone(), expiry(m, s.retention))

	return nil
}

func expiry(m *match.Match, retention time.Duration) time.Duration {
	if m.Status == match.StatusEnded && retention > 0 {
		return retention
	}

	return cache.NoExpiration
}
