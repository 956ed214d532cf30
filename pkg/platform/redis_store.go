// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package platform

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"turn-based-flow-grpc-plugin-server-go/pkg/match"
)

const redisKeyPrefix = "turnflow:match:"

// RedisStore keeps match records as JSON documents in Redis
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisStore(client *redis.Client, retention time.Duration) *RedisStore {
	return &RedisStore{client: client, retention: retention}
}

func redisKey(matchID string) string {
	return redisKeyPrefix + matchID
}

func (s *RedisStore) Load(ctx context.Context, matchID string) (*match.Match, error) {
	raw, err := s.client.Get(ctx, redisKey(matchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errors.Wrapf(ErrMatchNotFound, "load %s", matchID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", matchID)
	}

	var m match.Match
	if err = json.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrapf(err, "decode %s", matchID)
	}

	return &m, nil
}

func (s *RedisStore) Save(ctx context.Context, m *match.Match) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return errors.Wrapf(err, "encode %s", m.MatchID)
	}

	// zero expiration keeps the key forever
	var ttl time.Duration
	if m.Status == match.StatusEnded {
		ttl = s.retention
	}
	if err = s.client.Set(ctx, redisKey(m.MatchID), raw, ttl).Err(); err != nil {
		return errors.Wrapf(err, "save %s", m.MatchID)
	}

	return nil
}

// Ping checks the connection at startup
func (s *RedisStore) Ping(ctx context.Context) error {
	return errors.Wrap(s.client.Ping(ctx).Err(), "redis ping")
}
