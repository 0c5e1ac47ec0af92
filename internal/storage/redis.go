package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "content-brainstorm/internal/common/errors"
	"content-brainstorm/internal/common/logger"
	"content-brainstorm/internal/common/metrics"
	"content-brainstorm/internal/models"
)

const (
	sessionKeyPrefix = "session:"
	sessionIndexKey  = "sessions:index"
)

// RedisStore persists sessions as JSON blobs with a sorted-set index scored
// by store time. The index drives ordering for List and capacity eviction.
type RedisStore struct {
	client      *redis.Client
	maxSessions int
	ttl         time.Duration
	logger      logger.Logger
}

func NewRedisStore(client *redis.Client, maxSessions int, ttl time.Duration, log logger.Logger) *RedisStore {
	if maxSessions <= 0 {
		maxSessions = 50
	}
	return &RedisStore{
		client:      client,
		maxSessions: maxSessions,
		ttl:         ttl,
		logger: log.With(map[string]interface{}{
			"store": "redis",
		}),
	}
}

func (s *RedisStore) Store(ctx context.Context, session *models.AnalysisSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return apperrors.NewSessionStoreFailedError(err)
	}

	key := sessionKeyPrefix + session.SessionID
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, s.ttl)
	pipe.ZAdd(ctx, sessionIndexKey, redis.Z{
		Score:  float64(time.Now().UnixNano()),
		Member: session.SessionID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.NewSessionStoreFailedError(err)
	}

	if err := s.evictOverCapacity(ctx); err != nil {
		s.logger.Warn("session eviction failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	metrics.SessionsStored.WithLabelValues("redis").Inc()
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*models.AnalysisSession, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, apperrors.NewSessionNotFoundError(sessionID)
	}
	if err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}

	var session models.AnalysisSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}
	return &session, nil
}

func (s *RedisStore) List(ctx context.Context) ([]*models.AnalysisSession, error) {
	ids, err := s.client.ZRange(ctx, sessionIndexKey, 0, -1).Result()
	if err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}

	sessions := make([]*models.AnalysisSession, 0, len(ids))
	for _, id := range ids {
		session, err := s.Get(ctx, id)
		if err != nil {
			// Expired blobs may outlive their index entry.
			if apperrors.IsCode(err, apperrors.ErrCodeSessionNotFound) {
				s.client.ZRem(ctx, sessionIndexKey, id)
				continue
			}
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *RedisStore) Stats(ctx context.Context) map[string]interface{} {
	total, err := s.client.ZCard(ctx, sessionIndexKey).Result()
	if err != nil {
		total = -1
	}
	return map[string]interface{}{
		"implementation": "redis",
		"totalSessions":  total,
		"maxSessions":    s.maxSessions,
		"sessionTTL":     s.ttl.String(),
	}
}

// evictOverCapacity trims the oldest index entries and their blobs once the
// capacity bound is exceeded. The sorted set keeps the ordering consistent
// under concurrent stores.
func (s *RedisStore) evictOverCapacity(ctx context.Context) error {
	total, err := s.client.ZCard(ctx, sessionIndexKey).Result()
	if err != nil {
		return err
	}
	excess := total - int64(s.maxSessions)
	if excess <= 0 {
		return nil
	}

	oldest, err := s.client.ZRange(ctx, sessionIndexKey, 0, excess-1).Result()
	if err != nil {
		return err
	}
	if len(oldest) == 0 {
		return nil
	}

	keys := make([]string, len(oldest))
	for i, id := range oldest {
		keys[i] = sessionKeyPrefix + id
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, keys...)
	pipe.ZRemRangeByRank(ctx, sessionIndexKey, 0, excess-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("evict %d sessions: %w", len(oldest), err)
	}

	for range oldest {
		metrics.SessionsEvicted.Inc()
	}
	s.logger.Info("evicted oldest sessions", map[string]interface{}{
		"count": len(oldest),
	})
	return nil
}
