package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mind-links/contractor-backend-go/internal/domain/wizard"
)

const (
	sessionKeyPrefix = "wizard:session:"
	// Sorted set of session IDs scored by expiry (unix seconds), used by the sweep.
	expiryIndexKey = "wizard:sessions:expiry"
)

type sessionRepositoryImpl struct {
	client *redis.Client
	now    func() time.Time
}

// NewSessionRepository creates a Redis-backed wizard session store. Sessions
// are stored as JSON with a TTL matching their expiry.
func NewSessionRepository(client *redis.Client) wizard.SessionRepository {
	return &sessionRepositoryImpl{client: client, now: time.Now}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Save implements wizard.SessionRepository.
func (r *sessionRepositoryImpl) Save(ctx context.Context, session wizard.Session) error {
	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return r.Delete(ctx, session.ID)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode wizard session: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(session.ID), payload, ttl)
		pipe.ZAdd(ctx, expiryIndexKey, redis.Z{
			Score:  float64(session.ExpiresAt.Unix()),
			Member: session.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save wizard session: %w", err)
	}

	return nil
}

// Get implements wizard.SessionRepository.
func (r *sessionRepositoryImpl) Get(ctx context.Context, id string) (wizard.Session, error) {
	payload, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return wizard.Session{}, wizard.ErrSessionNotFound
	}
	if err != nil {
		return wizard.Session{}, fmt.Errorf("failed to get wizard session: %w", err)
	}

	var session wizard.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return wizard.Session{}, fmt.Errorf("failed to decode wizard session: %w", err)
	}

	if session.IsExpired(r.now()) {
		return wizard.Session{}, wizard.ErrSessionNotFound
	}

	return session, nil
}

// Delete implements wizard.SessionRepository.
func (r *sessionRepositoryImpl) Delete(ctx context.Context, id string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(id))
		pipe.ZRem(ctx, expiryIndexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete wizard session: %w", err)
	}
	return nil
}

// DeleteExpired implements wizard.SessionRepository. Redis drops the session
// keys on its own; this trims the expiry index and reports how many expired.
func (r *sessionRepositoryImpl) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	ids, err := r.client.ZRangeByScore(ctx, expiryIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to scan expired wizard sessions: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(id)
		members[i] = id
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, expiryIndexKey, members...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired wizard sessions: %w", err)
	}

	return len(ids), nil
}

// CountActive implements wizard.SessionRepository. It counts the expiry index,
// so every replica sharing the Redis database reports the same number.
func (r *sessionRepositoryImpl) CountActive(ctx context.Context, now time.Time) (int, error) {
	count, err := r.client.ZCount(ctx, expiryIndexKey, "("+strconv.FormatInt(now.Unix(), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count wizard sessions: %w", err)
	}
	return int(count), nil
}
