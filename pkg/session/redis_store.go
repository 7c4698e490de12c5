package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "medstock:session:"

// RedisStore keeps sessions as JSON values whose TTL matches the session expiry.
type RedisStore struct {
	db            redis.UniversalClient
	prefix        string
	scanBatchSize int64
	now           func() time.Time
}

// NewRedisStore creates a Redis-backed Store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		db:            client,
		prefix:        defaultRedisPrefix,
		scanBatchSize: 500,
		now:           time.Now,
	}
}

func (s *RedisStore) key(token string) string {
	return s.prefix + token
}

func (s *RedisStore) ttl(session *Session) (time.Duration, error) {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return 0, ErrSessionExpired
	}
	return ttl, nil
}

func (s *RedisStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}
	ttl, err := s.ttl(session)
	if err != nil {
		return err
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.db.Set(ctx, s.key(session.Token), data, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	data, err := s.db.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	if session.IsExpired(s.now()) {
		_ = s.db.Del(ctx, s.key(token)).Err()
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// Update replaces the value only if the key still exists.
func (s *RedisStore) Update(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}
	ttl, err := s.ttl(session)
	if err != nil {
		return err
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ok, err := s.db.SetXX(ctx, s.key(session.Token), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.db.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// List scans the key prefix. Values that vanish between SCAN and GET are skipped.
func (s *RedisStore) List(ctx context.Context) ([]*Session, error) {
	var (
		cursor uint64
		out    []*Session
	)
	for {
		keys, next, err := s.db.Scan(ctx, cursor, s.prefix+"*", s.scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("scan sessions: %w", err)
		}
		for _, key := range keys {
			session, err := s.Get(ctx, key[len(s.prefix):])
			if err != nil {
				if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired) {
					continue
				}
				return nil, err
			}
			out = append(out, session)
		}
		cursor = next
		if cursor == 0 {
			return out, nil
		}
	}
}
