package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound is returned for unknown or expired session ids.
	ErrNotFound = errors.New("session not found")
	// ErrRevoked is returned for ids ended by logout, password reset or account deletion.
	ErrRevoked = errors.New("session revoked")
	// ErrRedisUnavailable wraps Redis transport failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Store persists sessions. Implementations must be safe for concurrent use.
//
// Delete and DeleteAllForUser leave a revocation tombstone for every removed
// id, so a deleted id reports [ErrRevoked] until its natural expiry.
type Store interface {
	Save(ctx context.Context, sess *Session, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, sessionID string) error
	DeleteAllForUser(ctx context.Context, userID int64) error
}

const deleteSessionScript = `
local existed = redis.call("EXISTS", KEYS[1])
redis.call("DEL", KEYS[1])
redis.call("SREM", KEYS[2], ARGV[1])
redis.call("SET", KEYS[3], "1", "PX", ARGV[2])
return existed
`

var deleteSessionLua = redis.NewScript(deleteSessionScript)

// RedisStore keeps sessions in Redis with a per-user id index.
//
// Keys:
//   - <prefix>:s:<sid>    encoded session, TTL = remaining lifetime
//   - <prefix>:u:<uid>    set of live session ids for the user
//   - <prefix>:r:<sid>    revocation tombstone
type RedisStore struct {
	redis        redis.UniversalClient
	prefix       string
	tombstoneTTL time.Duration
	now          func() time.Time
}

// NewRedisStore builds a [RedisStore]. tombstoneTTL bounds how long a
// revoked id is remembered when its own expiry is unknown; pass the
// absolute session lifetime.
func NewRedisStore(redisClient redis.UniversalClient, prefix string, tombstoneTTL time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "crs"
	}
	if tombstoneTTL <= 0 {
		tombstoneTTL = 24 * time.Hour
	}
	return &RedisStore{
		redis:        redisClient,
		prefix:       prefix,
		tombstoneTTL: tombstoneTTL,
		now:          time.Now,
	}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + ":s:" + sessionID
}

func (s *RedisStore) userKey(userID int64) string {
	return s.prefix + ":u:" + strconv.FormatInt(userID, 10)
}

func (s *RedisStore) revokedKey(sessionID string) string {
	return s.prefix + ":r:" + sessionID
}

func (s *RedisStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}

	userKey := s.userKey(sess.UserID)
	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(sess.SessionID), data, ttl)
		pipe.SAdd(ctx, userKey, sess.SessionID)
		pipe.Expire(ctx, userKey, s.tombstoneTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	pipe := s.redis.Pipeline()
	revokedCmd := pipe.Exists(ctx, s.revokedKey(sessionID))
	getCmd := pipe.Get(ctx, s.key(sessionID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if revokedCmd.Val() == 1 {
		return nil, ErrRevoked
	}

	data, err := getCmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return nil, err
	}
	sess.SessionID = sessionID

	if sess.Expired(s.now()) {
		if err := s.redis.Del(ctx, s.key(sessionID)).Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		return nil, ErrNotFound
	}

	return sess, nil
}

func (s *RedisStore) Update(ctx context.Context, sess *Session) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}

	ok, err := s.redis.SetXX(ctx, s.key(sess.SessionID), data, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return err
	}

	tombstone := sess.Remaining(s.now())
	if tombstone <= 0 {
		tombstone = time.Second
	}

	err = deleteSessionLua.Run(ctx, s.redis,
		[]string{s.key(sessionID), s.userKey(sess.UserID), s.revokedKey(sessionID)},
		sessionID,
		tombstone.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

func (s *RedisStore) DeleteAllForUser(ctx context.Context, userID int64) error {
	userKey := s.userKey(userID)

	sessionIDs, err := s.redis.SMembers(ctx, userKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, sessionID := range sessionIDs {
			pipe.Del(ctx, s.key(sessionID))
			pipe.Set(ctx, s.revokedKey(sessionID), "1", s.tombstoneTTL)
		}
		pipe.Del(ctx, userKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Ping reports Redis round-trip latency.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
