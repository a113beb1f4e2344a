package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when no session exists for the given ID.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionCorrupt is returned when the stored session blob is invalid.
var ErrSessionCorrupt = errors.New("session corrupt")

// ErrRedisUnavailable is returned when the backend cannot be reached.
var ErrRedisUnavailable = errors.New("redis unavailable")

const minSessionTTL = time.Second

// Store persists client sessions in Redis.
type Store struct {
	redis    redis.UniversalClient
	prefix   string
	lifetime time.Duration
}

// NewStore creates a session [Store] backed by the given Redis client.
// lifetime bounds how long an idle session record survives.
func NewStore(redisClient redis.UniversalClient, prefix string, lifetime time.Duration) *Store {
	if prefix == "" {
		prefix = "fcs"
	}
	if lifetime <= 0 {
		lifetime = 12 * time.Hour
	}
	return &Store{
		redis:    redisClient,
		prefix:   prefix,
		lifetime: lifetime,
	}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

// Save writes the session with its remaining lifetime as TTL.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	encoded, err := Encode(sess)
	if err != nil {
		return err
	}
	ttl := s.remainingTTL(sess)
	if err := s.redis.Set(ctx, s.key(sess.SessionID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get loads a session. Expired sessions are deleted and reported as not found.
func (s *Store) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCorrupt, err)
	}
	sess.SessionID = sessionID

	if time.Now().Unix() > sess.ExpiresAt {
		_, _ = s.redis.Del(ctx, s.key(sessionID)).Result()
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes a session. Returns whether a record existed.
func (s *Store) Delete(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.redis.Del(ctx, s.key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n > 0, nil
}

// BeginVerification marks the session as awaiting face verification for the
// given identity, resetting the attempt counter. The session is created when
// it does not exist yet.
func (s *Store) BeginVerification(ctx context.Context, sessionID, identityID string) (*Session, error) {
	return s.update(ctx, sessionID, true, func(sess *Session) error {
		sess.IdentityID = identityID
		sess.PendingVerification = true
		sess.Verified = false
		sess.VerifyAttempts = 0
		return nil
	})
}

// RecordVerifyFailure atomically increments the verification attempt counter.
func (s *Store) RecordVerifyFailure(ctx context.Context, sessionID string) (*Session, error) {
	return s.update(ctx, sessionID, false, func(sess *Session) error {
		sess.VerifyAttempts++
		return nil
	})
}

// CompleteVerification clears the pending flag and attempt counter and marks
// the session verified. Used for both a successful match and a skip.
func (s *Store) CompleteVerification(ctx context.Context, sessionID string) (*Session, error) {
	return s.update(ctx, sessionID, false, func(sess *Session) error {
		sess.PendingVerification = false
		sess.Verified = true
		sess.VerifyAttempts = 0
		return nil
	})
}

// AbortVerification clears the pending flag and attempt counter without
// marking the session verified. Used when verification cannot proceed at all,
// e.g. the identity lost its descriptors between login and verification.
func (s *Store) AbortVerification(ctx context.Context, sessionID string) (*Session, error) {
	return s.update(ctx, sessionID, false, func(sess *Session) error {
		sess.PendingVerification = false
		sess.VerifyAttempts = 0
		return nil
	})
}

// IncrementLoginAttempt atomically bumps the standalone face-login counter,
// first resetting it when the window since the last attempt has elapsed.
// The session is created when it does not exist yet.
func (s *Store) IncrementLoginAttempt(ctx context.Context, sessionID string, window time.Duration) (*Session, error) {
	now := time.Now()
	return s.update(ctx, sessionID, true, func(sess *Session) error {
		if sess.LastLoginAttempt > 0 && now.Sub(time.Unix(sess.LastLoginAttempt, 0)) > window {
			sess.LoginAttempts = 0
		}
		sess.LoginAttempts++
		sess.LastLoginAttempt = now.Unix()
		return nil
	})
}

// MarkAuthenticated binds the session to the matched identity, marks it
// verified, bypasses any pending verification, and resets both attempt
// counters. The session is created when it does not exist yet.
func (s *Store) MarkAuthenticated(ctx context.Context, sessionID, identityID string) (*Session, error) {
	return s.update(ctx, sessionID, true, func(sess *Session) error {
		sess.IdentityID = identityID
		sess.PendingVerification = false
		sess.Verified = true
		sess.VerifyAttempts = 0
		sess.LoginAttempts = 0
		sess.LastLoginAttempt = 0
		return nil
	})
}

// update runs a WATCH-guarded read-modify-write cycle on one session record.
func (s *Store) update(
	ctx context.Context,
	sessionID string,
	createIfMissing bool,
	mutate func(*Session) error,
) (*Session, error) {
	const maxRetries = 4
	key := s.key(sessionID)

	for i := 0; i < maxRetries; i++ {
		var result *Session
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			sess, err := s.loadInTx(ctx, tx, sessionID)
			if err != nil {
				if !errors.Is(err, ErrSessionNotFound) || !createIfMissing {
					return err
				}
				now := time.Now()
				sess = &Session{
					SessionID: sessionID,
					CreatedAt: now.Unix(),
					ExpiresAt: now.Add(s.lifetime).Unix(),
				}
			}

			if err := mutate(sess); err != nil {
				return err
			}

			encoded, err := Encode(sess)
			if err != nil {
				return err
			}
			ttl := s.remainingTTL(sess)

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, encoded, ttl)
				return nil
			})
			if err != nil {
				return err
			}
			result = sess
			return nil
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionCorrupt) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		return result, nil
	}

	return nil, fmt.Errorf("%w: transaction retries exhausted", ErrRedisUnavailable)
}

func (s *Store) loadInTx(ctx context.Context, tx *redis.Tx, sessionID string) (*Session, error) {
	data, err := tx.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	sess, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCorrupt, err)
	}
	sess.SessionID = sessionID

	if time.Now().Unix() > sess.ExpiresAt {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Store) remainingTTL(sess *Session) time.Duration {
	ttl := time.Until(time.Unix(sess.ExpiresAt, 0))
	if ttl < minSessionTTL {
		ttl = minSessionTTL
	}
	return ttl
}
