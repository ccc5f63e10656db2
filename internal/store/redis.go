// Package store persists session state in Redis.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"barber-queue/internal/controller"

	"github.com/redis/go-redis/v9"
)

func stateKey(sessionID string) string {
	return fmt.Sprintf("session:state:%s", sessionID)
}

func phoneKey(sessionID string) string {
	return fmt.Sprintf("session:phone:%s", sessionID)
}

// RedisStore keeps controller state as JSON under session:state:<sid> and
// phone gate entries under session:phone:<sid>. Both expire after ttl of
// inactivity. Signing out drops the state but keeps the phone, so the phone
// gate is prefilled on the next visit from the same tab.
type RedisStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisStore(rdb redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (controller.State, bool, error) {
	raw, err := s.rdb.Get(ctx, stateKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return controller.State{}, false, nil
	}
	if err != nil {
		return controller.State{}, false, fmt.Errorf("get session state: %w", err)
	}

	var st controller.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return controller.State{}, false, fmt.Errorf("decode session state: %w", err)
	}
	return st, true, nil
}

func (s *RedisStore) Save(ctx context.Context, st controller.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	if err := s.rdb.Set(ctx, stateKey(st.SessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set session state: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, stateKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) SavePhone(ctx context.Context, sessionID, phone string) error {
	if err := s.rdb.Set(ctx, phoneKey(sessionID), phone, s.ttl).Err(); err != nil {
		return fmt.Errorf("set session phone: %w", err)
	}
	return nil
}

// Phone returns the number captured by the phone gate, if any.
func (s *RedisStore) Phone(ctx context.Context, sessionID string) (string, bool, error) {
	phone, err := s.rdb.Get(ctx, phoneKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get session phone: %w", err)
	}
	return phone, true, nil
}
