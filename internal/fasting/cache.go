package fasting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	activeSessionKeyPrefix = "fasting||active||"
	historyKeyPrefix       = "fasting||history||"
	historyTTL             = 30 * 24 * time.Hour
)

// Cache mirrors the session state in redis so the state machine can
// come back up even when postgres is unreachable. Entries are JSON,
// a corrupt entry is treated as missing.
type Cache struct {
	redisClient *redis.Client
}

func NewCache(redisClient *redis.Client) *Cache {
	return &Cache{
		redisClient: redisClient,
	}
}

func (c *Cache) StoreActive(ctx context.Context, userID string, session *Session) error {
	sessionBytes, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return c.redisClient.Set(ctx, activeSessionKey(userID), sessionBytes, 0).Err()
}

func (c *Cache) ActiveSession(ctx context.Context, userID string) (*Session, error) {
	sessionBytes, err := c.redisClient.Get(ctx, activeSessionKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(sessionBytes, &session); err != nil {
		log.Warnf("corrupt cached session for user %s, dropping it: %s", userID, err)
		return nil, nil
	}

	return &session, nil
}

func (c *Cache) ClearActive(ctx context.Context, userID string) error {
	return c.redisClient.Del(ctx, activeSessionKey(userID)).Err()
}

func (c *Cache) StoreHistory(ctx context.Context, userID string, history []Session) error {
	historyBytes, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	return c.redisClient.Set(ctx, historyKey(userID), historyBytes, historyTTL).Err()
}

func (c *Cache) History(ctx context.Context, userID string) ([]Session, error) {
	historyBytes, err := c.redisClient.Get(ctx, historyKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var history []Session
	if err := json.Unmarshal(historyBytes, &history); err != nil {
		log.Warnf("corrupt cached history for user %s, dropping it: %s", userID, err)
		return nil, nil
	}

	return history, nil
}

func activeSessionKey(userID string) string {
	return activeSessionKeyPrefix + userID
}

func historyKey(userID string) string {
	return historyKeyPrefix + userID
}
