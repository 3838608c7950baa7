package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/model"
)

// HistoryCache keeps each channel's message list in Redis next to a version
// counter that is bumped on every new message. A cached list is valid only
// for the version it was stored under.
type HistoryCache struct {
	client     *redisv9.Client
	historyTTL time.Duration
	versionTTL time.Duration
}

type cachedHistory struct {
	Version  int64           `json:"version"`
	Messages []model.Message `json:"messages"`
}

func NewHistoryCache(client *redisv9.Client, historyTTL, versionTTL time.Duration) *HistoryCache {
	if historyTTL <= 0 {
		historyTTL = 60 * time.Second
	}
	if versionTTL <= historyTTL {
		versionTTL = 24 * time.Hour
	}
	return &HistoryCache{
		client:     client,
		historyTTL: historyTTL,
		versionTTL: versionTTL,
	}
}

func (c *HistoryCache) Version(ctx context.Context, channelID string) (int64, error) {
	v, err := c.client.Get(ctx, c.versionKey(channelID)).Int64()
	if err == redisv9.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get history version failed: %w", err)
	}
	return v, nil
}

func (c *HistoryCache) Bump(ctx context.Context, channelID string) error {
	key := c.versionKey(channelID)
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, c.versionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis bump history version failed: %w", err)
	}
	return nil
}

func (c *HistoryCache) Get(ctx context.Context, channelID string) ([]model.Message, int64, bool, error) {
	raw, err := c.client.Get(ctx, c.historyKey(channelID)).Result()
	if err == redisv9.Nil {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("redis get history failed: %w", err)
	}

	var entry cachedHistory
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, 0, false, fmt.Errorf("unmarshal cached history failed: %w", err)
	}
	return entry.Messages, entry.Version, true, nil
}

func (c *HistoryCache) Set(ctx context.Context, channelID string, version int64, messages []model.Message) error {
	if messages == nil {
		messages = []model.Message{}
	}
	payload, err := json.Marshal(cachedHistory{Version: version, Messages: messages})
	if err != nil {
		return fmt.Errorf("marshal history cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.historyKey(channelID), payload, c.historyTTL).Err(); err != nil {
		return fmt.Errorf("redis set history failed: %w", err)
	}
	return nil
}

func (c *HistoryCache) historyKey(channelID string) string {
	return fmt.Sprintf("chat:history:%s", channelID)
}

func (c *HistoryCache) versionKey(channelID string) string {
	return fmt.Sprintf("chat:history:version:%s", channelID)
}
