package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tsumogiri/riichi-client/internal/model"
	"github.com/tsumogiri/riichi-client/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveReplayMeta(ctx context.Context, meta *model.ReplayMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, replayMetaKey(meta.ID), data, s.cfg.ReplayTTL)
	pipe.SAdd(ctx, replayIndexKey(), string(meta.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetReplayMeta(ctx context.Context, id model.ReplayID) (*model.ReplayMeta, error) {
	data, err := s.client.Get(ctx, replayMetaKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrReplayNotFound
		}
		return nil, err
	}

	var meta model.ReplayMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Storage) ListReplays(ctx context.Context) ([]*model.ReplayMeta, error) {
	ids, err := s.client.SMembers(ctx, replayIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.ReplayMeta{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = replayMetaKey(model.ReplayID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	metas := make([]*model.ReplayMeta, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Replay may have expired
		}
		var meta model.ReplayMeta
		if err := json.Unmarshal([]byte(val.(string)), &meta); err != nil {
			continue // Skip invalid data
		}
		metas = append(metas, &meta)
	}

	return metas, nil
}

func (s *Storage) AppendReplayLines(ctx context.Context, id model.ReplayID, lines []*model.ReplayLine) error {
	if len(lines) == 0 {
		return nil
	}

	exists, err := s.client.Exists(ctx, replayMetaKey(id)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrReplayNotFound
	}

	members := make([]interface{}, len(lines))
	for i, line := range lines {
		data, err := json.Marshal(line)
		if err != nil {
			return err
		}
		members[i] = data
	}

	key := replayLinesKey(id)
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, members...)
	pipe.Expire(ctx, key, s.cfg.ReplayTTL) // Keep lines TTL in sync with meta
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetReplayLines(ctx context.Context, id model.ReplayID) ([]*model.ReplayLine, error) {
	exists, err := s.client.Exists(ctx, replayMetaKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.ErrReplayNotFound
	}

	values, err := s.client.LRange(ctx, replayLinesKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	lines := make([]*model.ReplayLine, 0, len(values))
	for _, val := range values {
		var line model.ReplayLine
		if err := json.Unmarshal([]byte(val), &line); err != nil {
			continue // Skip invalid data
		}
		lines = append(lines, &line)
	}

	return lines, nil
}

func (s *Storage) DeleteReplay(ctx context.Context, id model.ReplayID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, replayMetaKey(id))
	pipe.Del(ctx, replayLinesKey(id))
	pipe.SRem(ctx, replayIndexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}
