package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vancho-go/ipreverser/internal/app/models"
)

// RedisStorage keeps records as JSON in a single list, newest at the head.
type RedisStorage struct {
	client *redis.Client
	key    string
}

func InitializeRedis(ctx context.Context, url, key string) (*RedisStorage, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("initializeRedis: error parsing url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("initializeRedis: error verifying connection: %w", err)
	}
	return NewRedisStorage(client, key), nil
}

func NewRedisStorage(client *redis.Client, key string) *RedisStorage {
	return &RedisStorage{client: client, key: key}
}

func (s *RedisStorage) CreateRecord(ctx context.Context, address, reversed string) (models.AddressRecord, error) {
	record := models.AddressRecord{
		ID:              uuid.NewString(),
		Address:         address,
		ReversedAddress: reversed,
		CreatedAt:       now(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return models.AddressRecord{}, fmt.Errorf("createRecord: error encoding record: %w", err)
	}

	if err := s.client.LPush(ctx, s.key, data).Err(); err != nil {
		return models.AddressRecord{}, fmt.Errorf("createRecord: error pushing record: %w", err)
	}
	return record, nil
}

func (s *RedisStorage) ListRecent(ctx context.Context, limit int) ([]models.AddressRecord, error) {
	result := []models.AddressRecord{}
	if limit <= 0 {
		return result, nil
	}

	items, err := s.client.LRange(ctx, s.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("listRecent: error reading records: %w", err)
	}

	for _, item := range items {
		var record models.AddressRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, fmt.Errorf("listRecent: error decoding record: %w", err)
		}
		result = append(result, record)
	}
	return result, nil
}

func (s *RedisStorage) ClearHistory(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clearHistory: error deleting records: %w", err)
	}
	return nil
}

func (s *RedisStorage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *RedisStorage) Close(_ context.Context) error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
