package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/storehouse-app/storehouse/config"
	"github.com/storehouse-app/storehouse/internal/domain"
)

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

type RedisCache struct {
	client        *redis.Client
	propertiesTTL time.Duration
}

func NewRedisCache(client *redis.Client, propertiesTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, propertiesTTL: propertiesTTL}
}

func (c *RedisCache) GetProperties(ctx context.Context) ([]domain.Property, error) {
	data, err := c.client.Get(ctx, propertiesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var properties []domain.Property
	if err := json.Unmarshal(data, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

func (c *RedisCache) SetProperties(ctx context.Context, properties []domain.Property) error {
	payload, err := json.Marshal(properties)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, propertiesKey(), payload, c.propertiesTTL).Err()
}

// AcquireSubmitLock guards against a double-submit of the same booking by
// the same caller. The lock expires on its own after ttl.
func (c *RedisCache) AcquireSubmitLock(ctx context.Context, userID, propertyID uuid.UUID, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, submitLockKey(userID, propertyID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSubmitLock(ctx context.Context, userID, propertyID uuid.UUID) error {
	return c.client.Del(ctx, submitLockKey(userID, propertyID)).Err()
}

func propertiesKey() string {
	return "cache:properties"
}

func submitLockKey(userID, propertyID uuid.UUID) string {
	return fmt.Sprintf("lock:booking:%s:%s", userID, propertyID)
}
