package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zvrva/tourbooking/config"
	"github.com/zvrva/tourbooking/internal/domain"
)

type RedisCache struct {
	client        *redis.Client
	activitiesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, activitiesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:        redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		activitiesTTL: activitiesTTL,
	}
}

func (c *RedisCache) GetActivities(ctx context.Context) ([]domain.Activity, error) {
	data, err := c.client.Get(ctx, activitiesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var activities []domain.Activity
	if err := json.Unmarshal(data, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (c *RedisCache) SetActivities(ctx context.Context, activities []domain.Activity) error {
	payload, err := json.Marshal(activities)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, activitiesKey(), payload, c.activitiesTTL).Err()
}

func (c *RedisCache) GetActivity(ctx context.Context, id int64) (*domain.Activity, error) {
	data, err := c.client.Get(ctx, activityKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var activity domain.Activity
	if err := json.Unmarshal(data, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

func (c *RedisCache) SetActivity(ctx context.Context, activity *domain.Activity) error {
	payload, err := json.Marshal(activity)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, activityKey(activity.ID), payload, c.activitiesTTL).Err()
}

func activitiesKey() string {
	return "cache:activities"
}

func activityKey(id int64) string {
	return fmt.Sprintf("cache:activity:%d", id)
}
