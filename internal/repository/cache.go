package repository

import (
	"encoding/json"
	"time"

	"studybuddy/internal/util"
)

// Read-through cache helpers shared by the repositories. Every caller
// nil-guards the client first; a cache miss or a marshalling problem is never
// an error, the database answer wins.

func cacheList[T any](redis *util.RedisClient, key string, items []*T, expiration time.Duration) {
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	redis.Set(key, string(data), expiration)
}

func listFromCache[T any](redis *util.RedisClient, key string) ([]*T, error) {
	cached, err := redis.Get(key)
	if err != nil {
		return nil, err
	}

	var items []*T
	if err := json.Unmarshal([]byte(cached), &items); err != nil {
		return nil, err
	}
	return items, nil
}
