package session

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists the credential under a single redis key. Only that key
// is ever written or deleted; unrelated keys in the same database are left
// alone.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore returns a store writing to the given key. An empty key falls
// back to StorageKey.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = StorageKey
	}
	return &RedisStore{client: client, key: key}
}

// Save serializes the record and overwrites the key.
func (s *RedisStore) Save(ctx context.Context, cred Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, data, 0).Err()
}

// Read fetches and parses the record. A missing key or unparsable value is
// treated as no credential.
func (s *RedisStore) Read(ctx context.Context) (*Credential, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, nil
	}
	return &cred, nil
}

// Clear deletes the key. Deleting an absent key is a no-op in redis.
func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
