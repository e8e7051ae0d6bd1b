package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/fasihgithub/LivePricesProject/pkg/models"
)

const keyPrefix = "price:"

// Compile-time check to ensure RedisStore implements Store
var _ Store = (*RedisStore)(nil)

// RedisStore keeps the latest quote per symbol in Redis, so the cache
// survives restarts and can be shared by multiple instances. Quotes are
// stored as their JSON wire form under "price:<SYMBOL>" with no TTL;
// like the in-memory store, an entry only ever gets replaced.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Set(ctx context.Context, q models.Quote) error {
	key := strings.ToUpper(strings.TrimSpace(q.Symbol))
	if key == "" {
		return nil
	}

	payload, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, keyPrefix+key, payload, 0).Err()
}

func (r *RedisStore) Get(ctx context.Context, symbol string) (models.Quote, bool, error) {
	key := strings.ToUpper(strings.TrimSpace(symbol))

	payload, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Quote{}, false, nil
	}
	if err != nil {
		return models.Quote{}, false, err
	}

	var q models.Quote
	if err := json.Unmarshal(payload, &q); err != nil {
		return models.Quote{}, false, err
	}
	return q, true, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
