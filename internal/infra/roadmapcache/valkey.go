package roadmapcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	domain "github.com/yanqian/learnmate/internal/domain/roadmap"
)

// ValkeyCache stores encoded roadmaps in a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "learnmate"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

func (c *ValkeyCache) Get(ctx context.Context, key string) (domain.Roadmap, bool, error) {
	payload, err := c.client.Do(ctx, c.client.B().Get().Key(c.entryKey(key)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return domain.Roadmap{}, false, nil
		}
		return domain.Roadmap{}, false, err
	}
	var roadmap domain.Roadmap
	if err := json.Unmarshal([]byte(payload), &roadmap); err != nil {
		return domain.Roadmap{}, false, err
	}
	return roadmap, true, nil
}

func (c *ValkeyCache) Set(ctx context.Context, key string, roadmap domain.Roadmap, ttl time.Duration) error {
	payload, err := json.Marshal(roadmap)
	if err != nil {
		return err
	}
	builder := c.client.B().Set().Key(c.entryKey(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) entryKey(key string) string {
	return c.prefix + ":" + key
}

var _ domain.Cache = (*ValkeyCache)(nil)
