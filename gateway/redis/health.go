package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/redis/go-redis/v9"
)

const healthPrefix = "gateway:health" // Key naming: gateway:health:{gateway_id}

// DefaultHealthTTL expires a published snapshot when probing stops
const DefaultHealthTTL = 3 * time.Minute

// HealthPublisher publishes probe results so other processes can read them
type HealthPublisher struct {
	client *redis.Client
	ttl    time.Duration
}

// NewHealthPublisher creates a publisher sharing the repository connection
func (r *Repository) NewHealthPublisher(ttl time.Duration) *HealthPublisher {
	if ttl <= 0 {
		ttl = DefaultHealthTTL
	}
	return &HealthPublisher{client: r.client, ttl: ttl}
}

// PublishHealth stores one key per gateway with a TTL
func (p *HealthPublisher) PublishHealth(ctx context.Context, snapshot []gateway.Health) error {
	pipe := p.client.Pipeline()
	for _, h := range snapshot {
		data, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("marshaling health: %w", err)
		}
		pipe.Set(ctx, healthKey(h.Gateway), data, p.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publishing health: %w", err)
	}
	return nil
}

// GetPublishedHealth retrieves every snapshot that has not expired yet
func (p *HealthPublisher) GetPublishedHealth(ctx context.Context) ([]gateway.Health, error) {
	var snapshot []gateway.Health

	var cursor uint64
	for {
		keys, nextCursor, err := p.client.Scan(ctx, cursor, healthPrefix+":*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning health keys: %w", err)
		}

		for _, key := range keys {
			data, err := p.client.Get(ctx, key).Result()
			if err == redis.Nil {
				// expired between scan and get
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("getting gateway health: %w", err)
			}

			var h gateway.Health
			if err := json.Unmarshal([]byte(data), &h); err != nil {
				continue
			}
			snapshot = append(snapshot, h)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return snapshot, nil
}

func healthKey(id gateway.ID) string {
	return fmt.Sprintf("%s:%s", healthPrefix, id)
}
