package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of gateway.Repository
 * Uses Redis Hashes for payment records, one hash per payment
 */

const hashPrefix = "payment" // Hash naming: payment:{payment_id}

type Repository struct {
	client *redis.Client
}

// NewRepository creates a new Redis repository
func NewRepository(addr, password string, db int) (*Repository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Repository{
		client: client,
	}, nil
}

// Create stores a new payment record, failing when the id is taken
func (r *Repository) Create(ctx context.Context, p gateway.Payment) error {
	if p.ID == "" {
		return fmt.Errorf("payment id cannot be empty")
	}
	key := paymentKey(p.ID)

	created, err := r.client.HSetNX(ctx, key, "id", p.ID).Result()
	if err != nil {
		return fmt.Errorf("creating payment: %w", err)
	}
	if !created {
		return fmt.Errorf("payment already exists: %s", p.ID)
	}

	fields, err := toHash(p)
	if err != nil {
		return err
	}
	if err := r.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("storing payment: %w", err)
	}
	return nil
}

// Get retrieves a payment by id
func (r *Repository) Get(ctx context.Context, id string) (gateway.Payment, error) {
	data, err := r.client.HGetAll(ctx, paymentKey(id)).Result()
	if err != nil {
		return gateway.Payment{}, fmt.Errorf("getting payment: %w", err)
	}
	if len(data) == 0 {
		return gateway.Payment{}, &gateway.NotFoundError{PaymentID: id}
	}
	return fromHash(data)
}

// Update replaces the mutable fields of an existing payment
func (r *Repository) Update(ctx context.Context, p gateway.Payment) error {
	key := paymentKey(p.ID)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("checking payment: %w", err)
	}
	if exists == 0 {
		return &gateway.NotFoundError{PaymentID: p.ID}
	}

	fields, err := toHash(p)
	if err != nil {
		return err
	}
	if err := r.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("updating payment: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close()
}

// GetClient returns the underlying Redis client for advanced operations
func (r *Repository) GetClient() *redis.Client {
	return r.client
}

func paymentKey(id string) string {
	return fmt.Sprintf("%s:%s", hashPrefix, id)
}

func toHash(p gateway.Payment) (map[string]interface{}, error) {
	metadataJSON, err := json.Marshal(p.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshaling metadata: %w", err)
	}
	return map[string]interface{}{
		"id":          p.ID,
		"gateway":     string(p.Gateway),
		"status":      p.Status.String(),
		"amount":      strconv.FormatFloat(p.Amount, 'f', -1, 64),
		"currency":    p.Currency,
		"external_id": p.ExternalID,
		"metadata":    string(metadataJSON),
		"created_at":  p.CreatedAt.UnixNano(),
		"updated_at":  p.UpdatedAt.UnixNano(),
	}, nil
}

func fromHash(data map[string]string) (gateway.Payment, error) {
	var metadata map[string]string
	if raw := data["metadata"]; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			return gateway.Payment{}, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}
	amount, err := strconv.ParseFloat(data["amount"], 64)
	if err != nil {
		return gateway.Payment{}, fmt.Errorf("parsing amount: %w", err)
	}

	return gateway.Payment{
		ID:         data["id"],
		Gateway:    gateway.ID(data["gateway"]),
		Status:     gateway.NewStatus(data["status"]),
		Amount:     amount,
		Currency:   data["currency"],
		ExternalID: data["external_id"],
		Metadata:   metadata,
		CreatedAt:  time.Unix(0, parseInt64(data["created_at"])),
		UpdatedAt:  time.Unix(0, parseInt64(data["updated_at"])),
	}, nil
}

func parseInt64(s string) int64 {
	result, _ := strconv.ParseInt(s, 10, 64)
	return result
}
