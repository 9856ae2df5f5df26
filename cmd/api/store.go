package main

import (
	"context"
	"fmt"

	"github.com/marcelsud/payment-gateway-orchestrator/config"
	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/marcelsud/payment-gateway-orchestrator/gateway/memory"
	"github.com/marcelsud/payment-gateway-orchestrator/gateway/postgres"
	"github.com/marcelsud/payment-gateway-orchestrator/gateway/redis"
)

// store is the payment record backend selected by PAYMENT_STORE
type store struct {
	repo gateway.Repository
	// publisher is nil unless the backend can share probe results
	publisher gateway.HealthPublisher
}

func openStore(ctx context.Context, cfg *config.Config) (store, error) {
	switch cfg.PaymentStore {
	case "memory":
		return store{repo: memory.NewRepository()}, nil
	case "redis":
		repo, err := redis.NewRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return store{}, fmt.Errorf("connecting to redis: %w", err)
		}
		return store{repo: repo, publisher: repo.NewHealthPublisher(redis.DefaultHealthTTL)}, nil
	case "postgres":
		repo, err := postgres.NewRepository(cfg.PostgresURL)
		if err != nil {
			return store{}, fmt.Errorf("connecting to postgres: %w", err)
		}
		if err := repo.CreateTable(ctx); err != nil {
			repo.Close(ctx)
			return store{}, fmt.Errorf("creating payments table: %w", err)
		}
		return store{repo: repo}, nil
	default:
		return store{}, fmt.Errorf("unknown PAYMENT_STORE %q", cfg.PaymentStore)
	}
}
