//go:build integration

package redis_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/marcelsud/payment-gateway-orchestrator/gateway/adapters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Integration(t *testing.T) {
	ctx := context.Background()

	redisContainer, cleanup := SetupRedisContainer(t, ctx)
	defer cleanup()

	repo := CreateTestRepository(t, redisContainer.Addr)
	defer repo.Close(ctx)

	t.Run("success - create and get", func(t *testing.T) {
		now := time.Now().Truncate(time.Millisecond)
		p := gateway.Payment{
			ID:        GenerateID(t, 1),
			Status:    gateway.Pending,
			Amount:    1234.56,
			Currency:  "ARS",
			Metadata:  map[string]string{"booking_id": "b-1"},
			CreatedAt: now,
			UpdatedAt: now,
		}

		require.NoError(t, repo.Create(ctx, p))

		got, err := repo.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
		assert.Equal(t, gateway.Pending, got.Status)
		assert.Equal(t, 1234.56, got.Amount)
		assert.Equal(t, "ARS", got.Currency)
		assert.Equal(t, "b-1", got.Metadata["booking_id"])
		assert.True(t, now.Equal(got.CreatedAt))
	})

	t.Run("success - update", func(t *testing.T) {
		p := gateway.Payment{ID: GenerateID(t, 2), Status: gateway.Pending, Amount: 10, Currency: "ARS"}
		require.NoError(t, repo.Create(ctx, p))

		p.Gateway = gateway.Decidir
		p.ExternalID = "ext-1"
		p.Status = gateway.Approved
		require.NoError(t, repo.Update(ctx, p))

		got, err := repo.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, gateway.Decidir, got.Gateway)
		assert.Equal(t, "ext-1", got.ExternalID)
		assert.Equal(t, gateway.Approved, got.Status)
	})

	t.Run("error - duplicate create", func(t *testing.T) {
		p := gateway.Payment{ID: GenerateID(t, 3), Status: gateway.Pending, Amount: 10, Currency: "ARS"}
		require.NoError(t, repo.Create(ctx, p))

		assert.Error(t, repo.Create(ctx, p))
	})

	t.Run("error - unknown ids", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		assert.True(t, gateway.IsNotFound(err))

		err = repo.Update(ctx, gateway.Payment{ID: "missing"})
		assert.True(t, gateway.IsNotFound(err))
	})

	t.Run("success - concurrent creates", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, 50)
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- repo.Create(ctx, gateway.Payment{ID: GenerateID(t, 100+i), Status: gateway.Pending, Amount: 1, Currency: "ARS"})
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}
	})

	t.Run("success - router persists through redis", func(t *testing.T) {
		router, err := gateway.NewRouter(gateway.RouterConfig{
			Gateways: []gateway.Registration{{
				ID:      gateway.PayU,
				Adapter: adapters.NewSimulated(adapters.SimulatedConfig{Gateway: gateway.PayU, SuccessRate: 1, Seed: 1}),
			}},
			Repo: repo,
		})
		require.NoError(t, err)

		res, err := router.CreatePayment(ctx, gateway.Request{Amount: 500, Currency: "ARS", ClientEmail: "a@b.com"})
		require.NoError(t, err)

		got, err := router.GetPayment(ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, gateway.PayU, got.Gateway)
		assert.Equal(t, gateway.Approved, got.Status)
	})
}

func TestHealthPublisher_Integration(t *testing.T) {
	ctx := context.Background()

	redisContainer, cleanup := SetupRedisContainer(t, ctx)
	defer cleanup()

	repo := CreateTestRepository(t, redisContainer.Addr)
	defer repo.Close(ctx)

	publisher := repo.NewHealthPublisher(time.Minute)
	snapshot := []gateway.Health{
		{Gateway: gateway.MercadoPago, Healthy: true, SuccessRate: 100},
		{Gateway: gateway.Decidir, Healthy: false, ConsecutiveFailures: 4, SuccessRate: 20},
	}

	require.NoError(t, publisher.PublishHealth(ctx, snapshot))

	got, err := publisher.GetPublishedHealth(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []gateway.ID{gateway.MercadoPago, gateway.Decidir}, []gateway.ID{got[0].Gateway, got[1].Gateway})

	ttl := GetKeyTTL(t, redisContainer.Addr, "gateway:health:decidir")
	assert.Greater(t, ttl, int64(0))
	assert.LessOrEqual(t, ttl, int64(60))
}
