package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
)

/* In-memory implementation of gateway.Repository
 * Used for local runs and tests, records do not survive a restart
 */
type Repository struct {
	mu       sync.RWMutex
	payments map[string]gateway.Payment
}

// NewRepository creates an empty in-memory repository
func NewRepository() *Repository {
	return &Repository{
		payments: make(map[string]gateway.Payment),
	}
}

// Get returns a copy of the stored payment
func (r *Repository) Get(ctx context.Context, id string) (gateway.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return gateway.Payment{}, &gateway.NotFoundError{PaymentID: id}
	}
	return clone(p), nil
}

// Create stores a new payment
func (r *Repository) Create(ctx context.Context, p gateway.Payment) error {
	if p.ID == "" {
		return fmt.Errorf("payment id cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.payments[p.ID]; exists {
		return fmt.Errorf("payment already exists: %s", p.ID)
	}
	r.payments[p.ID] = clone(p)
	return nil
}

// Update replaces an existing payment
func (r *Repository) Update(ctx context.Context, p gateway.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.payments[p.ID]; !exists {
		return &gateway.NotFoundError{PaymentID: p.ID}
	}
	r.payments[p.ID] = clone(p)
	return nil
}

// Len returns the number of stored payments
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.payments)
}

func (r *Repository) Close(ctx context.Context) error {
	return nil
}

func clone(p gateway.Payment) gateway.Payment {
	if p.Metadata != nil {
		md := make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			md[k] = v
		}
		p.Metadata = md
	}
	return p
}
