package gateway

import (
	"context"
	"time"
)

/* Payment is the stored association between a payment and the gateway that served it
 * Gateway is empty until an attempt succeeds
 */
type Payment struct {
	ID         string
	Gateway    ID
	Status     Status
	Amount     float64
	Currency   string
	ExternalID string
	Metadata   map[string]string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Reader provides read operations for payment records
type Reader interface {
	/* Get returns *NotFoundError when the id is unknown */
	Get(ctx context.Context, id string) (Payment, error)
}

// Writer provides write operations for payment records
type Writer interface {
	Create(ctx context.Context, p Payment) error
	/* Update replaces the mutable fields of an existing record
	 * Returns *NotFoundError when the id is unknown
	 */
	Update(ctx context.Context, p Payment) error
}

type Repository interface {
	Reader
	Writer
	Close(ctx context.Context) error
}
