package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
)

/* PostgreSQL implementation of gateway.Repository
 * Metadata is stored as a JSONB document next to the payment columns
 */

type Repository struct {
	DB *sql.DB
}

// ErrDuplicate is returned by Create when the payment id is taken
var ErrDuplicate = errors.New("payment already exists")

const uniqueViolation = "23505"

// NewRepository creates a PostgreSQL repository with the default pool (25, 5, 5 min)
func NewRepository(connectionString string) (*Repository, error) {
	return NewRepositoryWithPoolConfig(connectionString, 25, 5, 5)
}

// NewRepositoryWithPoolConfig creates a PostgreSQL repository with a custom pool
// maxOpenConns: maximum open connections (0 = unlimited)
// maxIdleConns: maximum idle connections kept in the pool
// maxLifeMinutes: maximum time a connection may be reused
func NewRepositoryWithPoolConfig(connectionString string, maxOpenConns, maxIdleConns, maxLifeMinutes int) (*Repository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
	if maxLifeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(maxLifeMinutes) * time.Minute)
	}

	return &Repository{
		DB: db,
	}, nil
}

// Create inserts a new payment record
func (r *Repository) Create(ctx context.Context, p gateway.Payment) error {
	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	query := `
		INSERT INTO payments (id, gateway, status, amount, currency, external_id, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.DB.ExecContext(ctx, query,
		p.ID, string(p.Gateway), p.Status.String(), p.Amount, p.Currency, p.ExternalID, metadata, p.CreatedAt, p.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, p.ID)
	}
	if err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}
	return nil
}

// Get fetches a payment by id
func (r *Repository) Get(ctx context.Context, id string) (gateway.Payment, error) {
	query := `
		SELECT id, gateway, status, amount, currency, external_id, metadata, created_at, updated_at
		FROM payments WHERE id = $1
	`

	var (
		p        gateway.Payment
		gw       string
		status   string
		metadata []byte
	)
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&gw,
		&status,
		&p.Amount,
		&p.Currency,
		&p.ExternalID,
		&metadata,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return gateway.Payment{}, &gateway.NotFoundError{PaymentID: id}
	}
	if err != nil {
		return gateway.Payment{}, fmt.Errorf("selecting payment: %w", err)
	}

	p.Gateway = gateway.ID(gw)
	p.Status = gateway.NewStatus(status)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
			return gateway.Payment{}, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}
	return p, nil
}

// Update replaces the mutable fields of an existing payment
func (r *Repository) Update(ctx context.Context, p gateway.Payment) error {
	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	query := `
		UPDATE payments
		SET gateway = $1, status = $2, amount = $3, external_id = $4, metadata = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := r.DB.ExecContext(ctx, query,
		string(p.Gateway), p.Status.String(), p.Amount, p.ExternalID, metadata, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating payment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return &gateway.NotFoundError{PaymentID: p.ID}
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close(ctx context.Context) error {
	if r.DB != nil {
		return r.DB.Close()
	}
	return nil
}

// CreateTable creates the payments table when missing
func (r *Repository) CreateTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			gateway TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			amount NUMERIC(14, 2) NOT NULL,
			currency TEXT NOT NULL,
			external_id TEXT NOT NULL DEFAULT '',
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`

	_, err := r.DB.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("creating table: %w", err)
	}
	return nil
}

// DropTable removes the payments table (useful for tests)
func (r *Repository) DropTable(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, "DROP TABLE IF EXISTS payments CASCADE")
	if err != nil {
		return fmt.Errorf("dropping table: %w", err)
	}
	return nil
}
