package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marcelsud/payment-gateway-orchestrator/monitoring"
	"github.com/marcelsud/payment-gateway-orchestrator/webhook/payload"
	"github.com/marcelsud/payment-gateway-orchestrator/webhook/signature"
)

const (
	DefaultQueueSize      = 256
	DefaultMaxRetries     = 5
	DefaultInitialBackoff = 500 * time.Millisecond
	DefaultMaxBackoff     = 30 * time.Second
	DefaultTimeout        = 10 * time.Second

	// NoRetries disables retries, a zero MaxRetries means DefaultMaxRetries
	NoRetries = -1
)

// Source is what the notifier subscribes to, the monitoring engine in practice
type Source interface {
	OnAlert(fn func(monitoring.Alert))
	OnHealthStatusChange(fn func(monitoring.HealthStatus))
}

type Config struct {
	URL string
	// Secret signs every message, unsigned messages are sent when zero
	Secret         signature.Secret
	QueueSize      int
	// MaxRetries defaults to DefaultMaxRetries when zero, use NoRetries for a single attempt
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Timeout        time.Duration
	Client         *http.Client
	Now            func() time.Time
	Logger         zerolog.Logger
}

// Stats counts notifications by outcome since start
type Stats struct {
	Queued    int64 `json:"queued"`
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
}

/* Notifier delivers alerts and health changes as Standard Webhooks
 * Enqueueing never blocks: with a full queue the notification is dropped
 */
type Notifier struct {
	cfg    Config
	client *http.Client
	queue  chan Notification
	logger zerolog.Logger
	newID  func() string

	mu    sync.Mutex
	stats Stats
}

func New(cfg Config) (*Notifier, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("notification url is required")
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	switch {
	case cfg.MaxRetries == 0:
		cfg.MaxRetries = DefaultMaxRetries
	case cfg.MaxRetries < 0:
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Notifier{
		cfg:    cfg,
		client: client,
		queue:  make(chan Notification, cfg.QueueSize),
		logger: cfg.Logger,
		newID:  func() string { return "msg_" + uuid.New().String() },
	}, nil
}

// Subscribe wires the notifier to the alert and health hooks of src
func (n *Notifier) Subscribe(src Source) {
	src.OnAlert(func(a monitoring.Alert) {
		n.Enqueue(payload.TypeAlertRaised, a)
	})
	src.OnHealthStatusChange(func(s monitoring.HealthStatus) {
		n.Enqueue(payload.TypeHealthChanged, healthChange{
			Overall:           s.Overall,
			SuccessRate:       s.SuccessRate,
			ResponseTimeMs:    s.ResponseTimeMs,
			ErrorRate:         s.ErrorRate,
			TotalTransactions: s.TotalTransactions,
			ActiveAlerts:      len(s.Alerts),
			LastUpdated:       s.LastUpdated,
		})
	})
}

type healthChange struct {
	Overall           monitoring.Classification `json:"overall"`
	SuccessRate       float64                   `json:"success_rate"`
	ResponseTimeMs    float64                   `json:"response_time_ms"`
	ErrorRate         float64                   `json:"error_rate"`
	TotalTransactions int                       `json:"total_transactions"`
	ActiveAlerts      int                       `json:"active_alerts"`
	LastUpdated       time.Time                 `json:"last_updated"`
}

// Enqueue builds a notification and queues it, returning false when it was dropped
func (n *Notifier) Enqueue(eventType string, data any) bool {
	now := n.cfg.Now()
	env, err := payload.New(eventType, now, data)
	if err != nil {
		n.logger.Error().Err(err).Str("type", eventType).Msg("building notification")
		return false
	}
	body, err := env.Bytes()
	if err != nil {
		n.logger.Error().Err(err).Str("type", eventType).Msg("encoding notification")
		return false
	}
	notif := Notification{
		ID:         n.newID(),
		Type:       eventType,
		Payload:    body,
		Status:     Pending,
		MaxRetries: n.cfg.MaxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	select {
	case n.queue <- notif:
		n.count(func(s *Stats) { s.Queued++ })
		return true
	default:
		n.count(func(s *Stats) { s.Dropped++ })
		n.logger.Warn().Str("notification_id", notif.ID).Str("type", eventType).Msg("notification queue full, dropping")
		return false
	}
}

// Run delivers queued notifications one at a time until ctx is cancelled
func (n *Notifier) Run(ctx context.Context) error {
	n.logger.Info().Str("url", n.cfg.URL).Msg("notifier started")
	for {
		select {
		case <-ctx.Done():
			n.logger.Info().Int("pending", len(n.queue)).Msg("notifier stopped")
			return nil
		case notif := <-n.queue:
			n.Deliver(ctx, &notif)
		}
	}
}

/* Deliver sends one notification, retrying with exponential backoff
 * Receiver rejections (4xx other than 408 and 429) are not retried
 */
func (n *Notifier) Deliver(ctx context.Context, notif *Notification) {
	n.transition(notif, Delivering, nil)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = n.cfg.InitialBackoff
	policy.MaxInterval = n.cfg.MaxBackoff
	policy.MaxElapsedTime = 0

	err := backoff.RetryNotify(
		func() error { return n.send(ctx, notif) },
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(notif.MaxRetries)), ctx),
		func(err error, wait time.Duration) {
			notif.RetryCount++
			n.transition(notif, Retrying, err)
			n.logger.Debug().Str("notification_id", notif.ID).Dur("wait", wait).Err(err).Msg("retrying notification")
		},
	)
	if err != nil {
		n.transition(notif, Failed, err)
		n.count(func(s *Stats) { s.Failed++ })
		n.logger.Error().Str("notification_id", notif.ID).Str("type", notif.Type).Int("retries", notif.RetryCount).Err(err).Msg("notification failed")
		return
	}
	n.transition(notif, Delivered, nil)
	n.count(func(s *Stats) { s.Delivered++ })
	n.logger.Info().Str("notification_id", notif.ID).Str("type", notif.Type).Msg("notification delivered")
}

func (n *Notifier) send(ctx context.Context, notif *Notification) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewReader(notif.Payload))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if n.cfg.Secret.IsZero() {
		req.Header.Set(signature.HeaderID, notif.ID)
		req.Header.Set(signature.HeaderTimestamp, fmt.Sprint(n.cfg.Now().Unix()))
	} else if err := signature.SetHeaders(req.Header, n.cfg.Secret, notif.ID, n.cfg.Now(), notif.Payload); err != nil {
		return backoff.Permanent(fmt.Errorf("signing notification: %w", err))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting notification: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500 &&
		resp.StatusCode != http.StatusRequestTimeout && resp.StatusCode != http.StatusTooManyRequests:
		return backoff.Permanent(fmt.Errorf("receiver rejected notification: %s", resp.Status))
	default:
		return fmt.Errorf("receiver answered %s", resp.Status)
	}
}

func (n *Notifier) transition(notif *Notification, status Status, err error) {
	notif.Status = status
	notif.UpdatedAt = n.cfg.Now()
	if err != nil {
		notif.LastError = err.Error()
	}
}

func (n *Notifier) count(fn func(s *Stats)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fn(&n.stats)
}

// Stats returns the delivery counters
func (n *Notifier) Stats() Stats {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stats
}

// Pending returns the number of queued notifications
func (n *Notifier) Pending() int {
	return len(n.queue)
}
