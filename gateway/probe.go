package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const defaultProbeTimeout = 10 * time.Second

// HealthPublisher receives the health snapshot after every probe round
type HealthPublisher interface {
	PublishHealth(ctx context.Context, snapshot []Health) error
}

/* Probe pings every adapter that supports it, concurrently
 * Each outcome is recorded like a real attempt so an unhealthy gateway
 * recovers as soon as a probe succeeds
 */
func (r *Router) Probe(ctx context.Context) {
	timeout := r.attemptTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	var wg sync.WaitGroup
	for _, id := range r.order {
		pinger, ok := r.gateways[id].Adapter.(Pinger)
		if !ok {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			err := ping(pctx, pinger)
			r.tracker.RecordOutcome(id, err == nil, time.Since(start))
			if err != nil {
				r.logger.Warn().Str("gateway", id.String()).Err(err).Msg("health probe failed")
			}
		}()
	}
	wg.Wait()

	if r.publisher != nil {
		if err := r.publisher.PublishHealth(ctx, r.tracker.HealthSnapshot()); err != nil {
			r.logger.Error().Err(err).Msg("publishing gateway health")
		}
	}
}

func ping(ctx context.Context, p Pinger) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("probe panic: %v", rec)
		}
	}()
	return p.Ping(ctx)
}

// RunProbes probes every interval until ctx is cancelled
func (r *Router) RunProbes(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", interval).Msg("health probes started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("health probes stopped")
			return nil
		case <-ticker.C:
			r.Probe(ctx)
		}
	}
}
