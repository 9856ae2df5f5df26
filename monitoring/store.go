package monitoring

import (
	"errors"
	"sync"
	"time"
)

// ErrAlertNotFound is returned when resolving an unknown alert
var ErrAlertNotFound = errors.New("alert not found")

/* AlertStore keeps raised alerts in creation order
 * Callers only get copies, the resolve transition is the only mutation
 */
type AlertStore struct {
	mu     sync.RWMutex
	alerts []*Alert
	byID   map[string]*Alert
}

func NewAlertStore() *AlertStore {
	return &AlertStore{byID: make(map[string]*Alert)}
}

// Add stores an alert. Identical alerts are kept as separate records.
func (s *AlertStore) Add(a Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := a
	s.alerts = append(s.alerts, &stored)
	s.byID[stored.ID] = &stored
}

// Active returns unresolved alerts, oldest first
func (s *AlertStore) Active() []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Alert
	for _, a := range s.alerts {
		if !a.Resolved {
			out = append(out, copyAlert(a))
		}
	}
	return out
}

// All returns every retained alert, oldest first
func (s *AlertStore) All() []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, copyAlert(a))
	}
	return out
}

func (s *AlertStore) Get(id string) (Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return Alert{}, ErrAlertNotFound
	}
	return copyAlert(a), nil
}

/* Resolve marks an alert resolved at the given time
 * Resolving an already resolved alert keeps its original ResolvedAt
 * The returned bool reports whether this call changed the alert
 */
func (s *AlertStore) Resolve(id string, at time.Time) (Alert, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return Alert{}, false, ErrAlertNotFound
	}
	if a.Resolved {
		return copyAlert(a), false, nil
	}
	resolvedAt := at
	a.Resolved = true
	a.ResolvedAt = &resolvedAt
	return copyAlert(a), true, nil
}

// Prune drops resolved alerts older than retention and returns how many went
func (s *AlertStore) Prune(now time.Time, retention time.Duration) int {
	cutoff := now.Add(-retention)

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.alerts[:0]
	removed := 0
	for _, a := range s.alerts {
		if a.Resolved && a.ResolvedAt != nil && a.ResolvedAt.Before(cutoff) {
			delete(s.byID, a.ID)
			removed++
			continue
		}
		kept = append(kept, a)
	}
	for i := len(kept); i < len(s.alerts); i++ {
		s.alerts[i] = nil
	}
	s.alerts = kept
	return removed
}

// Len returns the number of retained alerts
func (s *AlertStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

func copyAlert(a *Alert) Alert {
	out := *a
	if a.Details != nil {
		out.Details = make(map[string]any, len(a.Details))
		for k, v := range a.Details {
			out.Details[k] = v
		}
	}
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		out.ResolvedAt = &t
	}
	return out
}
