// Package live fans per-tick mission updates out to observers.
//
// The registry holds, per mission, the set of subscribed observers.
// Broadcast copies the set under a read lock and delivers without holding
// it; a failing or panicking observer is logged, counted and skipped.
package live

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/example/orbita/internal/metrics"
	"github.com/example/orbita/internal/ports/secondary"
)

// Subscriber receives live updates for one mission.
type Subscriber interface {
	Deliver(ctx context.Context, update secondary.LiveUpdate) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, update secondary.LiveUpdate) error

func (f SubscriberFunc) Deliver(ctx context.Context, update secondary.LiveUpdate) error {
	return f(ctx, update)
}

// Handle identifies one subscription.
type Handle struct {
	MissionID string
	ID        uuid.UUID
}

// DeliveryError reports a failed delivery to one subscriber.
type DeliveryError struct {
	MissionID    string
	SubscriberID uuid.UUID
	Err          error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver update for %s to %s: %v", e.MissionID, e.SubscriberID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Registry is the Subscription Registry. The zero value is not usable;
// use NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	subs    map[string]map[uuid.UUID]Subscriber
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRegistry creates an empty registry. m may be nil.
func NewRegistry(logger *slog.Logger, m *metrics.Metrics) *Registry {
	return &Registry{
		subs:    make(map[string]map[uuid.UUID]Subscriber),
		logger:  logger,
		metrics: m,
	}
}

// Subscribe adds sub to missionID's observer set.
func (r *Registry) Subscribe(missionID string, sub Subscriber) Handle {
	h := Handle{MissionID: missionID, ID: uuid.New()}

	r.mu.Lock()
	set, ok := r.subs[missionID]
	if !ok {
		set = make(map[uuid.UUID]Subscriber)
		r.subs[missionID] = set
	}
	set[h.ID] = sub
	r.mu.Unlock()

	r.metrics.SubscriberAdded()
	r.logger.Debug("observer subscribed", "mission_id", missionID, "subscriber_id", h.ID)
	return h
}

// Unsubscribe removes the subscription. Removing the last observer of a
// mission removes the mission entry. Unknown handles are ignored.
func (r *Registry) Unsubscribe(h Handle) {
	r.mu.Lock()
	set, ok := r.subs[h.MissionID]
	if ok {
		if _, present := set[h.ID]; !present {
			ok = false
		} else {
			delete(set, h.ID)
			if len(set) == 0 {
				delete(r.subs, h.MissionID)
			}
		}
	}
	r.mu.Unlock()

	if ok {
		r.metrics.SubscriberRemoved()
		r.logger.Debug("observer unsubscribed", "mission_id", h.MissionID, "subscriber_id", h.ID)
	}
}

// Count returns the number of observers of missionID.
func (r *Registry) Count(missionID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[missionID])
}

// Missions returns the number of missions with at least one observer.
func (r *Registry) Missions() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Broadcast delivers update to every current observer of missionID.
// It never fails; with no observers it does nothing.
func (r *Registry) Broadcast(ctx context.Context, missionID string, update secondary.LiveUpdate) {
	type target struct {
		id  uuid.UUID
		sub Subscriber
	}

	r.mu.RLock()
	set := r.subs[missionID]
	targets := make([]target, 0, len(set))
	for id, sub := range set {
		targets = append(targets, target{id: id, sub: sub})
	}
	r.mu.RUnlock()

	for _, t := range targets {
		if err := r.deliver(ctx, t.sub, update); err != nil {
			derr := &DeliveryError{MissionID: missionID, SubscriberID: t.id, Err: err}
			r.metrics.BroadcastFailed()
			r.logger.Warn("live update dropped", "mission_id", missionID, "subscriber_id", t.id, "error", derr)
		}
	}
}

func (r *Registry) deliver(ctx context.Context, sub Subscriber, update secondary.LiveUpdate) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("subscriber panicked: %v", p)
		}
	}()
	return sub.Deliver(ctx, update)
}

var _ secondary.Broadcaster = (*Registry)(nil)
