// Package events implements the position-update fan-out: a local
// subscriber registry for in-process observers and a Redis publisher for
// cross-process consumers such as the live map.
package events

import (
	"sync"

	"github.com/Surajgore007/oceansaksham-location/logger"
	"github.com/Surajgore007/oceansaksham-location/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Callback receives accepted position updates.
type Callback func(*types.Position)

// Registry is an ordered set of position-update subscribers. Callbacks
// are invoked synchronously in registration order; a panicking callback
// is isolated so it cannot prevent later callbacks from being notified.
type Registry struct {
	mu          sync.Mutex
	log         *zap.SugaredLogger
	subscribers map[string]Callback
	order       []string
}

// NewRegistry creates an empty subscriber registry.
func NewRegistry() *Registry {
	return &Registry{
		log:         logger.GetLogger().Named("event_registry"),
		subscribers: make(map[string]Callback),
	}
}

// Subscribe registers cb and returns an idempotent unsubscribe function.
// Multiple independent subscribers do not interfere with each other's
// lifecycle.
func (r *Registry) Subscribe(cb Callback) func() {
	id := uuid.New().String()

	r.mu.Lock()
	r.subscribers[id] = cb
	r.order = append(r.order, id)
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.subscribers, id)
			for i, sid := range r.order {
				if sid == id {
					r.order = append(r.order[:i], r.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Notify delivers pos to all subscribers in registration order.
func (r *Registry) Notify(pos *types.Position) {
	r.mu.Lock()
	callbacks := make([]Callback, 0, len(r.order))
	for _, id := range r.order {
		if cb, ok := r.subscribers[id]; ok {
			callbacks = append(callbacks, cb)
		}
	}
	r.mu.Unlock()

	for _, cb := range callbacks {
		r.invoke(cb, pos)
	}
}

// invoke isolates a single callback so one bad observer does not break
// the others.
func (r *Registry) invoke(cb Callback, pos *types.Position) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Errorw("Position update subscriber panicked", "panic", rec)
		}
	}()
	cb(pos)
}

// Len returns the number of active subscribers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subscribers)
}

// Clear drops all subscribers. Used on service teardown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = make(map[string]Callback)
	r.order = nil
}
