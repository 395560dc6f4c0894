// Package registry tracks throttling observers and fans events out to them.
package registry

import (
	"errors"
	"log/slog"
	"sync"

	"thermal-agent/internal/model"
)

// Handle is an opaque comparable observer identity, typically a stable
// connection id. The empty handle is invalid.
type Handle string

// Observer receives throttling events. Implementations must not block for
// long: delivery happens on the notifier's goroutine.
type Observer interface {
	OnThrottlingEvent(ev model.ThrottlingEvent)
}

var (
	ErrInvalidHandle     = errors.New("invalid observer handle")
	ErrAlreadyRegistered = errors.New("observer already registered")
	ErrNotRegistered     = errors.New("observer not registered")
)

type entry struct {
	handle       Handle
	observer     Observer
	filterActive bool
	filterType   model.SensorType
}

// Registry is a thread-safe observer set. A single mutex guards the set;
// it is held for set mutation and scanning only, never across delivery to
// an observer, so an observer may unregister itself from inside its own
// callback without deadlocking.
type Registry struct {
	logger *slog.Logger

	mu      sync.Mutex
	entries []entry
}

func New(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds an observer under the given handle. At most one entry may
// exist per handle identity; a duplicate attempt is rejected, not merged.
func (r *Registry) Register(h Handle, obs Observer, filterActive bool, filterType model.SensorType) error {
	if h == "" || obs == nil {
		return ErrInvalidHandle
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.handle == h {
			return ErrAlreadyRegistered
		}
	}
	r.entries = append(r.entries, entry{
		handle:       h,
		observer:     obs,
		filterActive: filterActive,
		filterType:   filterType,
	})
	r.logger.Info("observer registered",
		"handle", string(h),
		"filter_active", filterActive,
		"filter_type", string(filterType),
		"observers", len(r.entries),
	)
	return nil
}

// Unregister removes the entry with the given handle. Removing a handle
// that is not registered fails and leaves the set untouched.
func (r *Registry) Unregister(h Handle) error {
	if h == "" {
		return ErrInvalidHandle
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.handle == h {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			r.logger.Info("observer unregistered", "handle", string(h), "observers", len(r.entries))
			return nil
		}
	}
	return ErrNotRegistered
}

// Notify delivers the event to every observer whose filter is inactive or
// matches the event's sensor type, in insertion order. The matching set is
// snapshotted under the lock and delivery happens outside it.
func (r *Registry) Notify(ev model.ThrottlingEvent) {
	r.mu.Lock()
	targets := make([]Observer, 0, len(r.entries))
	for _, e := range r.entries {
		if e.filterActive && e.filterType != ev.Temperature.Type {
			continue
		}
		targets = append(targets, e.observer)
	}
	r.mu.Unlock()

	for _, obs := range targets {
		obs.OnThrottlingEvent(ev)
	}
}

// Len returns the current number of registrations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
