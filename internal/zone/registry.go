package zone

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/stlalpha/my-grid/internal/logging"
)

// EventQueueCapacity bounds the MPSC event queue; once full, new events
// are tail-dropped with a logged warning (spec.md §5).
const EventQueueCapacity = 256

// Registry is the flat, name-indexed zone registry the application owns
// (spec.md §9 "avoid bidirectional references"). It also owns the shared
// event queue every handler goroutine posts to.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]*Zone
	order   []*Zone // creation order == z-order, newest last
	counter int

	Events chan Event

	// deleted remembers names removed so late-arriving events from a
	// handler goroutine that hasn't noticed Stop() yet are discarded
	// rather than reanimating state (spec.md §5 "zone delete takes effect
	// before any subsequent event from that zone is processed").
	deleted map[string]bool
}

// NewRegistry creates an empty zone registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]*Zone),
		Events:  make(chan Event, EventQueueCapacity),
		deleted: make(map[string]bool),
	}
}

// Get returns the zone named name, case-insensitively.
func (r *Registry) Get(name string) (*Zone, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	z, ok := r.byName[strings.ToLower(name)]
	return z, ok
}

// List returns all zones in z-order (creation order, newest last).
func (r *Registry) List() []*Zone {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Zone, len(r.order))
	copy(out, r.order)
	return out
}

// Create registers a new zone. Overlap with existing zones is permitted
// (spec.md §9 Open Questions: later-created zone wins pixel-by-pixel);
// names must be unique case-insensitively.
func (r *Registry) Create(z *Zone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(z.Name)
	if _, exists := r.byName[key]; exists {
		return fmt.Errorf("zone %q already exists", z.Name)
	}
	r.counter++
	z.createdAt = r.counter
	if z.ID == "" {
		z.ID = uuid.New().String()
	}
	r.byName[key] = z
	r.order = append(r.order, z)
	delete(r.deleted, key)
	return nil
}

// Delete transitions the zone to stopped, releases its handler's
// resources, and removes it from the registry. Handler.Stop() is
// responsible for the resource-release ordering described in spec.md §5.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	z, ok := r.byName[strings.ToLower(name)]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("zone %q not found", name)
	}
	key := strings.ToLower(name)
	delete(r.byName, key)
	for i, zz := range r.order {
		if zz == z {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.deleted[key] = true
	r.mu.Unlock()

	logging.Debug("zone %q (id=%s) deleted", z.Name, z.ID)
	z.SetState(StateStopped, "")
	if z.handler != nil {
		return z.handler.Stop()
	}
	return nil
}

// IsDeleted reports whether name was removed from the registry, used by
// Apply to discard stale in-flight events.
func (r *Registry) IsDeleted(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.deleted[strings.ToLower(name)]
}

// Post enqueues an event for the application loop to apply. Tail-drops
// with a logged warning when the queue is full, never blocking a handler
// goroutine indefinitely.
func (r *Registry) Post(ev Event) {
	select {
	case r.Events <- ev:
	default:
		log.Printf("WARN: zone event queue full, dropping event for zone %q", ev.ZoneName)
	}
}

// Drain pulls up to max pending events (0 == unlimited) and applies them
// via apply, skipping events whose zone has since been deleted.
func (r *Registry) Drain(max int, apply func(z *Zone, ev Event)) int {
	applied := 0
	for max <= 0 || applied < max {
		select {
		case ev := <-r.Events:
			key := strings.ToLower(ev.ZoneName)
			r.mu.RLock()
			z, ok := r.byName[key]
			r.mu.RUnlock()
			if !ok {
				continue
			}
			apply(z, ev)
			applied++
		default:
			return applied
		}
	}
	return applied
}

// ZoneAt returns the topmost (last-created, highest z-order) zone whose
// rectangle contains (x,y), or nil.
func (r *Registry) ZoneAt(x, y int64) *Zone {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.order) - 1; i >= 0; i-- {
		z := r.order[i]
		if x >= z.X && x < z.X+int64(z.W) && y >= z.Y && y < z.Y+int64(z.H) {
			return z
		}
	}
	return nil
}
