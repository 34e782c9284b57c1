package orchestrators

import "sync"

// FlightRegistry is the double-submit guard: one entry per (client, action)
// pair while a backend request is pending. It only prevents re-entry; it
// does not cancel or time out the pending request.
type FlightRegistry struct {
	mu     sync.Mutex
	active map[string]bool
}

// NewFlightRegistry creates an empty registry.
func NewFlightRegistry() *FlightRegistry {
	return &FlightRegistry{active: make(map[string]bool)}
}

// Begin claims the key. Returns false if a flight for the key is already
// pending.
func (f *FlightRegistry) Begin(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active[key] {
		return false
	}
	f.active[key] = true
	return true
}

// End releases the key. Must be called on every exit path, success or
// failure, so the control is never left permanently disabled.
func (f *FlightRegistry) End(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.active, key)
}
