package zkvm

import "sync"

// GuestFunc is a native guest program. It reads its input and emits its
// journal through the Env, and signals its exit by returning nil (success),
// an Exit/Pause control value, or any other error (fault).
type GuestFunc func(env *Env) error

// GuestRegistry maps guest names to their native implementations. Images
// bind a name; execution resolves the name here.
type GuestRegistry struct {
	mu     sync.RWMutex
	guests map[string]GuestFunc
}

// DefaultRegistry is the process-wide registry the built-in guests register
// into and executors resolve against unless configured otherwise.
var DefaultRegistry = NewGuestRegistry()

// NewGuestRegistry creates an empty GuestRegistry.
func NewGuestRegistry() *GuestRegistry {
	return &GuestRegistry{guests: make(map[string]GuestFunc)}
}

// Register adds a guest under the given name. Registering a name twice is
// an error.
func (r *GuestRegistry) Register(name string, fn GuestFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.guests[name]; exists {
		return ErrGuestRegistered
	}
	r.guests[name] = fn
	return nil
}

// Lookup resolves a guest by name.
func (r *GuestRegistry) Lookup(name string) (GuestFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.guests[name]
	if !ok {
		return nil, ErrUnknownGuest
	}
	return fn, nil
}

// Names returns all registered guest names.
func (r *GuestRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.guests))
	for name := range r.guests {
		names = append(names, name)
	}
	return names
}

// RegisterGuest adds a guest to the default registry.
func RegisterGuest(name string, fn GuestFunc) error {
	return DefaultRegistry.Register(name, fn)
}
