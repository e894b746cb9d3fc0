package policy

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrDenied is wrapped into every evaluation failure; the wrapping
	// error names the failing policy.
	ErrDenied = errors.New("policy denied")
	// ErrUnknownPolicy is returned when an operation references a policy
	// name that was never registered. Referencing an unknown policy is a
	// configuration bug and always denies.
	ErrUnknownPolicy = errors.New("unknown policy")
	// ErrFrozen is returned by Register after Freeze.
	ErrFrozen = errors.New("registry frozen")
	// ErrDuplicate is returned when a policy name is registered twice.
	ErrDuplicate = errors.New("policy already registered")
)

// Registry maps policy names to predicates. Policies are registered during
// initialization and the registry is frozen before first evaluation.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]Policy
	frozen   bool
}

// NewRegistry creates a [Registry] pre-loaded with [BuiltinPolicies].
func NewRegistry() *Registry {
	r := &Registry{
		policies: make(map[string]Policy),
	}
	for _, p := range BuiltinPolicies() {
		r.policies[p.Name] = p
	}
	return r
}

// Register adds a named policy. Must be called before [Registry.Freeze].
func (r *Registry) Register(p Policy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrFrozen
	}
	if p.Name == "" {
		return errors.New("policy name cannot be empty")
	}
	if p.Allow == nil {
		return errors.New("policy predicate cannot be nil")
	}
	if _, exists := r.policies[p.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, p.Name)
	}

	r.policies[p.Name] = p
	return nil
}

// Freeze prevents further registrations. Must be called before the
// registry is used for evaluation.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Get returns the named policy, or false if not registered.
func (r *Registry) Get(name string) (Policy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[name]
	return p, ok
}

// Count returns the number of registered policies.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.policies)
}

// Evaluate checks claims against every named policy, composing by
// conjunction. The first failure is returned wrapping [ErrDenied] (or
// [ErrUnknownPolicy] for a name that was never registered).
func (r *Registry) Evaluate(claims Claims, names ...string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range names {
		p, ok := r.policies[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPolicy, name)
		}
		if !p.Allow(claims) {
			return fmt.Errorf("%w: %s", ErrDenied, name)
		}
	}
	return nil
}
