// Package proxy provides the upgrade boundary for the registry: a stable
// handle whose logic can be swapped while its storage is preserved.
//
// The handle plays the role of an upgradeable proxy's stable address. It
// exclusively owns the registry State; implementations are constructed
// over that State by a factory, and Upgrade replaces the implementation
// without touching storage. Initialize runs exactly once per handle
// lifetime regardless of how many upgrades follow.
package proxy

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defistate/oracle-registry-go/registry"
)

// Factory builds a registry implementation over existing storage.
type Factory func(state *registry.State) (*registry.Registry, error)

// Handle is the stable access point for a registry deployment.
type Handle struct {
	mu    sync.RWMutex
	state *registry.State
	impl  *registry.Registry
}

// New creates a Handle with fresh storage and an initial implementation.
func New(factory Factory) (*Handle, error) {
	if factory == nil {
		return nil, errors.New("proxy: factory is required")
	}
	state := registry.NewState()
	impl, err := factory(state)
	if err != nil {
		return nil, err
	}
	if impl == nil {
		return nil, errors.New("proxy: factory returned nil implementation")
	}
	return &Handle{state: state, impl: impl}, nil
}

// Initialize sets the initial owner. Exactly once per Handle lifetime;
// repeat calls fail with registry.ErrAlreadyInitialized, including after
// an upgrade.
func (h *Handle) Initialize(owner common.Address) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.impl.Initialize(owner)
}

// Upgrade swaps the implementation, preserving storage. The new
// implementation observes exactly the records the old one left behind.
func (h *Handle) Upgrade(factory Factory) error {
	if factory == nil {
		return errors.New("proxy: factory is required")
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	impl, err := factory(h.state)
	if err != nil {
		return err
	}
	if impl == nil {
		return errors.New("proxy: factory returned nil implementation")
	}
	h.impl = impl
	return nil
}

// Version reports the current implementation's semantic version string,
// used to confirm an upgrade took effect.
func (h *Handle) Version() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.impl.Version()
}

// Registry returns the current implementation. Callers should not retain
// the result across an Upgrade.
func (h *Handle) Registry() *registry.Registry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.impl
}
