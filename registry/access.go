package registry

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Initialize sets the initial owner. It runs exactly once per storage
// lifetime: a second call, including after a logic upgrade over the same
// State, fails with ErrAlreadyInitialized.
func (r *Registry) Initialize(owner common.Address) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := time.Now()
	defer func() { r.metrics.observe("initialize", start, err) }()

	if r.state.initialized {
		return ErrAlreadyInitialized
	}
	if owner == (common.Address{}) {
		return fmt.Errorf("owner: %w", ErrInvalidAddress)
	}

	r.state.initialized = true
	r.state.owner = owner

	r.logger.Info("registry initialized", "owner", owner.Hex(), "version", r.version)
	r.sink.Emit(OwnershipTransferred{PreviousOwner: common.Address{}, NewOwner: owner})
	return nil
}

// TransferOwnership stages a two-step ownership transfer. Owner only.
// The transfer only completes when the new owner calls AcceptOwnership,
// guarding against handing the registry to a mistyped address.
func (r *Registry) TransferOwnership(caller, newOwner common.Address) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := time.Now()
	defer func() { r.metrics.observe("transfer_ownership", start, err) }()

	if err = r.requireOwner(caller); err != nil {
		return err
	}
	if newOwner == (common.Address{}) {
		return fmt.Errorf("new owner: %w", ErrInvalidAddress)
	}

	r.state.pendingOwner = newOwner

	r.logger.Info("ownership transfer started",
		"owner", r.state.owner.Hex(), "pending_owner", newOwner.Hex())
	r.sink.Emit(OwnershipTransferStarted{Owner: r.state.owner, PendingOwner: newOwner})
	return nil
}

// AcceptOwnership completes a staged transfer. Only the pending owner may
// call it.
func (r *Registry) AcceptOwnership(caller common.Address) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := time.Now()
	defer func() { r.metrics.observe("accept_ownership", start, err) }()

	if r.state.pendingOwner == (common.Address{}) || caller != r.state.pendingOwner {
		return ErrNotPendingOwner
	}

	previous := r.state.owner
	r.state.owner = caller
	r.state.pendingOwner = common.Address{}

	r.logger.Info("ownership transferred",
		"previous_owner", previous.Hex(), "new_owner", caller.Hex())
	r.sink.Emit(OwnershipTransferred{PreviousOwner: previous, NewOwner: caller})
	return nil
}

// Owner returns the current owner.
func (r *Registry) Owner() common.Address {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.owner
}

// PendingOwner returns the staged owner of an in-flight transfer, or the
// zero address when none is staged.
func (r *Registry) PendingOwner() common.Address {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.pendingOwner
}

// requireOwner is the access-control gate wrapping every owner-only entry
// point. Callers hold r.mu.
func (r *Registry) requireOwner(caller common.Address) error {
	if !r.state.initialized {
		return ErrNotInitialized
	}
	if caller != r.state.owner {
		return fmt.Errorf("caller %s: %w", caller.Hex(), ErrNotOwner)
	}
	return nil
}
