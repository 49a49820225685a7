package registry

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for every failure kind the registry can surface.
// Off-chain tooling branches on these with errors.Is; none are ever
// swallowed internally.
var (
	// ErrInvalidAddress is returned when a supplied address is zero or does
	// not conform to the expected capability shape.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidFeed is returned when a candidate feed fails its liveness probe.
	ErrInvalidFeed = errors.New("invalid feed")

	// ErrInvalidToken is returned when a candidate token fails its liveness probe.
	ErrInvalidToken = errors.New("invalid token")

	// ErrDeployerNotFound is returned when no deployer is bound for the
	// referenced quote token or deployer address.
	ErrDeployerNotFound = errors.New("deployer not found")

	// ErrDeployerAlreadyExists is returned when the deployer already has a
	// quote-token binding.
	ErrDeployerAlreadyExists = errors.New("deployer already exists")

	// ErrQuoteTokenAlreadyExists is returned when the quote token already has
	// a deployer binding.
	ErrQuoteTokenAlreadyExists = errors.New("quote token already exists")

	// ErrQuoteTokenMismatch is returned when the candidate deployer's
	// self-reported quote token differs from the one being bound.
	ErrQuoteTokenMismatch = errors.New("quote token mismatch")

	// ErrFeedAlreadyExists is returned when a (deployer, feed) pair is
	// already approved.
	ErrFeedAlreadyExists = errors.New("feed already exists")

	// ErrFeedDoesNotExist is returned when a pending index is out of range
	// or references a tombstoned slot.
	ErrFeedDoesNotExist = errors.New("feed does not exist")

	// ErrFeedNotApproved is returned when an operation requires an approved
	// (deployer, feed) record and none exists.
	ErrFeedNotApproved = errors.New("feed not approved")

	// ErrTokenAlreadyAssociated is returned when a base token is already in
	// the feed's associated set.
	ErrTokenAlreadyAssociated = errors.New("token already associated")

	// ErrTokenListTooLong is returned when a caller-supplied token list
	// exceeds the configured work ceiling.
	ErrTokenListTooLong = errors.New("token list too long")

	// ErrTokenLimitReached is returned when a feed's associated set is at
	// its configured capacity.
	ErrTokenLimitReached = errors.New("token limit reached")

	// ErrCallToDeployerFailed is the kind matched by errors.Is for any
	// relay failure; the concrete error carries the downstream message.
	ErrCallToDeployerFailed = errors.New("call to deployer failed")

	// ErrNotOwner is returned when a gated operation is attempted by a
	// caller other than the current owner.
	ErrNotOwner = errors.New("caller is not the owner")

	// ErrNotPendingOwner is returned when AcceptOwnership is attempted by a
	// caller other than the staged pending owner.
	ErrNotPendingOwner = errors.New("caller is not the pending owner")

	// ErrAlreadyInitialized is returned on a second Initialize for the same
	// storage lifetime.
	ErrAlreadyInitialized = errors.New("already initialized")

	// ErrNotInitialized is returned when a mutation is attempted before
	// Initialize has run.
	ErrNotInitialized = errors.New("not initialized")
)

// CallToDeployerError wraps a downstream deployer failure. The downstream
// message is preserved verbatim so operators can diagnose why an
// administrative action failed, rather than receiving a generic error.
type CallToDeployerError struct {
	Deployer common.Address
	Err      error
}

func (e *CallToDeployerError) Error() string {
	return fmt.Sprintf("call to deployer %s failed: %v", e.Deployer.Hex(), e.Err)
}

func (e *CallToDeployerError) Is(target error) bool {
	return target == ErrCallToDeployerFailed
}

// Unwrap exposes the downstream error for errors.Is/As chains.
func (e *CallToDeployerError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is any of the registry's not-found kinds.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDeployerNotFound) ||
		errors.Is(err, ErrFeedDoesNotExist) ||
		errors.Is(err, ErrFeedNotApproved)
}

// IsConflict reports whether err is any of the registry's already-exists kinds.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDeployerAlreadyExists) ||
		errors.Is(err, ErrQuoteTokenAlreadyExists) ||
		errors.Is(err, ErrFeedAlreadyExists) ||
		errors.Is(err, ErrTokenAlreadyAssociated)
}

// IsValidation reports whether err is any of the registry's invalid-input kinds.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAddress) ||
		errors.Is(err, ErrInvalidFeed) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrQuoteTokenMismatch) ||
		errors.Is(err, ErrTokenListTooLong) ||
		errors.Is(err, ErrTokenLimitReached)
}

// IsUnauthorized reports whether err is an access-control failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrNotOwner) || errors.Is(err, ErrNotPendingOwner)
}
