// Package registry implements the on-chain oracle feed registry: the
// deployer↔quote-token binding table, the pending→approved feed lifecycle,
// the associated-token store, and the administrative relay to bound pool
// deployer contracts.
//
// Every mutating entry point is wrapped by the single-owner access gate and
// executes as one atomic unit under a single global serialization order.
// Atomicity is achieved by ordering, not journaling: every fallible step —
// input checks, liveness probes, the deployer cross-check, relay
// notifications — runs before the first write to storage, so a failure at
// any point leaves the state untouched.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Default work ceilings for loops over caller-supplied token lists.
const (
	DefaultMaxBaseTokensPerSuggestion = 16
	DefaultMaxAssociatedTokens        = 64
)

// Config holds the configuration for a Registry implementation.
type Config struct {
	// Version is the implementation's semantic version string, reported by
	// Version() so operators can confirm an upgrade took effect.
	Version string

	// State is the storage the implementation operates over. Shared with
	// the proxy so upgrades preserve it.
	State *State

	// Validator gates feed and token addresses entering the registry.
	Validator *Validator

	// Deployers is the capability used to cross-check and notify bound
	// pool deployer contracts.
	Deployers DeployerConnector

	// Logger receives structured operational logs.
	Logger *slog.Logger

	// Sink receives events on successful mutations. Optional.
	Sink Sink

	// Metrics records operation metrics. Optional.
	Metrics *Metrics

	// MaxBaseTokensPerSuggestion caps the token list accepted by
	// SuggestFeed. Zero means DefaultMaxBaseTokensPerSuggestion.
	MaxBaseTokensPerSuggestion int

	// MaxAssociatedTokens caps any single feed's associated set. Zero
	// means DefaultMaxAssociatedTokens.
	MaxAssociatedTokens int
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.Version == "" {
		return errors.New("config: Version is required")
	}
	if c.State == nil {
		return errors.New("config: State is required")
	}
	if c.Validator == nil {
		return errors.New("config: Validator is required")
	}
	if c.Deployers == nil {
		return errors.New("config: Deployers is required")
	}
	if c.Logger == nil {
		return errors.New("config: Logger is required")
	}
	return nil
}

// Registry is one implementation of the registry logic, bound over a State.
// Swapping implementations behind the stable handle preserves the State.
type Registry struct {
	mu sync.Mutex

	state     *State
	validator *Validator
	deployers DeployerConnector
	logger    *slog.Logger
	sink      Sink
	metrics   *Metrics
	version   string

	maxBaseTokensPerSuggestion int
	maxAssociatedTokens        int
}

// New creates a Registry over cfg.State.
func New(cfg Config) (*Registry, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Sink == nil {
		cfg.Sink = NopSink{}
	}
	if cfg.MaxBaseTokensPerSuggestion == 0 {
		cfg.MaxBaseTokensPerSuggestion = DefaultMaxBaseTokensPerSuggestion
	}
	if cfg.MaxAssociatedTokens == 0 {
		cfg.MaxAssociatedTokens = DefaultMaxAssociatedTokens
	}
	return &Registry{
		state:                      cfg.State,
		validator:                  cfg.Validator,
		deployers:                  cfg.Deployers,
		logger:                     cfg.Logger,
		sink:                       cfg.Sink,
		metrics:                    cfg.Metrics,
		version:                    cfg.Version,
		maxBaseTokensPerSuggestion: cfg.MaxBaseTokensPerSuggestion,
		maxAssociatedTokens:        cfg.MaxAssociatedTokens,
	}, nil
}

// Version returns the implementation's semantic version string.
func (r *Registry) Version() string {
	return r.version
}

// --- Deployer Binding Table ---

// AddDeployer binds deployer 1:1 to quoteToken. Owner only.
//
// Preconditions: quoteToken passes token validation; deployer is non-zero;
// neither side already has a binding; and the deployer's self-reported
// quote token exactly equals quoteToken. The cross-check prevents binding
// a deployer to the wrong quote token.
func (r *Registry) AddDeployer(ctx context.Context, caller, quoteToken, deployer common.Address) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := time.Now()
	defer func() { r.metrics.observe("add_deployer", start, err) }()

	if err = r.requireOwner(caller); err != nil {
		return err
	}
	if deployer == (common.Address{}) {
		return fmt.Errorf("deployer: %w", ErrInvalidAddress)
	}
	if err = r.validator.ValidateToken(ctx, quoteToken); err != nil {
		return err
	}
	if _, bound := r.state.quoteByDeployer[deployer]; bound {
		return fmt.Errorf("deployer %s: %w", deployer.Hex(), ErrDeployerAlreadyExists)
	}
	if _, bound := r.state.deployerByQuote[quoteToken]; bound {
		return fmt.Errorf("quote token %s: %w", quoteToken.Hex(), ErrQuoteTokenAlreadyExists)
	}

	reported, err := r.deployers.QuoteToken(ctx, deployer)
	if err != nil {
		return &CallToDeployerError{Deployer: deployer, Err: err}
	}
	if reported != quoteToken {
		return fmt.Errorf("deployer reports %s, want %s: %w",
			reported.Hex(), quoteToken.Hex(), ErrQuoteTokenMismatch)
	}

	r.state.deployerByQuote[quoteToken] = deployer
	r.state.quoteByDeployer[deployer] = quoteToken
	r.state.deployerList = append(r.state.deployerList, deployer)

	r.logger.Info("deployer added", "quote_token", quoteToken.Hex(), "deployer", deployer.Hex())
	r.sink.Emit(DeployerAdded{QuoteToken: quoteToken, Deployer: deployer})
	r.metrics.setTableSizes(r.state)
	return nil
}

// RemoveDeployer clears both directions of the deployer's binding and
// removes it from the enumerable list via swap-and-pop. Owner only.
//
// Approved feeds referencing the deployer survive removal (they become
// orphaned; see OrphanedFeeds).
func (r *Registry) RemoveDeployer(ctx context.Context, caller, deployer common.Address) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := time.Now()
	defer func() { r.metrics.observe("remove_deployer", start, err) }()

	if err = r.requireOwner(caller); err != nil {
		return err
	}
	quoteToken, bound := r.state.quoteByDeployer[deployer]
	if !bound {
		return fmt.Errorf("deployer %s: %w", deployer.Hex(), ErrDeployerNotFound)
	}

	delete(r.state.quoteByDeployer, deployer)
	delete(r.state.deployerByQuote, quoteToken)
	r.state.deployerList = removeFromAddressList(r.state.deployerList, deployer)

	r.logger.Info("deployer removed", "quote_token", quoteToken.Hex(), "deployer", deployer.Hex())
	r.sink.Emit(DeployerRemoved{QuoteToken: quoteToken, Deployer: deployer})
	r.metrics.setTableSizes(r.state)
	return nil
}

// --- Feed Lifecycle Store ---

// SuggestFeed stages a feed and its proposed base tokens for quoteToken's
// deployer. Open to any caller; the approval step is the trust gate, so
// duplicate pending suggestions for the same feed are allowed.
//
// Returns the pending index, which stays addressable until the slot is
// consumed by ApproveFeed.
func (r *Registry) SuggestFeed(ctx context.Context, caller, quoteToken, feed common.Address, baseTokens []common.Address) (index int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := time.Now()
	defer func() { r.metrics.observe("suggest_feed", start, err) }()

	deployer, bound := r.state.deployerByQuote[quoteToken]
	if !bound {
		return 0, fmt.Errorf("quote token %s: %w", quoteToken.Hex(), ErrDeployerNotFound)
	}
	if len(baseTokens) > r.maxBaseTokensPerSuggestion {
		return 0, fmt.Errorf("%d base tokens, max %d: %w",
			len(baseTokens), r.maxBaseTokensPerSuggestion, ErrTokenListTooLong)
	}
	if err = r.validator.ValidateFeed(ctx, feed); err != nil {
		return 0, err
	}
	key := FeedKey{Deployer: deployer, Feed: feed}
	if _, exists := r.state.approvedFeeds[key]; exists {
		return 0, fmt.Errorf("feed %s: %w", feed.Hex(), ErrFeedAlreadyExists)
	}
	for i, token := range baseTokens {
		if err = r.validator.ValidateToken(ctx, token); err != nil {
			return 0, err
		}
		if containsAddress(baseTokens[:i], token) {
			return 0, fmt.Errorf("token %s: %w", token.Hex(), ErrTokenAlreadyAssociated)
		}
	}

	record := FeedRecord{
		Deployer:   deployer,
		Feed:       feed,
		Approved:   false,
		BaseTokens: copyAddresses(baseTokens),
	}
	r.state.pendingFeeds = append(r.state.pendingFeeds, record)
	index = len(r.state.pendingFeeds) - 1

	r.logger.Info("feed suggested",
		"index", index, "deployer", deployer.Hex(), "feed", feed.Hex(),
		"base_tokens", len(baseTokens), "caller", caller.Hex())
	r.sink.Emit(FeedSuggested{
		Index:      index,
		Deployer:   deployer,
		Feed:       feed,
		BaseTokens: copyAddresses(baseTokens),
	})
	r.metrics.setTableSizes(r.state)
	return index, nil
}

// ApproveFeed promotes the pending record at index to approved. Owner only.
//
// The deployer is notified through the administrative relay before any
// state is written; a relay failure aborts the whole operation. On success
// the pending slot is tombstoned in place — other pending indices remain
// stable — and one approval event plus one association event per base
// token are emitted.
func (r *Registry) ApproveFeed(ctx context.Context, caller common.Address, index int) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := time.Now()
	defer func() { r.metrics.observe("approve_feed", start, err) }()

	if err = r.requireOwner(caller); err != nil {
		return err
	}
	if index < 0 || index >= len(r.state.pendingFeeds) || r.state.pendingTombstoned(index) {
		return fmt.Errorf("pending index %d: %w", index, ErrFeedDoesNotExist)
	}
	record := r.state.pendingFeeds[index]
	key := record.Key()
	if _, exists := r.state.approvedFeeds[key]; exists {
		return fmt.Errorf("feed %s: %w", record.Feed.Hex(), ErrFeedAlreadyExists)
	}

	if err = r.deployers.AdminApproveBaseOracle(ctx, record.Deployer, record.Feed); err != nil {
		return &CallToDeployerError{Deployer: record.Deployer, Err: err}
	}

	record.Approved = true
	r.state.approvedFeeds[key] = record
	r.state.feedsByDeployer[record.Deployer] = append(r.state.feedsByDeployer[record.Deployer], record.Feed)
	r.state.pendingFeeds[index] = FeedRecord{}

	r.logger.Info("feed approved",
		"index", index, "deployer", record.Deployer.Hex(), "feed", record.Feed.Hex())
	r.sink.Emit(FeedApproved{Index: index, Deployer: record.Deployer, Feed: record.Feed})
	for _, token := range record.BaseTokens {
		r.sink.Emit(TokenAssociated{Deployer: record.Deployer, Feed: record.Feed, Token: token})
	}
	r.metrics.setTableSizes(r.state)
	return nil
}

// RemoveFeed deletes the approved record for (quoteToken's deployer, feed).
// Owner only. The deployer is notified of the disapproval before any state
// is written. Re-suggestion after removal starts a fresh lifecycle.
func (r *Registry) RemoveFeed(ctx context.Context, caller, quoteToken, feed common.Address) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := time.Now()
	defer func() { r.metrics.observe("remove_feed", start, err) }()

	if err = r.requireOwner(caller); err != nil {
		return err
	}
	record, err := r.approvedRecord(quoteToken, feed)
	if err != nil {
		return err
	}

	if err = r.deployers.AdminDisapproveBaseOracle(ctx, record.Deployer, record.Feed); err != nil {
		return &CallToDeployerError{Deployer: record.Deployer, Err: err}
	}

	delete(r.state.approvedFeeds, record.Key())
	r.state.feedsByDeployer[record.Deployer] = removeFromAddressList(r.state.feedsByDeployer[record.Deployer], record.Feed)
	if len(r.state.feedsByDeployer[record.Deployer]) == 0 {
		delete(r.state.feedsByDeployer, record.Deployer)
	}

	r.logger.Info("feed removed", "deployer", record.Deployer.Hex(), "feed", record.Feed.Hex())
	r.sink.Emit(FeedRemoved{Deployer: record.Deployer, Feed: record.Feed})
	r.metrics.setTableSizes(r.state)
	return nil
}

// --- Associated-Token Store ---

// AssociateToken adds token to the approved feed's associated set. Owner
// only. Duplicates fail with ErrTokenAlreadyAssociated.
func (r *Registry) AssociateToken(ctx context.Context, caller, quoteToken, feed, token common.Address) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := time.Now()
	defer func() { r.metrics.observe("associate_token", start, err) }()

	if err = r.requireOwner(caller); err != nil {
		return err
	}
	record, err := r.approvedRecord(quoteToken, feed)
	if err != nil {
		return err
	}
	if err = r.validator.ValidateToken(ctx, token); err != nil {
		return err
	}
	if len(record.BaseTokens) >= r.maxAssociatedTokens {
		return fmt.Errorf("feed %s has %d tokens: %w", feed.Hex(), len(record.BaseTokens), ErrTokenLimitReached)
	}
	if containsAddress(record.BaseTokens, token) {
		return fmt.Errorf("token %s: %w", token.Hex(), ErrTokenAlreadyAssociated)
	}

	record.BaseTokens = append(record.BaseTokens, token)
	r.state.approvedFeeds[record.Key()] = record

	r.logger.Info("token associated",
		"deployer", record.Deployer.Hex(), "feed", feed.Hex(), "token", token.Hex())
	r.sink.Emit(TokenAssociated{Deployer: record.Deployer, Feed: feed, Token: token})
	return nil
}

// RemoveToken removes token from the approved feed's associated set via
// linear scan and swap-and-pop. Owner only.
//
// If the token is not present the operation is a silent no-op: no event is
// emitted and nil is returned. This keeps removal idempotent for cleanup
// tooling and matches the registry's long-standing behavior.
func (r *Registry) RemoveToken(ctx context.Context, caller, quoteToken, feed, token common.Address) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := time.Now()
	defer func() { r.metrics.observe("remove_token", start, err) }()

	if err = r.requireOwner(caller); err != nil {
		return err
	}
	record, err := r.approvedRecord(quoteToken, feed)
	if err != nil {
		return err
	}
	if !containsAddress(record.BaseTokens, token) {
		r.logger.Debug("remove token: not associated, no-op",
			"feed", feed.Hex(), "token", token.Hex())
		return nil
	}

	record.BaseTokens = removeFromAddressList(record.BaseTokens, token)
	r.state.approvedFeeds[record.Key()] = record

	r.logger.Info("token removed",
		"deployer", record.Deployer.Hex(), "feed", feed.Hex(), "token", token.Hex())
	r.sink.Emit(TokenRemoved{Deployer: record.Deployer, Feed: feed, Token: token})
	return nil
}

// SuggestBaseToken stages a single token association for an approved feed,
// mirroring the feed lifecycle's pending/approve split at token
// granularity. Open to any caller. Returns the staged index.
func (r *Registry) SuggestBaseToken(ctx context.Context, caller, quoteToken, feed, token common.Address) (index int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := time.Now()
	defer func() { r.metrics.observe("suggest_base_token", start, err) }()

	if _, err = r.approvedRecord(quoteToken, feed); err != nil {
		return 0, err
	}
	if err = r.validator.ValidateToken(ctx, token); err != nil {
		return 0, err
	}

	r.state.pendingBaseTokens = append(r.state.pendingBaseTokens, PendingBaseToken{
		QuoteToken: quoteToken,
		BaseFeed:   feed,
		BaseToken:  token,
	})
	index = len(r.state.pendingBaseTokens) - 1

	r.logger.Info("base token suggested",
		"index", index, "quote_token", quoteToken.Hex(), "feed", feed.Hex(),
		"token", token.Hex(), "caller", caller.Hex())
	r.sink.Emit(BaseTokenSuggested{
		Index:      index,
		QuoteToken: quoteToken,
		BaseFeed:   feed,
		BaseToken:  token,
	})
	return index, nil
}

// ApproveBaseToken promotes the staged association at index. Owner only.
// The slot is tombstoned in place; other staged indices remain stable.
//
// The feed's binding and approval are re-checked at approval time: the
// deployer may have been unbound or the feed removed since the suggestion.
func (r *Registry) ApproveBaseToken(ctx context.Context, caller common.Address, index int) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := time.Now()
	defer func() { r.metrics.observe("approve_base_token", start, err) }()

	if err = r.requireOwner(caller); err != nil {
		return err
	}
	if index < 0 || index >= len(r.state.pendingBaseTokens) || r.state.pendingBaseTokenTombstoned(index) {
		return fmt.Errorf("pending base token index %d: %w", index, ErrFeedDoesNotExist)
	}
	staged := r.state.pendingBaseTokens[index]
	record, err := r.approvedRecord(staged.QuoteToken, staged.BaseFeed)
	if err != nil {
		return err
	}
	if len(record.BaseTokens) >= r.maxAssociatedTokens {
		return fmt.Errorf("feed %s has %d tokens: %w",
			staged.BaseFeed.Hex(), len(record.BaseTokens), ErrTokenLimitReached)
	}
	if containsAddress(record.BaseTokens, staged.BaseToken) {
		return fmt.Errorf("token %s: %w", staged.BaseToken.Hex(), ErrTokenAlreadyAssociated)
	}

	record.BaseTokens = append(record.BaseTokens, staged.BaseToken)
	r.state.approvedFeeds[record.Key()] = record
	r.state.pendingBaseTokens[index] = PendingBaseToken{}

	r.logger.Info("base token approved",
		"index", index, "deployer", record.Deployer.Hex(),
		"feed", staged.BaseFeed.Hex(), "token", staged.BaseToken.Hex())
	r.sink.Emit(BaseTokenApproved{
		Index:     index,
		Deployer:  record.Deployer,
		BaseFeed:  staged.BaseFeed,
		BaseToken: staged.BaseToken,
	})
	return nil
}

// --- Administrative Relay ---

// CallDeployer forwards a raw instruction payload to a currently-bound
// deployer contract. Owner only. Exposed for operational needs the typed
// notifications do not cover, e.g. recovering ownership of a deployer.
//
// A downstream failure is surfaced verbatim inside CallToDeployerError so
// the caller can diagnose why the administrative action failed. On success
// the downstream result is returned without further postcondition checks.
func (r *Registry) CallDeployer(ctx context.Context, caller, deployer common.Address, data []byte) (result []byte, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := time.Now()
	defer func() { r.metrics.observe("call_deployer", start, err) }()

	if err = r.requireOwner(caller); err != nil {
		return nil, err
	}
	if _, bound := r.state.quoteByDeployer[deployer]; !bound {
		return nil, fmt.Errorf("deployer %s: %w", deployer.Hex(), ErrDeployerNotFound)
	}

	result, err = r.deployers.Call(ctx, deployer, data)
	if err != nil {
		return nil, &CallToDeployerError{Deployer: deployer, Err: err}
	}
	r.logger.Info("deployer called", "deployer", deployer.Hex(), "payload_bytes", len(data))
	return result, nil
}

// approvedRecord resolves (quoteToken, feed) to its approved record.
// Callers hold r.mu.
func (r *Registry) approvedRecord(quoteToken, feed common.Address) (FeedRecord, error) {
	deployer, bound := r.state.deployerByQuote[quoteToken]
	if !bound {
		return FeedRecord{}, fmt.Errorf("quote token %s: %w", quoteToken.Hex(), ErrDeployerNotFound)
	}
	record, ok := r.state.approvedFeeds[FeedKey{Deployer: deployer, Feed: feed}]
	if !ok {
		return FeedRecord{}, fmt.Errorf("feed %s: %w", feed.Hex(), ErrFeedNotApproved)
	}
	return record, nil
}
