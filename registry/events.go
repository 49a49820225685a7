package registry

import (
	"log/slog"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
)

// EventKind identifies the concrete type of a registry event.
type EventKind string

const (
	KindDeployerAdded             EventKind = "DeployerAdded"
	KindDeployerRemoved           EventKind = "DeployerRemoved"
	KindFeedSuggested             EventKind = "FeedSuggested"
	KindFeedApproved              EventKind = "FeedApproved"
	KindFeedRemoved               EventKind = "FeedRemoved"
	KindTokenAssociated           EventKind = "TokenAssociated"
	KindTokenRemoved              EventKind = "TokenRemoved"
	KindBaseTokenSuggested        EventKind = "BaseTokenSuggested"
	KindBaseTokenApproved         EventKind = "BaseTokenApproved"
	KindOwnershipTransferStarted  EventKind = "OwnershipTransferStarted"
	KindOwnershipTransferred      EventKind = "OwnershipTransferred"
)

// Event is a record of a successful registry mutation. Events are emitted
// after the mutation commits, exactly once per the operation's contract
// (e.g. ApproveFeed emits one FeedApproved plus one TokenAssociated per
// base token in the record).
type Event interface {
	Kind() EventKind
}

type DeployerAdded struct {
	QuoteToken common.Address `json:"quoteToken"`
	Deployer   common.Address `json:"deployer"`
}

func (DeployerAdded) Kind() EventKind { return KindDeployerAdded }

type DeployerRemoved struct {
	QuoteToken common.Address `json:"quoteToken"`
	Deployer   common.Address `json:"deployer"`
}

func (DeployerRemoved) Kind() EventKind { return KindDeployerRemoved }

// FeedSuggested carries the full proposed token set so approval tooling can
// render a suggestion without a second query.
type FeedSuggested struct {
	Index      int              `json:"index"`
	Deployer   common.Address   `json:"deployer"`
	Feed       common.Address   `json:"feed"`
	BaseTokens []common.Address `json:"baseTokens"`
}

func (FeedSuggested) Kind() EventKind { return KindFeedSuggested }

type FeedApproved struct {
	Index    int            `json:"index"`
	Deployer common.Address `json:"deployer"`
	Feed     common.Address `json:"feed"`
}

func (FeedApproved) Kind() EventKind { return KindFeedApproved }

type FeedRemoved struct {
	Deployer common.Address `json:"deployer"`
	Feed     common.Address `json:"feed"`
}

func (FeedRemoved) Kind() EventKind { return KindFeedRemoved }

type TokenAssociated struct {
	Deployer common.Address `json:"deployer"`
	Feed     common.Address `json:"feed"`
	Token    common.Address `json:"token"`
}

func (TokenAssociated) Kind() EventKind { return KindTokenAssociated }

type TokenRemoved struct {
	Deployer common.Address `json:"deployer"`
	Feed     common.Address `json:"feed"`
	Token    common.Address `json:"token"`
}

func (TokenRemoved) Kind() EventKind { return KindTokenRemoved }

type BaseTokenSuggested struct {
	Index      int            `json:"index"`
	QuoteToken common.Address `json:"quoteToken"`
	BaseFeed   common.Address `json:"baseFeed"`
	BaseToken  common.Address `json:"baseToken"`
}

func (BaseTokenSuggested) Kind() EventKind { return KindBaseTokenSuggested }

type BaseTokenApproved struct {
	Index     int            `json:"index"`
	Deployer  common.Address `json:"deployer"`
	BaseFeed  common.Address `json:"baseFeed"`
	BaseToken common.Address `json:"baseToken"`
}

func (BaseTokenApproved) Kind() EventKind { return KindBaseTokenApproved }

type OwnershipTransferStarted struct {
	Owner        common.Address `json:"owner"`
	PendingOwner common.Address `json:"pendingOwner"`
}

func (OwnershipTransferStarted) Kind() EventKind { return KindOwnershipTransferStarted }

type OwnershipTransferred struct {
	PreviousOwner common.Address `json:"previousOwner"`
	NewOwner      common.Address `json:"newOwner"`
}

func (OwnershipTransferred) Kind() EventKind { return KindOwnershipTransferred }

// Sink receives registry events. Emit is called synchronously after a
// mutation commits; implementations must not block.
type Sink interface {
	Emit(event Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Emit(Event) {}

// SlogSink logs every event through a structured logger.
type SlogSink struct {
	Logger *slog.Logger
}

func (s SlogSink) Emit(event Event) {
	s.Logger.Info("registry event", "kind", string(event.Kind()), "event", event)
}

// MultiSink fans an event out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) Emit(event Event) {
	for _, s := range m {
		s.Emit(event)
	}
}

// Fanout broadcasts events to subscriber channels. Subscribers that cannot
// keep up have events dropped rather than blocking the mutation path.
type Fanout struct {
	mu          sync.RWMutex
	bufferSize  uint
	subscribers mapset.Set[chan Event]
}

// NewFanout creates a Fanout whose subscriber channels buffer bufferSize
// events each.
func NewFanout(bufferSize uint) *Fanout {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Fanout{
		bufferSize:  bufferSize,
		subscribers: mapset.NewSet[chan Event](),
	}
}

// Subscribe registers a new subscriber and returns its channel alongside an
// unsubscribe function. The channel is closed on unsubscribe.
func (f *Fanout) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, f.bufferSize)
	f.subscribers.Add(ch)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.subscribers.Remove(ch)
			close(ch)
		})
	}
	return ch, cancel
}

// Emit delivers event to every live subscriber, dropping on full buffers.
func (f *Fanout) Emit(event Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	f.subscribers.Each(func(ch chan Event) bool {
		select {
		case ch <- event:
		default:
		}
		return false
	})
}

// Recorder captures events in order. Intended for tests and audit tooling.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a defensive copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfKind returns the recorded events matching kind, in emission order.
func (r *Recorder) OfKind(kind EventKind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
