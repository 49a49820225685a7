package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanout(t *testing.T) {
	t.Run("DeliversToAllSubscribers", func(t *testing.T) {
		fanout := NewFanout(4)
		ch1, cancel1 := fanout.Subscribe()
		defer cancel1()
		ch2, cancel2 := fanout.Subscribe()
		defer cancel2()

		event := DeployerAdded{QuoteToken: quoteUSDC, Deployer: deployer1}
		fanout.Emit(event)

		assert.Equal(t, Event(event), <-ch1)
		assert.Equal(t, Event(event), <-ch2)
	})

	t.Run("DropsWhenBufferFull", func(t *testing.T) {
		fanout := NewFanout(1)
		ch, cancel := fanout.Subscribe()
		defer cancel()

		fanout.Emit(DeployerAdded{Deployer: deployer1})
		fanout.Emit(DeployerAdded{Deployer: deployer2})

		// Only the first fits; the second is dropped, never blocked on.
		got := <-ch
		assert.Equal(t, deployer1, got.(DeployerAdded).Deployer)
		select {
		case extra := <-ch:
			t.Fatalf("expected second event to be dropped, got %v", extra)
		default:
		}
	})

	t.Run("UnsubscribeClosesChannel", func(t *testing.T) {
		fanout := NewFanout(1)
		ch, cancel := fanout.Subscribe()

		cancel()
		_, open := <-ch
		assert.False(t, open)

		// Emitting after unsubscribe must not panic on the closed channel,
		// and cancel is safe to call twice.
		fanout.Emit(DeployerAdded{Deployer: deployer1})
		cancel()
	})
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	rec.Emit(DeployerAdded{Deployer: deployer1})
	rec.Emit(FeedApproved{Index: 3, Deployer: deployer1, Feed: feed1})
	rec.Emit(DeployerRemoved{Deployer: deployer1})

	require.Len(t, rec.Events(), 3)

	approved := rec.OfKind(KindFeedApproved)
	require.Len(t, approved, 1)
	assert.Equal(t, 3, approved[0].(FeedApproved).Index)

	rec.Reset()
	assert.Empty(t, rec.Events())
}

func TestMultiSink(t *testing.T) {
	first := NewRecorder()
	second := NewRecorder()
	sink := MultiSink{first, second, NopSink{}}

	sink.Emit(TokenAssociated{Deployer: deployer1, Feed: feed1, Token: token1})

	assert.Len(t, first.Events(), 1)
	assert.Len(t, second.Events(), 1)
}

func TestEventKinds(t *testing.T) {
	for _, tc := range []struct {
		event Event
		kind  EventKind
	}{
		{DeployerAdded{}, KindDeployerAdded},
		{DeployerRemoved{}, KindDeployerRemoved},
		{FeedSuggested{}, KindFeedSuggested},
		{FeedApproved{}, KindFeedApproved},
		{FeedRemoved{}, KindFeedRemoved},
		{TokenAssociated{}, KindTokenAssociated},
		{TokenRemoved{}, KindTokenRemoved},
		{BaseTokenSuggested{}, KindBaseTokenSuggested},
		{BaseTokenApproved{}, KindBaseTokenApproved},
		{OwnershipTransferStarted{}, KindOwnershipTransferStarted},
		{OwnershipTransferred{}, KindOwnershipTransferred},
	} {
		assert.Equal(t, tc.kind, tc.event.Kind())
	}
}
