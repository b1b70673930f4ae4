package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return Event{}
	}
}

func assertNothing(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case ev := <-sub.C:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHubDeliversPerOwner(t *testing.T) {
	h := NewHub()
	alice := h.Subscribe("alice")
	defer alice.Close()
	bob := h.Subscribe("bob")
	defer bob.Close()

	require.NoError(t, h.Publish(context.Background(), Event{OwnerID: "alice", Kind: KindCategory, RecordID: "c1"}))

	ev := receive(t, alice)
	assert.Equal(t, KindCategory, ev.Kind)
	assert.Equal(t, "c1", ev.RecordID)
	assertNothing(t, bob)
}

func TestHubFansOutToEverySubscriber(t *testing.T) {
	h := NewHub()
	first := h.Subscribe("alice")
	defer first.Close()
	second := h.Subscribe("alice")
	defer second.Close()
	assert.Equal(t, 2, h.Subscribers("alice"))

	require.NoError(t, h.Publish(context.Background(), Event{OwnerID: "alice", Kind: KindTransaction}))
	receive(t, first)
	receive(t, second)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("alice")
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			h.Publish(context.Background(), Event{OwnerID: "alice"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	receive(t, sub)
	assertNothing(t, sub)
}

func TestSubscriptionClose(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("alice")
	require.Equal(t, 1, h.Subscribers("alice"))

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, h.Subscribers("alice"))

	_, ok := <-sub.C
	assert.False(t, ok)

	require.NoError(t, h.Publish(context.Background(), Event{OwnerID: "alice"}))
}

func TestHubConcurrentUse(t *testing.T) {
	h := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub := h.Subscribe("alice")
			sub.Close()
		}()
		go func() {
			defer wg.Done()
			h.Publish(context.Background(), Event{OwnerID: "alice"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, h.Subscribers("alice"))
}
