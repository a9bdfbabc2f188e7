package web

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RevCBH/planrate/internal/events"
)

func waitForCount(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Count() == n }, time.Second, 5*time.Millisecond)
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	c := NewClient("c1")
	require.True(t, hub.Register(c))
	assert.Equal(t, 1, hub.Count())

	hub.Unregister(c)
	hub.Unregister(c)
	assert.Equal(t, 0, hub.Count())

	_, open := <-c.events
	assert.False(t, open, "events channel closed on unregister")
}

func TestHub_BroadcastFromBus(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()
	c := NewClient("c1")
	require.True(t, hub.Register(c))

	hub.Handler()(events.NewEvent(events.DatasetArchived, "sess-1").WithPayload(map[string]any{"id": "01J"}))

	select {
	case e := <-c.events:
		assert.Equal(t, "dataset.archived", e.Type)
		assert.Equal(t, "sess-1", e.Session)
		assert.Equal(t, "01J", e.Payload["id"])
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestHub_FullBufferDrops(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()
	slow := NewClient("slow")
	require.True(t, hub.Register(slow))

	for i := 0; i < clientBuffer+10; i++ {
		hub.Broadcast(events.JSONEvent{Type: "x"})
	}
	assert.Equal(t, clientBuffer, len(slow.events))
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub()
	c := NewClient("c1")
	require.True(t, hub.Register(c))

	hub.Stop()
	hub.Stop()

	_, open := <-c.events
	assert.False(t, open)
	assert.False(t, hub.Register(NewClient("late")))
	assert.NotPanics(t, func() {
		hub.Broadcast(events.JSONEvent{Type: "x"})
		hub.Unregister(c)
	})
}

func TestHub_ConcurrentBroadcastAndUnregister(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		c := NewClient("c")
		require.True(t, hub.Register(c))
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				hub.Broadcast(events.JSONEvent{Type: "x"})
			}
		}()
		go func() {
			defer wg.Done()
			hub.Unregister(c)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, hub.Count())
}
