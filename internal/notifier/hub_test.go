package notifier_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobil_kargo/internal/notifier"
)

// fakeConn records everything written to it and can be made to fail.
type fakeConn struct {
	written []interface{}
	failing bool
	closed  bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	if f.failing {
		return errors.New("write on closed connection")
	}
	f.written = append(f.written, v)
	return nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := notifier.NewHub()
	a, b := &fakeConn{}, &fakeConn{}

	hub.Register(7, a)
	hub.Register(7, b)
	assert.Equal(t, 2, hub.Connections(7))

	hub.Unregister(7, a)
	assert.Equal(t, 1, hub.Connections(7))

	// The actor entry disappears with its last channel.
	hub.Unregister(7, b)
	assert.Equal(t, 0, hub.Connections(7))

	// Unregistering an unknown channel is a no-op.
	hub.Unregister(7, a)
	hub.Unregister(99, a)
}

func TestHubSendToMultiDevice(t *testing.T) {
	hub := notifier.NewHub()
	phone, laptop := &fakeConn{}, &fakeConn{}
	hub.Register(3, phone)
	hub.Register(3, laptop)

	ev := notifier.Event{Type: notifier.EventStatusUpdate, OrderID: 12, Message: "Order status changed to picked_up"}
	hub.SendTo(3, ev)

	require.Len(t, phone.written, 1)
	require.Len(t, laptop.written, 1)
	assert.Equal(t, ev, phone.written[0])
}

func TestHubSendToPrunesFailedChannelOnly(t *testing.T) {
	hub := notifier.NewHub()
	dead, alive := &fakeConn{failing: true}, &fakeConn{}
	hub.Register(5, dead)
	hub.Register(5, alive)

	hub.SendTo(5, notifier.Event{Type: notifier.EventNewOrder, OrderID: 1, Message: "hi"})

	assert.True(t, dead.closed, "failed channel should be closed")
	assert.Len(t, alive.written, 1, "healthy channel still receives the event")
	assert.Equal(t, 1, hub.Connections(5))

	// The dead channel is gone; subsequent sends reach only the healthy one.
	hub.SendTo(5, notifier.Event{Type: notifier.EventNewOrder, OrderID: 2, Message: "again"})
	assert.Len(t, alive.written, 2)
}

func TestHubIsolatesActors(t *testing.T) {
	hub := notifier.NewHub()
	mine, theirs := &fakeConn{}, &fakeConn{}
	hub.Register(1, mine)
	hub.Register(2, theirs)

	hub.SendTo(1, notifier.Event{Type: notifier.EventStatusUpdate, OrderID: 9, Message: "update"})

	assert.Len(t, mine.written, 1)
	assert.Empty(t, theirs.written, "unrelated actor must receive nothing")
}

func TestHubSendToUnknownActorIsNoop(t *testing.T) {
	hub := notifier.NewHub()
	hub.SendTo(42, notifier.Event{Type: notifier.EventNewOrder, Message: "nobody home"})
}

func TestHubSendToAll(t *testing.T) {
	hub := notifier.NewHub()
	customer, business := &fakeConn{}, &fakeConn{}
	hub.Register(10, customer)
	hub.Register(20, business)

	hub.SendToAll([]uint{10, 20}, notifier.Event{Type: notifier.EventOrderAssigned, OrderID: 4, Message: "taken"})

	assert.Len(t, customer.written, 1)
	assert.Len(t, business.written, 1)
}

// racyConn detects overlapping WriteJSON calls, which the underlying
// websocket connection would not survive.
type racyConn struct {
	inWrite int32
	overlap atomic.Bool
	writes  atomic.Int32
	closed  atomic.Bool
}

func (r *racyConn) WriteJSON(v interface{}) error {
	if atomic.AddInt32(&r.inWrite, 1) > 1 {
		r.overlap.Store(true)
	}
	time.Sleep(time.Microsecond)
	atomic.AddInt32(&r.inWrite, -1)
	r.writes.Add(1)
	return nil
}

func (r *racyConn) Close() error {
	r.closed.Store(true)
	return nil
}

func TestSyncConnSerializesWriters(t *testing.T) {
	raw := &racyConn{}
	conn := notifier.NewSyncConn(raw)

	const writers, perWriter = 8, 25
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				_ = conn.WriteJSON(notifier.Event{Type: notifier.EventLocation, Message: "ping"})
			}
		}()
	}
	wg.Wait()

	assert.False(t, raw.overlap.Load(), "writes must never overlap")
	assert.Equal(t, int32(writers*perWriter), raw.writes.Load())
}

func TestSyncConnCloseReachesUnderlying(t *testing.T) {
	raw := &racyConn{}
	conn := notifier.NewSyncConn(raw)
	require.NoError(t, conn.Close())
	assert.True(t, raw.closed.Load())
}

func TestHubClose(t *testing.T) {
	hub := notifier.NewHub()
	a, b := &fakeConn{}, &fakeConn{}
	hub.Register(1, a)
	hub.Register(2, b)

	hub.Close()

	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Equal(t, 0, hub.Connections(1))
	assert.Equal(t, 0, hub.Connections(2))
}
