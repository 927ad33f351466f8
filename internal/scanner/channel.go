package scanner

import (
	"context"
	"errors"
	"sync"

	"github.com/rahulvramesh/appdata-cleaner/internal/types"
)

// ErrChannelClosed is returned by Send once either end has closed the channel
var ErrChannelClosed = errors.New("scan channel closed")

// RecvState is the result of a non-blocking receive
type RecvState int

const (
	Received RecvState = iota
	Empty
	Closed
)

// Channel is an ordered, unbounded queue of scan events. Any number of
// goroutines may send; a single consumer receives. Send never blocks.
type Channel struct {
	mu         sync.Mutex
	queue      []types.ScanEvent
	sendClosed bool
	recvClosed bool
	ready      chan struct{}
}

// NewChannel creates an empty channel
func NewChannel() *Channel {
	return &Channel{ready: make(chan struct{}, 1)}
}

// Send appends ev to the queue
func (c *Channel) Send(ev types.ScanEvent) error {
	c.mu.Lock()
	if c.sendClosed || c.recvClosed {
		c.mu.Unlock()
		return ErrChannelClosed
	}
	c.queue = append(c.queue, ev)
	c.mu.Unlock()

	c.notify()
	return nil
}

// TryRecv takes the next event without blocking. Closed is only reported
// once every queued event has been received.
func (c *Channel) TryRecv() (types.ScanEvent, RecvState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) > 0 {
		ev := c.queue[0]
		c.queue[0] = types.ScanEvent{}
		c.queue = c.queue[1:]
		return ev, Received
	}
	if c.sendClosed || c.recvClosed {
		return types.ScanEvent{}, Closed
	}
	return types.ScanEvent{}, Empty
}

// Recv blocks until an event is available. It returns false when the channel
// is closed and drained, or when ctx is done.
func (c *Channel) Recv(ctx context.Context) (types.ScanEvent, bool) {
	for {
		ev, state := c.TryRecv()
		switch state {
		case Received:
			return ev, true
		case Closed:
			return types.ScanEvent{}, false
		}

		select {
		case <-c.ready:
		case <-ctx.Done():
			return types.ScanEvent{}, false
		}
	}
}

// Len returns the number of queued events
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// CloseSend marks that no more events will be sent. Queued events stay
// receivable.
func (c *Channel) CloseSend() {
	c.mu.Lock()
	c.sendClosed = true
	c.mu.Unlock()
	c.notify()
}

// Close drops the consumer end. Queued events are discarded and further
// sends fail with ErrChannelClosed.
func (c *Channel) Close() {
	c.mu.Lock()
	c.recvClosed = true
	c.queue = nil
	c.mu.Unlock()
	c.notify()
}

func (c *Channel) notify() {
	select {
	case c.ready <- struct{}{}:
	default:
	}
}
