package concord4

import (
	"sync"
	"sync/atomic"
)

// subscriberBacklog bounds how far a subscriber may fall behind before old
// events start being dropped.
const subscriberBacklog = 64

// Subscription is one independent receiver of change events. It only sees
// events published after it was created; callers wanting the current state
// should also take a Snapshot.
type Subscription struct {
	b      *Broadcaster
	id     uint64
	ch     chan Change
	missed atomic.Uint64
}

// C delivers change events. It is closed when the subscription is closed
// or the engine shuts down.
func (s *Subscription) C() <-chan Change { return s.ch }

// Missed reports how many events were dropped because this subscriber fell
// more than the backlog behind the publisher.
func (s *Subscription) Missed() uint64 { return s.missed.Load() }

// Close detaches the subscription and closes its channel.
func (s *Subscription) Close() {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.subs[s.id]; !ok {
		return
	}
	delete(s.b.subs, s.id)
	close(s.ch)
}

// Broadcaster fans out change events to any number of subscribers, each
// with its own bounded backlog. Publishing never blocks: a slow subscriber
// loses its oldest events instead of stalling the decode path.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool
}

func newBroadcaster() *Broadcaster {
	return &Broadcaster{subs: map[uint64]*Subscription{}}
}

// Subscribe registers a new receiver. Subscribing after shutdown yields an
// already-closed channel.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &Subscription{
		b:  b,
		id: b.nextID,
		ch: make(chan Change, subscriberBacklog),
	}
	if b.closed {
		close(sub.ch)
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

func (b *Broadcaster) publish(c Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		select {
		case sub.ch <- c:
			continue
		default:
		}
		// backlog full: drop the oldest event to make room.
		select {
		case <-sub.ch:
			sub.missed.Add(1)
		default:
		}
		select {
		case sub.ch <- c:
		default:
			sub.missed.Add(1)
		}
	}
}

// closeAll releases every subscriber; their channels close so ranging
// consumers observe the shutdown.
func (b *Broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}
