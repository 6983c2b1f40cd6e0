package channels

import (
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
)

// Broadcaster holds the latest published value and delivers every published
// value to its subscribers, in publish order and registration order, from a
// single dispatcher goroutine. Publish never waits for subscribers.
type Broadcaster[T any] struct {
	lock        *sync.RWMutex
	cond        *sync.Cond
	subscribers []*Subscriber[T]
	value       T
	queue       []delivery[T]
	closed      bool
	done        chan struct{}
}

type delivery[T any] struct {
	value T
	// join is set when the delivery registers a new subscriber; the value is
	// then only sent to that subscriber.
	join *Subscriber[T]
}

func NewBroadcaster[T any](value T) *Broadcaster[T] {
	lock := new(sync.RWMutex)
	b := &Broadcaster[T]{
		lock:  lock,
		cond:  sync.NewCond(lock),
		value: value,
		done:  make(chan struct{}),
	}
	go b.dispatch()
	return b
}

func (b *Broadcaster[T]) Publish(value T) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.closed {
		return
	}
	b.value = value
	b.queue = append(b.queue, delivery[T]{value: value})
	b.cond.Signal()
}

func (b *Broadcaster[T]) Value() T {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.value
}

// Subscribe registers fn. It first receives the value current at the time of
// the call, then every value published afterwards.
func (b *Broadcaster[T]) Subscribe(fn func(T)) *Subscriber[T] {
	b.lock.Lock()
	defer b.lock.Unlock()

	s := &Subscriber[T]{source: b, fn: fn}
	if b.closed {
		return s
	}
	s.active.Store(true)
	b.queue = append(b.queue, delivery[T]{value: b.value, join: s})
	b.cond.Signal()
	return s
}

// Close stops accepting values, waits for queued deliveries to drain, and
// stops the dispatcher. It must not be called from a subscriber.
func (b *Broadcaster[T]) Close() {
	b.lock.Lock()
	if b.closed {
		b.lock.Unlock()
		<-b.done
		return
	}
	b.closed = true
	b.cond.Signal()
	b.lock.Unlock()

	<-b.done
}

func (b *Broadcaster[T]) next() (delivery[T], []*Subscriber[T], bool) {
	b.lock.Lock()
	defer b.lock.Unlock()

	for len(b.queue) == 0 {
		if b.closed {
			return delivery[T]{}, nil, false
		}
		b.cond.Wait()
	}

	d := b.queue[0]
	b.queue[0] = delivery[T]{}
	b.queue = b.queue[1:]

	if d.join != nil {
		if !d.join.active.Load() {
			return d, nil, true
		}
		b.subscribers = append(b.subscribers, d.join)
		return d, []*Subscriber[T]{d.join}, true
	}

	targets := make([]*Subscriber[T], len(b.subscribers))
	copy(targets, b.subscribers)
	return d, targets, true
}

func (b *Broadcaster[T]) dispatch() {
	defer close(b.done)

	for {
		d, targets, ok := b.next()
		if !ok {
			return
		}
		for _, s := range targets {
			if s.active.Load() {
				s.fn(d.value)
			}
		}
	}
}

type Subscriber[T any] struct {
	source *Broadcaster[T]
	fn     func(T)
	active atomic.Bool
}

// Unsubscribe stops further deliveries to the subscriber. It is safe to call
// more than once, and after the broadcaster is closed.
func (s *Subscriber[T]) Unsubscribe() {
	if !s.active.Swap(false) {
		return
	}

	s.source.lock.Lock()
	defer s.source.lock.Unlock()

	s.source.subscribers = lo.Without(s.source.subscribers, s)
}
