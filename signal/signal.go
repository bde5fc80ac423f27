// Package signal implements an ordered multicast dispatcher.
//
// A Signal delivers every value passed to Send to the sinks attached to it,
// following five rules:
//
//  1. Values are only delivered to attached sinks, and only values sent after
//     the sink was attached.
//  2. All sends on one signal are totally ordered.
//  3. Every sink observes the same subsequence, without reordering,
//     duplication or loss.
//  4. A sink's subsequence starts with the first send that begins after the
//     sink was added.
//  5. Once Remove returns, the sink is not invoked again, even if a send was
//     already in flight.
//
// Send never blocks on another sender. If a send is already in progress, on
// another goroutine or further up the current call stack, the value is
// queued and the active sender delivers it before returning.
package signal

import (
	"fmt"
	"slices"
	"sync"
)

type Sink[V any] interface {
	Receive(value V)
}

// Source is anything sinks can be attached to. Sinks are compared by
// identity, so implementations must be comparable (typically pointers).
type Source[V any] interface {
	Add(sink Sink[V])
	Remove(sink Sink[V])
}

// Delegate is told when a signal gains its first sink and when it loses
// its last one.
type Delegate interface {
	Activate()
	Deactivate()
}

type pendingItem[V any] struct {
	sink  Sink[V]
	token uint64
	value V
}

type Signal[V any] struct {
	mu       sync.Mutex
	delegate Delegate

	sinks   []Sink[V]
	members map[Sink[V]]struct{}
	// sinks added while a send was in progress, not yet attached, keyed to
	// the token of their queued add
	pending map[Sink[V]]uint64
	tokens  uint64
	queue   []pendingItem[V]
	sending bool
	active  bool

	// delegate calls not yet made, true for Activate; drained in order by
	// one notifier at a time
	hooks     []bool
	notifying bool

	scratch []Sink[V]
}

// New returns an idle signal; delegate may be nil.
func New[V any](delegate Delegate) *Signal[V] {
	return &Signal[V]{
		delegate: delegate,
		members:  map[Sink[V]]struct{}{},
		pending:  map[Sink[V]]uint64{},
	}
}

// IsActive reports whether at least one sink is attached or waiting to be.
func (s *Signal[V]) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Signal[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members) + len(s.pending)
}

func (s *Signal[V]) Add(sink Sink[V]) {
	s.mu.Lock()
	if s.contains(sink) {
		s.mu.Unlock()
		panic(fmt.Sprintf("signal: sink %v added twice", sink))
	}
	if !s.active {
		s.active = true
		s.hook(true)
	}
	if s.sending {
		s.tokens++
		s.pending[sink] = s.tokens
		s.queue = append(s.queue, pendingItem[V]{sink: sink, token: s.tokens})
	} else {
		s.attach(sink)
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Signal[V]) contains(sink Sink[V]) bool {
	if _, ok := s.members[sink]; ok {
		return true
	}
	_, ok := s.pending[sink]
	return ok
}

func (s *Signal[V]) attach(sink Sink[V]) {
	s.members[sink] = struct{}{}
	s.sinks = append(s.sinks, sink)
}

// Remove detaches sink immediately. Removing a sink that is not attached
// panics.
func (s *Signal[V]) Remove(sink Sink[V]) {
	s.mu.Lock()
	if _, ok := s.members[sink]; ok {
		delete(s.members, sink)
		i := slices.Index(s.sinks, sink)
		s.sinks = slices.Delete(s.sinks, i, i+1)
	} else if _, ok := s.pending[sink]; ok {
		delete(s.pending, sink)
	} else {
		s.mu.Unlock()
		panic(fmt.Sprintf("signal: removing unknown sink %v", sink))
	}
	if s.active && len(s.members) == 0 && len(s.pending) == 0 {
		s.active = false
		s.hook(false)
	}
	s.mu.Unlock()
	s.notify()
}

// hook queues a delegate call. Must hold mu.
func (s *Signal[V]) hook(activate bool) {
	if s.delegate != nil {
		s.hooks = append(s.hooks, activate)
	}
}

// notify makes the queued delegate calls in the order the transitions
// happened. A call made while another goroutine, or an outer frame of this
// one, is notifying is left to that notifier.
func (s *Signal[V]) notify() {
	s.mu.Lock()
	if s.notifying || len(s.hooks) == 0 {
		s.mu.Unlock()
		return
	}
	s.notifying = true
	done := false
	defer func() {
		if !done {
			// The delegate panicked; leave the rest to the next notifier.
			s.mu.Lock()
			s.notifying = false
			s.mu.Unlock()
		}
	}()
	for len(s.hooks) > 0 {
		activate := s.hooks[0]
		s.hooks = s.hooks[1:]
		s.mu.Unlock()
		if activate {
			s.delegate.Activate()
		} else {
			s.delegate.Deactivate()
		}
		s.mu.Lock()
	}
	s.notifying = false
	done = true
	s.mu.Unlock()
}

func (s *Signal[V]) Send(value V) {
	s.mu.Lock()
	if s.sending {
		s.queue = append(s.queue, pendingItem[V]{value: value})
		s.mu.Unlock()
		return
	}
	s.sending = true
	s.mu.Unlock()

	drained := false
	defer func() {
		if !drained {
			// A sink panicked; let the next sender pick up the queue.
			s.mu.Lock()
			s.sending = false
			s.mu.Unlock()
		}
	}()

	s.deliver(value)
	s.drain()
	drained = true
}

// drain processes queued items until the queue is empty, then gives up the
// sender role.
func (s *Signal[V]) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.sending = false
			s.mu.Unlock()
			return
		}
		item := s.queue[0]
		s.queue[0] = pendingItem[V]{}
		s.queue = s.queue[1:]
		if item.sink != nil {
			// a stale token means the sink was removed and added again
			if token, ok := s.pending[item.sink]; ok && token == item.token {
				delete(s.pending, item.sink)
				s.attach(item.sink)
			}
			s.mu.Unlock()
			continue
		}
		s.mu.Unlock()
		s.deliver(item.value)
	}
}

func (s *Signal[V]) deliver(value V) {
	s.mu.Lock()
	// Only the current sender touches scratch.
	sinks := append(s.scratch[:0], s.sinks...)
	s.mu.Unlock()

	for i, sink := range sinks {
		sinks[i] = nil
		s.mu.Lock()
		_, attached := s.members[sink]
		s.mu.Unlock()
		if attached {
			sink.Receive(value)
		}
	}
	s.scratch = sinks[:0]
}
