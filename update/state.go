package update

import (
	"log/slog"
	"sync"

	"github.com/attaswift/GlueKit-sub000/signal"
)

type options struct {
	logger *slog.Logger
	name   string
}

type Option func(*options)

// WithLogger sets the logger receiving Debug records for transaction
// boundaries. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithName labels the node in log records.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// State tracks the transaction depth of one observable node and broadcasts
// its updates. Only the outermost Begin and End are forwarded to sinks.
//
// A sink attached while a transaction is open first receives a begin of its
// own, and a sink detached while one is open receives a closing end, so
// every sink observes balanced envelopes. Add reads the depth and attaches
// the sink in two steps, so Add on one goroutine racing an outermost Begin on
// another can leave the new sink without a begin. Mutations of one node and
// changes to its sinks belong on one goroutine.
type State[C Change[C]] struct {
	signal *signal.Signal[Update[C]]
	logger *slog.Logger
	name   string

	mu    sync.Mutex
	depth int
}

// NewState returns a state with no transaction open. delegate is notified
// when the first sink is added and when the last one is removed; it may be
// nil.
func NewState[C Change[C]](delegate signal.Delegate, opts ...Option) *State[C] {
	o := newOptions(opts)
	return &State[C]{
		signal: signal.New[Update[C]](delegate),
		logger: o.logger,
		name:   o.name,
	}
}

func (s *State[C]) Name() string {
	return s.name
}

func (s *State[C]) IsInTransaction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depth > 0
}

// IsConnected reports whether any sink is attached.
func (s *State[C]) IsConnected() bool {
	return s.signal.IsActive()
}

func (s *State[C]) Add(sink signal.Sink[Update[C]]) {
	s.mu.Lock()
	open := s.depth > 0
	s.mu.Unlock()
	if open {
		sink.Receive(Begin[C]())
	}
	s.signal.Add(sink)
}

func (s *State[C]) Remove(sink signal.Sink[Update[C]]) {
	s.signal.Remove(sink)
	s.mu.Lock()
	open := s.depth > 0
	s.mu.Unlock()
	if open {
		sink.Receive(End[C]())
	}
}

func (s *State[C]) Begin() {
	s.mu.Lock()
	s.depth++
	depth := s.depth
	s.mu.Unlock()
	s.logger.Debug("transaction begin", "name", s.name, "depth", depth)
	if depth == 1 {
		s.signal.Send(Begin[C]())
	}
}

// Send forwards c inside the open transaction. Empty changes are dropped.
func (s *State[C]) Send(c C) {
	s.mu.Lock()
	depth := s.depth
	s.mu.Unlock()
	if depth == 0 {
		panic("update: change sent outside of a transaction")
	}
	if c.IsEmpty() {
		return
	}
	s.signal.Send(Delta(c))
}

func (s *State[C]) End() {
	s.mu.Lock()
	if s.depth == 0 {
		s.mu.Unlock()
		panic("update: unbalanced end of transaction")
	}
	s.depth--
	depth := s.depth
	s.mu.Unlock()
	s.logger.Debug("transaction end", "name", s.name, "depth", depth)
	if depth == 0 {
		s.signal.Send(End[C]())
	}
}

// Apply forwards an update received from upstream.
func (s *State[C]) Apply(u Update[C]) {
	switch u.Kind {
	case KindBegin:
		s.Begin()
	case KindChange:
		s.Send(u.Change)
	case KindEnd:
		s.End()
	}
}

// Receive lets a State be attached directly to an upstream source.
func (s *State[C]) Receive(u Update[C]) {
	s.Apply(u)
}

// Batch runs fn inside a transaction.
func (s *State[C]) Batch(fn func()) {
	s.Begin()
	defer s.End()
	fn()
}
