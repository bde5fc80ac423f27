package update

import (
	"sync"

	"github.com/attaswift/GlueKit-sub000/signal"
)

// Merger collapses every change made within one outer transaction into a
// single merged change, emitted just before the transaction ends. It is
// used by nodes fed by several upstreams whose transactions may overlap.
type Merger[C Change[C]] struct {
	state *State[C]

	mu      sync.Mutex
	pending C
	has     bool
}

func NewMerger[C Change[C]](delegate signal.Delegate, opts ...Option) *Merger[C] {
	return &Merger[C]{state: NewState[C](delegate, opts...)}
}

func (m *Merger[C]) IsInTransaction() bool {
	return m.state.IsInTransaction()
}

func (m *Merger[C]) IsConnected() bool {
	return m.state.IsConnected()
}

// Add flushes the accumulated change before attaching sink, so the sink
// never sees edits made before it joined.
func (m *Merger[C]) Add(sink signal.Sink[Update[C]]) {
	if m.state.IsInTransaction() {
		m.flush()
	}
	m.state.Add(sink)
}

func (m *Merger[C]) Remove(sink signal.Sink[Update[C]]) {
	m.state.Remove(sink)
}

func (m *Merger[C]) Begin() {
	m.state.Begin()
}

func (m *Merger[C]) Send(c C) {
	if !m.state.IsInTransaction() {
		panic("update: change sent outside of a transaction")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.has {
		m.pending = m.pending.Merged(c)
	} else {
		m.pending, m.has = c, true
	}
}

func (m *Merger[C]) End() {
	m.state.mu.Lock()
	outermost := m.state.depth == 1
	m.state.mu.Unlock()
	if outermost {
		m.flush()
	}
	m.state.End()
}

func (m *Merger[C]) Apply(u Update[C]) {
	switch u.Kind {
	case KindBegin:
		m.Begin()
	case KindChange:
		m.Send(u.Change)
	case KindEnd:
		m.End()
	}
}

func (m *Merger[C]) Receive(u Update[C]) {
	m.Apply(u)
}

func (m *Merger[C]) Batch(fn func()) {
	m.Begin()
	defer m.End()
	fn()
}

func (m *Merger[C]) flush() {
	m.mu.Lock()
	pending, has := m.pending, m.has
	var zero C
	m.pending, m.has = zero, false
	m.mu.Unlock()
	if has {
		m.state.Send(pending)
	}
}
