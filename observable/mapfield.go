package observable

import (
	"github.com/attaswift/GlueKit-sub000/change"
	"github.com/attaswift/GlueKit-sub000/reflist"
	"github.com/attaswift/GlueKit-sub000/signal"
	"github.com/attaswift/GlueKit-sub000/update"
)

// MapField maps every element of an observable array to an observable
// value selected by key, and presents the current values as an array.
//
// While active, each element has a fieldSink subscribed to its value. The
// sinks live in a reflist, so a change reported by one of them is turned
// into a replacement at its current index without scanning the array.
type MapField[E, R any] struct {
	parent Array[E]
	key    func(E) Value[R]

	state  *update.State[change.Array[R]]
	conn   *signal.Connection
	fields *reflist.List[*fieldSink[E, R]]
}

type fieldSink[E, R any] struct {
	reflist.Link[*fieldSink[E, R]]
	owner *MapField[E, R]
	field Value[R]
	value R
	conn  *signal.Connection
}

func (f *fieldSink[E, R]) RefListLink() *reflist.Link[*fieldSink[E, R]] {
	return &f.Link
}

func (f *fieldSink[E, R]) receive(u update.Update[change.Value[R]]) {
	forward(u, f.owner.state, func(ch change.Value[R]) {
		index := f.owner.fields.IndexOf(f)
		if index < 0 {
			return
		}
		old := f.value
		f.value = ch.New
		count := f.owner.fields.Len()
		f.owner.state.Send(change.NewArray(count, change.Replace(old, index, ch.New)))
	})
}

func NewMapField[E, R any](parent Array[E], key func(E) Value[R], opts ...update.Option) *MapField[E, R] {
	m := &MapField[E, R]{parent: parent, key: key}
	m.state = update.NewState[change.Array[R]](hooks{m.activate, m.deactivate}, opts...)
	return m
}

func (m *MapField[E, R]) Len() int {
	return m.parent.Len()
}

func (m *MapField[E, R]) Value() []R {
	if m.state.IsConnected() {
		values := make([]R, 0, m.fields.Len())
		for _, f := range m.fields.All {
			values = append(values, f.value)
		}
		return values
	}
	elements := m.parent.Value()
	values := make([]R, len(elements))
	for i, e := range elements {
		values[i] = m.key(e).Value()
	}
	return values
}

func (m *MapField[E, R]) Add(sink signal.Sink[update.Update[change.Array[R]]]) {
	m.state.Add(sink)
}

func (m *MapField[E, R]) Remove(sink signal.Sink[update.Update[change.Array[R]]]) {
	m.state.Remove(sink)
}

func (m *MapField[E, R]) activate() {
	m.fields = reflist.New[*fieldSink[E, R]]()
	for _, e := range m.parent.Value() {
		m.fields.Append(m.subscribe(e))
	}
	m.conn = signal.Connect(m.parent, m.apply)
}

func (m *MapField[E, R]) deactivate() {
	m.conn.Disconnect()
	m.conn = nil
	for _, f := range m.fields.All {
		f.conn.Disconnect()
	}
	m.fields.RemoveAll()
}

func (m *MapField[E, R]) subscribe(e E) *fieldSink[E, R] {
	f := &fieldSink[E, R]{owner: m, field: m.key(e)}
	f.value = f.field.Value()
	f.conn = signal.Connect(f.field, f.receive)
	return f
}

func (m *MapField[E, R]) apply(u update.Update[change.Array[E]]) {
	forward(u, m.state, func(ch change.Array[E]) {
		result := change.NewArray[R](ch.InitialCount())
		for _, mod := range ch.Modifications() {
			start := mod.StartIndex()
			var oldValues, newValues []R
			for range mod.OldElements() {
				f := m.fields.Remove(start)
				f.conn.Disconnect()
				oldValues = append(oldValues, f.value)
			}
			for i, e := range mod.NewElements() {
				f := m.subscribe(e)
				m.fields.Insert(start+i, f)
				newValues = append(newValues, f.value)
			}
			if r, ok := change.NewModification(oldValues, start, newValues); ok {
				result.Add(r)
			}
		}
		m.state.Send(result)
	})
}
