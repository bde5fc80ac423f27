package signal

import (
	"runtime"
	"sync"
)

// Connection keeps a sink attached to a source until Disconnect is called
// or the connection is garbage collected.
type Connection struct {
	once   sync.Once
	remove func()
}

type funcSink[V any] struct {
	fn func(V)
}

func (s *funcSink[V]) Receive(value V) {
	s.fn(value)
}

// Connect attaches fn to source. The sink's identity is private to the
// returned connection, so only that connection can detach it.
func Connect[V any](source Source[V], fn func(V)) *Connection {
	return ConnectSink[V](source, &funcSink[V]{fn: fn})
}

func ConnectSink[V any](source Source[V], sink Sink[V]) *Connection {
	// The closure must not capture c, or the source would keep the
	// connection reachable and the finalizer would never run.
	c := &Connection{remove: func() { source.Remove(sink) }}
	source.Add(sink)
	runtime.SetFinalizer(c, (*Connection).Disconnect)
	return c
}

// Disconnect detaches the sink. It is safe to call more than once and from
// inside the sink itself.
func (c *Connection) Disconnect() {
	c.once.Do(func() {
		runtime.SetFinalizer(c, nil)
		remove := c.remove
		c.remove = nil
		remove()
	})
}

// Connector owns a group of connections and tears them down together.
type Connector struct {
	mu          sync.Mutex
	connections []*Connection
}

func (c *Connector) Keep(conn *Connection) *Connection {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connections = append(c.connections, conn)
	return conn
}

func (c *Connector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.connections)
}

func (c *Connector) Disconnect() {
	c.mu.Lock()
	connections := c.connections
	c.connections = nil
	c.mu.Unlock()

	for _, conn := range connections {
		conn.Disconnect()
	}
}
