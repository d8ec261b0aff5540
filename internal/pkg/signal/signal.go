package signal

import "sync"

// Signal is a typed broadcast point. Handlers run synchronously on the
// goroutine that calls Emit, in the order they were connected.
type Signal[T any] struct {
	mu    sync.Mutex
	conns []*Connection
	slots map[*Connection]func(T)
}

// Connection is the handle returned by Connect.
type Connection struct {
	mu         sync.Mutex
	active     bool
	disconnect func()
}

// Connect subscribes fn and returns a handle that detaches it.
func (s *Signal[T]) Connect(fn func(T)) *Connection {
	c := &Connection{active: true}
	c.disconnect = func() { s.remove(c) }

	s.mu.Lock()
	if s.slots == nil {
		s.slots = make(map[*Connection]func(T))
	}
	s.slots[c] = fn
	s.conns = append(s.conns, c)
	s.mu.Unlock()

	return c
}

// Emit delivers v to every handler connected at the time of the call.
// A handler disconnected by an earlier handler in the same Emit is skipped.
func (s *Signal[T]) Emit(v T) {
	s.mu.Lock()
	conns := append([]*Connection(nil), s.conns...)
	s.mu.Unlock()

	for _, c := range conns {
		if !c.Connected() {
			continue
		}

		s.mu.Lock()
		fn := s.slots[c]
		s.mu.Unlock()

		if fn != nil {
			fn(v)
		}
	}
}

// Len reports how many handlers are connected.
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Signal[T]) remove(c *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots, c)
	for i, conn := range s.conns {
		if conn == c {
			s.conns = append(s.conns[:i], s.conns[i+1:]...)
			break
		}
	}
}

// Disconnect detaches the handler. It is safe to call more than once and on
// a nil Connection.
func (c *Connection) Disconnect() {
	if c == nil {
		return
	}

	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.mu.Unlock()

	c.disconnect()
}

// Connected reports whether the handler is still attached.
func (c *Connection) Connected() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}
