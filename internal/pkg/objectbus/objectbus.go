package objectbus

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

var (
	// ErrInvalidPath is returned for paths that are not absolute,
	// slash-separated [A-Za-z0-9_] segments.
	ErrInvalidPath = errors.New("objectbus: invalid object path")
	// ErrPathTaken is returned when another object already owns the path.
	ErrPathTaken = errors.New("objectbus: object path already registered")
	// ErrClosed is returned once the bus has been closed.
	ErrClosed = errors.New("objectbus: bus closed")
)

// Bus is the object table shared by every published node.
type Bus interface {
	// Register publishes obj at path. A path can be owned by one object only.
	Register(path string, obj any) error
	// Unregister retracts the object at path and reports whether one existed.
	Unregister(path string) bool
	// Lookup returns the object published at path.
	Lookup(path string) (any, bool)
	// Paths lists the published paths in lexical order.
	Paths() []string
	// Close retracts everything and rejects further registrations.
	Close() error
}

// Memory is an in-process Bus.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]any
	closed  bool
}

// NewMemory returns an empty in-process bus.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]any)}
}

// Register publishes obj at path.
func (m *Memory) Register(path string, obj any) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if _, ok := m.objects[path]; ok {
		return fmt.Errorf("%w: %s", ErrPathTaken, path)
	}
	m.objects[path] = obj

	return nil
}

// Unregister retracts the object at path.
func (m *Memory) Unregister(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[path]; !ok {
		return false
	}
	delete(m.objects, path)

	return true
}

// Lookup returns the object at path.
func (m *Memory) Lookup(path string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[path]
	return obj, ok
}

// Paths lists all registered paths.
func (m *Memory) Paths() []string {
	m.mu.RLock()
	paths := make([]string, 0, len(m.objects))
	for p := range m.objects {
		paths = append(paths, p)
	}
	m.mu.RUnlock()

	slices.Sort(paths)
	return paths
}

// Close drops every object.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	clear(m.objects)

	return nil
}

// ValidatePath checks path against the object path grammar: "/" or one or
// more "/segment" parts where each segment is non-empty [A-Za-z0-9_].
func ValidatePath(path string) error {
	if path == "/" {
		return nil
	}
	if !strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	for _, seg := range strings.Split(path[1:], "/") {
		if seg == "" {
			return fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
		for i := 0; i < len(seg); i++ {
			c := seg[i]
			if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
				return fmt.Errorf("%w: %q", ErrInvalidPath, path)
			}
		}
	}

	return nil
}

// Join builds a child path under parent.
func Join(parent string, segments ...string) string {
	parent = strings.TrimSuffix(parent, "/")
	return parent + "/" + strings.Join(segments, "/")
}
