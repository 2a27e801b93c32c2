package stdio

import (
	"fmt"
	"math"
	"sync"
)

// MemBuffer receives the contents of a stream opened with
// [Registry.OpenMemstream]. Its view is refreshed whenever the stream
// delivers bytes to it, i.e. on Flush, on buffer-full and on Close.
type MemBuffer struct {
	mu   sync.Mutex
	data []byte
	off  int64
	grow int
}

// Bytes returns a copy of the data up to the current stream position.
func (m *MemBuffer) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := min(int64(len(m.data)), m.off)
	out := make([]byte, n)
	copy(out, m.data[:n])
	return out
}

// String returns the same data as Bytes.
func (m *MemBuffer) String() string { return string(m.Bytes()) }

// Len returns the number of bytes Bytes would return.
func (m *MemBuffer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int(min(int64(len(m.data)), m.off))
}

// Reallocs reports how many times the underlying storage was reallocated.
func (m *MemBuffer) Reallocs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.grow
}

// growBackend is the write side of a MemBuffer. Writes past the end grow the
// storage geometrically; seeking past the end and writing zero-fills the gap.
type growBackend struct {
	mb *MemBuffer
}

func (b *growBackend) kind() string { return "memstream" }

func (b *growBackend) Caps() Caps {
	return Caps{Write: true, Seek: true, Binary: true}
}

func (b *growBackend) Read([]byte) (int, error) {
	return 0, fmt.Errorf("%w: memstream is write-only", ErrNotReadable)
}

func (b *growBackend) Write(p []byte) (int, error) {
	m := b.mb
	m.mu.Lock()
	defer m.mu.Unlock()
	end := m.off + int64(len(p))
	if end < m.off || end >= math.MaxInt {
		return 0, fmt.Errorf("%w: memstream size %d+%d", ErrAllocation, m.off, len(p))
	}
	if end > int64(cap(m.data)) {
		m.reserve(end)
	}
	if end > int64(len(m.data)) {
		m.data = m.data[:end]
	}
	copy(m.data[m.off:], p)
	m.off = end
	return len(p), nil
}

// reserve grows capacity by about half again until need fits, keeping one
// spare byte for a terminator.
func (m *MemBuffer) reserve(need int64) {
	size := int64(cap(m.data))
	for size < need+1 {
		size += size/2 + 16
	}
	data := make([]byte, len(m.data), size)
	copy(data, m.data)
	m.data = data
	m.grow++
}

func (b *growBackend) Seek(offset int64, whence int) (int64, error) {
	m := b.mb
	m.mu.Lock()
	defer m.mu.Unlock()
	var base int64
	switch whence {
	case SeekStart:
	case SeekCurrent:
		base = m.off
	case SeekEnd:
		base = int64(len(m.data))
	default:
		return -1, fmt.Errorf("%w: whence %d", ErrInvalidArgument, whence)
	}
	pos := base + offset
	if pos < 0 {
		return -1, fmt.Errorf("%w: negative offset %d", ErrInvalidArgument, pos)
	}
	m.off = pos
	return pos, nil
}

func (b *growBackend) Close() error { return nil }
