package stdio

import (
	"bytes"
	"fmt"
	"io"
)

// memBackend serves a caller-owned, fixed-size region.
//
// size is the region capacity, length the logical end of data. Writes that
// reach the capacity are cut short with ErrCapacityExceeded. Text-mode
// write-only streams reserve the last byte for a NUL terminator; update and
// binary streams may fill the region completely.
type memBackend struct {
	buf    []byte
	off    int64
	length int64
	limit  int64
	caps   Caps
}

func newMemBackend(buf []byte, m openMode) *memBackend {
	b := &memBackend{
		buf:   buf,
		limit: int64(len(buf)),
		caps: Caps{
			Read:   m.read,
			Write:  m.write,
			Seek:   true,
			Append: m.append,
			Binary: m.binary,
		},
	}
	if m.write && !m.read && !m.binary {
		b.limit--
	}
	switch {
	case m.append:
		if m.binary {
			b.length = int64(len(buf))
		} else {
			b.length = int64(bytes.IndexByte(buf, 0))
			if b.length < 0 {
				b.length = int64(len(buf))
			}
		}
		b.off = b.length
	case m.trunc:
		buf[0] = 0
	default:
		b.length = int64(len(buf))
	}
	return b
}

func (b *memBackend) kind() string { return "memory" }

func (b *memBackend) Caps() Caps { return b.caps }

func (b *memBackend) Read(p []byte) (int, error) {
	if b.off >= b.length {
		return 0, io.EOF
	}
	n := copy(p, b.buf[b.off:b.length])
	b.off += int64(n)
	return n, nil
}

func (b *memBackend) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if b.caps.Append {
		b.off = b.length
	}
	room := b.limit - b.off
	if room <= 0 {
		return 0, fmt.Errorf("%w: memory region of %d bytes is full", ErrCapacityExceeded, len(b.buf))
	}
	n := len(p)
	if int64(n) > room {
		n = int(room)
	}
	copy(b.buf[b.off:], p[:n])
	b.off += int64(n)
	if b.off > b.length {
		b.length = b.off
	}
	if !b.caps.Binary && b.off < int64(len(b.buf)) && b.buf[b.off-1] != 0 {
		b.buf[b.off] = 0
	}
	if n < len(p) {
		return n, fmt.Errorf("%w: stored %d of %d bytes", ErrCapacityExceeded, n, len(p))
	}
	return n, nil
}

func (b *memBackend) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case SeekStart:
	case SeekCurrent:
		base = b.off
	case SeekEnd:
		base = b.length
	default:
		return -1, fmt.Errorf("%w: whence %d", ErrInvalidArgument, whence)
	}
	pos := base + offset
	if pos < 0 || pos > int64(len(b.buf)) {
		return -1, fmt.Errorf("%w: offset %d outside %d byte region", ErrInvalidArgument, pos, len(b.buf))
	}
	b.off = pos
	return pos, nil
}

func (b *memBackend) Close() error { return nil }
