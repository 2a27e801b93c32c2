package stdio

import (
	"fmt"
	"io"
)

// openMode is a parsed fopen mode string.
type openMode struct {
	read, write bool
	create      bool
	trunc       bool
	append      bool
	excl        bool
	binary      bool
}

// streamFlags returns the initial stream flags for the mode.
func (m openMode) streamFlags() flag {
	var f flag
	switch {
	case m.read && m.write:
		f = flagRW
	case m.write:
		f = flagWR
	default:
		f = flagRD
	}
	if m.append {
		f |= flagAPP
	}
	return f
}

// parseMode parses an fopen mode: one of r, w, a, optionally followed by any
// of +, b, x and e. x is only valid with w; e is accepted for compatibility
// (descriptors are always opened close-on-exec).
func parseMode(mode string) (openMode, error) {
	var m openMode
	if mode == "" {
		return m, fmt.Errorf("%w: empty mode", ErrInvalidMode)
	}
	switch mode[0] {
	case 'r':
		m.read = true
	case 'w':
		m.write, m.create, m.trunc = true, true, true
	case 'a':
		m.write, m.create, m.append = true, true, true
	default:
		return m, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	for _, c := range mode[1:] {
		switch c {
		case '+':
			m.read, m.write = true, true
		case 'b':
			m.binary = true
		case 'x':
			if mode[0] != 'w' {
				return m, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
			}
			m.excl = true
		case 'e':
		default:
			return m, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
		}
	}
	return m, nil
}

// open claims a slot and binds it to the backend produced by mk. The slot is
// released again if mk fails.
func (r *Registry) open(m openMode, mk func() (Backend, error)) (*Stream, error) {
	s := r.claim()
	b, err := mk()
	if err != nil {
		s.Close()
		return nil, err
	}
	s.mu.Lock()
	s.bind(b, m.streamFlags())
	s.mu.Unlock()
	return s, nil
}

// OpenFile opens the named file with an fopen mode string.
func (r *Registry) OpenFile(path, mode string) (*Stream, error) {
	m, err := parseMode(mode)
	if err != nil {
		return nil, err
	}
	return r.open(m, func() (Backend, error) { return openPath(path, m) })
}

// OpenFD opens a stream over an already open descriptor. The descriptor's
// access mode must permit the requested mode. Closing the stream closes fd.
func (r *Registry) OpenFD(fd int, mode string) (*Stream, error) {
	m, err := parseMode(mode)
	if err != nil {
		return nil, err
	}
	m.trunc, m.create = false, false
	return r.open(m, func() (Backend, error) { return adoptFD(fd, m) })
}

// OpenMemory opens a stream over the fixed region buf.
//
// Read modes see all of buf. "w" modes truncate the region to empty, "a"
// modes start at the first NUL byte (or the end of buf in binary mode).
// Writes beyond the region fail with [ErrCapacityExceeded]. Unless the mode
// is binary, a NUL terminator follows the written data when it fits, and a
// write-only stream keeps the final byte for it.
func (r *Registry) OpenMemory(buf []byte, mode string) (*Stream, error) {
	m, err := parseMode(mode)
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: zero-sized memory region", ErrInvalidArgument)
	}
	return r.open(m, func() (Backend, error) { return newMemBackend(buf, m), nil })
}

// OpenMemstream opens a write stream over storage that grows as needed.
// The returned MemBuffer exposes what the stream has delivered so far.
func (r *Registry) OpenMemstream() (*Stream, *MemBuffer, error) {
	mb := &MemBuffer{}
	m := openMode{write: true}
	s, err := r.open(m, func() (Backend, error) { return &growBackend{mb: mb}, nil })
	if err != nil {
		return nil, nil, err
	}
	return s, mb, nil
}

// OpenFuncs opens a stream that pulls input from pull and pushes output to
// push. Either may be nil, but not both. The stream is not seekable.
//
// pull follows the io.Reader contract: end of input is reported with
// io.EOF, and a (0, nil) result means nothing was available yet, so pull is
// called again. After 100 empty results in a row the read fails with
// io.ErrNoProgress.
func (r *Registry) OpenFuncs(pull, push func(p []byte) (int, error)) (*Stream, error) {
	if pull == nil && push == nil {
		return nil, fmt.Errorf("%w: no read or write function", ErrInvalidArgument)
	}
	m := openMode{read: pull != nil, write: push != nil}
	return r.open(m, func() (Backend, error) { return &funcBackend{pull: pull, push: push}, nil })
}

// OpenReader opens a read stream over rd. Empty reads are retried as
// described for [Registry.OpenFuncs].
func (r *Registry) OpenReader(rd io.Reader) (*Stream, error) {
	if rd == nil {
		return nil, fmt.Errorf("%w: nil reader", ErrInvalidArgument)
	}
	return r.OpenFuncs(rd.Read, nil)
}

// OpenWriter opens a write stream over w.
func (r *Registry) OpenWriter(w io.Writer) (*Stream, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: nil writer", ErrInvalidArgument)
	}
	return r.OpenFuncs(nil, w.Write)
}

// OpenCookie opens a stream whose I/O is delegated to fns, each receiving
// cookie.
func (r *Registry) OpenCookie(cookie any, fns CookieFuncs, mode string) (*Stream, error) {
	m, err := parseMode(mode)
	if err != nil {
		return nil, err
	}
	caps := Caps{Read: m.read, Write: m.write, Seek: fns.Seek != nil, Append: m.append, Binary: true}
	return r.open(m, func() (Backend, error) {
		return &cookieBackend{cookie: cookie, fns: fns, caps: caps}, nil
	})
}

// Reopen closes the stream's backend and reopens path on the same stream
// with a new mode. Pending output is flushed first; flush and close errors
// are ignored as with freopen.
func (s *Stream) Reopen(path, mode string) error {
	m, err := parseMode(mode)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flags == 0 || s.reg == nil {
		return ErrClosed
	}
	if s.flags.has(flagWR) {
		_ = s.flush()
	}
	if s.backend != nil {
		_ = s.backend.Close()
	}
	b, err := openPath(path, m)
	if err != nil {
		s.release()
		return err
	}
	s.bind(b, m.streamFlags())
	return nil
}

// Stdin returns the stream over descriptor 0.
func (r *Registry) Stdin() *Stream { return r.stdStream(0) }

// Stdout returns the stream over descriptor 1. It is line buffered when
// attached to a terminal.
func (r *Registry) Stdout() *Stream { return r.stdStream(1) }

// Stderr returns the unbuffered stream over descriptor 2.
func (r *Registry) Stderr() *Stream { return r.stdStream(2) }

func (r *Registry) stdStream(fd int) *Stream {
	r.stdOnce.Do(func() {
		for i := range r.std {
			b := stdBackend(i)
			if b == nil {
				continue
			}
			m := openMode{read: i == 0, write: i != 0}
			s := r.claim()
			f := m.streamFlags()
			if i == 2 {
				f |= flagNBF
			}
			s.bind(b, f)
			r.std[i] = s
		}
	})
	return r.std[fd]
}
