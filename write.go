package stdio

import (
	"bytes"
	"fmt"
)

// wsetup switches the stream into write mode, allocating a buffer if needed.
func (s *Stream) wsetup() error {
	if s.flags == 0 {
		return ErrClosed
	}
	if !s.flags.has(flagWR) {
		if !s.flags.has(flagRW) {
			s.flags |= flagERR
			return ErrNotWritable
		}
		if s.flags.has(flagRD) {
			if err := s.dropReadAhead(); err != nil && !isNotSeekable(err) {
				return err
			}
			s.ub = nil
			s.p, s.r = 0, 0
			s.flags &^= flagRD | flagEOF
		}
		s.flags |= flagWR
	}
	if s.buf == nil {
		s.makebuf()
		s.p = 0
	}
	if s.p == 0 && !s.flags.has(flagSTR) {
		s.resetWrite()
	}
	return nil
}

// putc is the single-byte fast path.
func (s *Stream) putc(c byte) error {
	s.w--
	if s.w >= 0 || (s.w >= s.lbfsize && c != '\n') {
		s.buf[s.p] = c
		s.p++
		return nil
	}
	return s.swbuf(c)
}

// swbuf is the slow path of putc: the buffer is full, a newline hit a line
// buffered stream, or the stream is not yet set up for writing.
func (s *Stream) swbuf(c byte) error {
	if s.flags.has(flagSTR) {
		s.w++
		_, err := s.writev([][]byte{{c}})
		return err
	}
	s.w = s.lbfsize
	if !s.flags.has(flagWR) || s.buf == nil {
		if err := s.wsetup(); err != nil {
			return err
		}
	}
	if s.p >= len(s.buf) {
		if err := s.flush(); err != nil {
			return err
		}
	}
	s.w--
	s.buf[s.p] = c
	s.p++
	if s.p == len(s.buf) || (s.flags.has(flagLBF) && c == '\n') {
		return s.flush()
	}
	return nil
}

// writev writes the spans as one logical byte sequence. It returns the
// number of bytes accepted; bounded string targets report every byte as
// accepted even when it did not fit.
func (s *Stream) writev(spans [][]byte) (int, error) {
	total := 0
	for _, sp := range spans {
		total += len(sp)
	}
	if total == 0 {
		return 0, nil
	}
	if err := s.wsetup(); err != nil {
		return 0, err
	}

	done := 0
	var err error
	switch {
	case s.flags.has(flagNBF):
		done, err = s.writeUnbuffered(spans)
	case s.flags.has(flagLBF):
		done, err = s.writeLineBuffered(spans)
	default:
		done, err = s.writeFullyBuffered(spans)
	}
	if err != nil {
		s.flags |= flagERR
	}
	return done, err
}

func (s *Stream) writeChunk() int {
	if s.cfg != nil {
		return s.cfg.WriteChunk
	}
	return 1024
}

func (s *Stream) writeUnbuffered(spans [][]byte) (int, error) {
	done := 0
	chunk := s.writeChunk()
	for _, p := range spans {
		for len(p) > 0 {
			n, err := s.swrite(p[:min(len(p), chunk)])
			done += n
			p = p[n:]
			if err != nil {
				return done, err
			}
		}
	}
	return done, nil
}

func (s *Stream) writeFullyBuffered(spans [][]byte) (int, error) {
	done := 0
	for _, p := range spans {
		for len(p) > 0 {
			var n int
			switch {
			case s.flags.has(flagSTR):
				if s.flags.has(flagALC) && s.w < len(p) {
					s.growString(len(p))
				}
				n = min(len(p), max(s.w, 0))
				copy(s.buf[s.p:], p[:n])
				s.w -= n
				s.p += n
				n = len(p)
			case s.p > 0 && len(p) > s.w:
				n = s.w
				copy(s.buf[s.p:], p[:n])
				s.p += n
				s.w = 0
				if err := s.flush(); err != nil {
					return done + n, err
				}
			case len(p) >= len(s.buf):
				var err error
				n, err = s.swrite(p[:len(p)-len(p)%len(s.buf)])
				if err != nil {
					return done + n, err
				}
			default:
				n = len(p)
				copy(s.buf[s.p:], p)
				s.w -= n
				s.p += n
			}
			done += n
			p = p[n:]
		}
	}
	return done, nil
}

// writeLineBuffered copies bytes through the buffer and flushes as soon as
// the last newline of each span has been copied.
func (s *Stream) writeLineBuffered(spans [][]byte) (int, error) {
	done := 0
	for _, p := range spans {
		nldist := len(p) + 1
		if i := bytes.LastIndexByte(p, '\n'); i >= 0 {
			nldist = i + 1
		}
		for len(p) > 0 {
			want := min(len(p), nldist)
			room := len(s.buf) - s.p
			var n int
			switch {
			case s.p > 0 && want > room:
				n = room
				copy(s.buf[s.p:], p[:n])
				s.p += n
				if err := s.flush(); err != nil {
					return done + n, err
				}
			case want >= len(s.buf):
				var err error
				n, err = s.swrite(p[:want])
				if err != nil {
					return done + n, err
				}
			default:
				n = want
				copy(s.buf[s.p:], p[:n])
				s.p += n
				s.w = -s.p
			}
			done += n
			p = p[n:]
			if nldist -= n; nldist == 0 {
				if err := s.flush(); err != nil {
					return done, err
				}
			}
		}
	}
	return done, nil
}

// growString enlarges an auto-growing string target so that n more bytes
// and a terminator fit. Capacity grows by half again each step.
func (s *Stream) growString(n int) {
	used := s.p
	size := len(s.buf)
	for size-used-1 < n {
		size += size/2 + 1
	}
	buf := make([]byte, size)
	copy(buf, s.buf[:used])
	s.buf = buf
	s.w = size - used - 1
	s.stats.reallocs++
}

// flush delivers pending output to the backend. On failure the unwritten
// bytes are kept at the front of the buffer and the error flag is set.
// Streams in read mode are repositioned to the logical read position.
func (s *Stream) flush() error {
	if s.flags.has(flagRD) {
		if s.r == 0 || s.flags.has(flagSTR) {
			return nil
		}
		err := s.dropReadAhead()
		if isNotSeekable(err) {
			return nil
		}
		return err
	}
	if !s.flags.has(flagWR) || s.buf == nil || s.flags.has(flagSTR) {
		return nil
	}
	n := s.p
	s.p = 0
	s.resetWrite()
	off := 0
	for n > 0 {
		t, err := s.swrite(s.buf[off : off+n])
		off += t
		n -= t
		if err != nil {
			if n > 0 {
				copy(s.buf, s.buf[off:off+n])
			}
			s.p = n
			if s.flags.has(flagLBF) {
				s.w = -n
			} else if !s.flags.has(flagNBF) {
				s.w -= n
			}
			s.flags |= flagERR
			return err
		}
	}
	return nil
}

// dropReadAhead seeks the backend back to the first unconsumed buffered byte
// and empties the ordinary buffer. Pushback is kept.
func (s *Stream) dropReadAhead() error {
	if s.r == 0 {
		return nil
	}
	if s.backend == nil || !s.backend.Caps().Seek {
		return fmt.Errorf("%w: read-ahead cannot be returned", ErrNotSeekable)
	}
	pos, err := s.backendOffset()
	if err != nil {
		return err
	}
	if _, err := s.sseek(pos-int64(s.r), SeekStart); err != nil {
		s.flags |= flagERR
		return err
	}
	s.p, s.r = 0, 0
	return nil
}

// Flush writes any buffered output to the backend. On a stream in read mode
// it returns unread buffered input to a seekable backend instead.
func (s *Stream) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flags == 0 {
		return ErrClosed
	}
	return s.flush()
}

// Write implements io.Writer with fwrite semantics.
func (s *Stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writev([][]byte{p})
}

// WriteString writes str through the buffer.
func (s *Stream) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// Writev writes the spans as one logical sequence.
func (s *Stream) Writev(spans ...[]byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writev(spans)
}

// WriteByte implements io.ByteWriter.
func (s *Stream) WriteByte(c byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flags == 0 {
		return ErrClosed
	}
	if err := s.putc(c); err != nil {
		s.flags |= flagERR
		return err
	}
	return nil
}

// Putc writes c and returns it, or [EOF] on failure.
func (s *Stream) Putc(c int) int {
	if err := s.WriteByte(byte(c)); err != nil {
		return EOF
	}
	return int(byte(c))
}
