package stdio

import (
	"fmt"
	"sync"
)

// Stream is a buffered byte stream bound to one [Backend].
//
// Buffer state follows the classic stdio layout. In read mode buf[p:p+r] are
// the bytes not yet consumed. In write mode buf[:p] are pending and w is the
// room left; line-buffered streams keep w at or below zero, down to lbfsize
// (the negated buffer size), so every byte takes the slow path that checks
// for a newline. Pushed-back bytes live in ub, which shadows the buffer
// without touching it.
//
// All exported methods are safe for concurrent use; each holds the stream's
// mutex for the duration of the call, including any backend I/O.
type Stream struct {
	mu   sync.Mutex
	reg  *Registry
	slot int
	cfg  *Config

	flags   flag
	backend Backend

	buf     []byte
	nbuf    [1]byte
	p       int
	r       int
	w       int
	lbfsize int

	ub   []byte
	ubuf [3]byte

	offset  int64
	blksize int

	stats streamStats
}

// streamStats counts backend traffic and string-target growth.
type streamStats struct {
	reads    int64
	writes   int64
	seeks    int64
	reallocs int
}

func (s *Stream) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flags == 0 {
		return fmt.Sprintf("stream#%d(closed)", s.slot)
	}
	kind := "string"
	if s.backend != nil {
		kind = s.backend.kind()
	}
	return fmt.Sprintf("stream#%d(%s)", s.slot, kind)
}

// bind attaches a freshly claimed stream to its backend.
func (s *Stream) bind(b Backend, f flag) {
	s.backend = b
	s.flags = f
	s.buf = nil
	s.p, s.r, s.w, s.lbfsize = 0, 0, 0, 0
	s.ub = nil
	s.offset = 0
	s.blksize = 0
	s.stats = streamStats{}
}

// HasError reports whether an I/O error has been recorded on the stream.
func (s *Stream) HasError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags.has(flagERR)
}

// AtEOF reports whether end of input has been seen.
func (s *Stream) AtEOF() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags.has(flagEOF)
}

// ClearErr resets the error and end-of-input indicators.
func (s *Stream) ClearErr() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags &^= flagERR | flagEOF
}

// Mode returns the buffering discipline in effect.
func (s *Stream) Mode() BufferMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode()
}

func (s *Stream) mode() BufferMode {
	switch {
	case s.flags.has(flagNBF):
		return Unbuffered
	case s.flags.has(flagLBF):
		return LineBuffered
	default:
		return FullyBuffered
	}
}

func (s *Stream) bufferSize() int {
	if s.cfg != nil {
		return s.cfg.BufferSize
	}
	return 1024
}

// makebuf allocates the stream buffer on first use. Regular files get their
// preferred block size and enable seek optimisation; terminals become line
// buffered.
func (s *Stream) makebuf() {
	if s.flags.has(flagNBF) {
		s.buf = s.nbuf[:]
		return
	}
	size := 0
	var info statInfo
	if st, ok := s.backend.(stater); ok {
		if i, err := st.stat(); err == nil {
			info = i
			size = i.blksize
		}
	}
	if size <= 0 {
		size = s.bufferSize()
	}
	if !s.flags.any(flagOPT | flagNPT) {
		if info.regular {
			s.flags |= flagOPT
			s.blksize = size
		} else {
			s.flags |= flagNPT
		}
	}
	s.buf = make([]byte, size)
	s.flags |= flagMBF
	if info.tty {
		s.flags |= flagLBF
	}
}

// SetBuffer selects the buffering mode and, optionally, a caller-owned
// buffer. It must be called before the first I/O operation on the stream.
// A nil or empty buf with a buffered mode lets the stream allocate its own.
func (s *Stream) SetBuffer(buf []byte, mode BufferMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flags == 0 {
		return ErrClosed
	}
	if s.flags.has(flagSTR) {
		return fmt.Errorf("%w: string target", ErrInvalidArgument)
	}
	if mode < FullyBuffered || mode > Unbuffered {
		return fmt.Errorf("%w: buffer mode %d", ErrInvalidArgument, mode)
	}
	if s.buf != nil && (s.p > 0 || s.r > 0 || len(s.ub) > 0) {
		return ErrBufferInUse
	}
	s.flags &^= flagLBF | flagNBF | flagMBF | flagEOF
	s.buf = nil
	s.p, s.r, s.w, s.lbfsize = 0, 0, 0, 0
	switch mode {
	case Unbuffered:
		s.flags |= flagNBF
		s.buf = s.nbuf[:]
	case LineBuffered:
		s.flags |= flagLBF
		fallthrough
	default:
		if len(buf) > 0 {
			s.buf = buf
		}
	}
	if s.buf != nil && s.flags.has(flagWR) {
		s.resetWrite()
	}
	return nil
}

// resetWrite primes the write counters after the buffer or mode changed.
func (s *Stream) resetWrite() {
	if s.flags.has(flagLBF) {
		s.w = 0
		s.lbfsize = -len(s.buf)
		return
	}
	s.lbfsize = 0
	if s.flags.has(flagNBF) {
		s.w = 0
	} else {
		s.w = len(s.buf)
	}
}

// Close flushes pending output, closes the backend and releases the slot.
// Closing a closed stream succeeds and does nothing.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.close()
}

func (s *Stream) close() error {
	if s.flags == 0 {
		return nil
	}
	if s.flags == flagClaimed {
		s.release()
		return nil
	}
	var err error
	if s.flags.has(flagWR) {
		err = s.flush()
	}
	if s.backend != nil {
		if cerr := s.backend.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	s.release()
	return err
}

// release drops the buffer, pushback and backend and frees the slot.
func (s *Stream) release() {
	s.buf = nil
	s.ub = nil
	s.backend = nil
	s.p, s.r, s.w, s.lbfsize = 0, 0, 0, 0
	s.flags = 0
	if s.reg != nil {
		s.reg.release(s)
	}
}

// Purge discards buffered input and output, including pushback, without
// touching the backend.
func (s *Stream) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flags == 0 {
		return ErrClosed
	}
	s.ub = nil
	s.p, s.r = 0, 0
	if s.flags.has(flagWR) {
		s.resetWrite()
	} else {
		s.w = 0
	}
	return nil
}
