package stdio

import (
	"fmt"
	"math"
)

// Seek implements io.Seeker. Seeking discards pushback and clears the
// end-of-input indicator.
//
// A stream reading a regular file seeks inside its buffer when the target is
// already resident; otherwise it seeks the backend once to the enclosing
// block boundary and refills. Other streams flush and seek the backend
// verbatim.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seek(offset, whence)
}

// Tell returns the logical stream position.
func (s *Stream) Tell() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tell()
}

// Rewind seeks to the start and clears the error indicator.
func (s *Stream) Rewind() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.seek(0, SeekStart)
	if err == nil {
		s.flags &^= flagERR
	}
	return err
}

func (s *Stream) tell() (int64, error) {
	if s.flags == 0 {
		return -1, ErrClosed
	}
	if s.flags.has(flagSTR) {
		return int64(s.p), nil
	}
	if s.flags.has(flagAPP) && s.flags.has(flagWR) {
		if err := s.flush(); err != nil {
			return -1, err
		}
	}
	pos, err := s.backendOffset()
	if err != nil {
		return -1, err
	}
	switch {
	case s.flags.has(flagRD):
		pos -= int64(s.r + len(s.ub))
	case s.flags.has(flagWR) && s.buf != nil:
		pos += int64(s.p)
	}
	if pos < 0 {
		return -1, fmt.Errorf("%w: position %d", ErrInvalidArgument, pos)
	}
	return pos, nil
}

func (s *Stream) seek(offset int64, whence int) (int64, error) {
	if s.flags == 0 {
		return -1, ErrClosed
	}
	if s.flags.has(flagSTR) || !s.backend.Caps().Seek {
		return -1, ErrNotSeekable
	}

	target := offset
	switch whence {
	case SeekCurrent:
		if s.flags.has(flagWR) {
			if err := s.flush(); err != nil {
				return -1, err
			}
		}
		cur, err := s.tell()
		if err != nil {
			return -1, err
		}
		if offset > 0 && cur > math.MaxInt64-offset {
			return -1, fmt.Errorf("%w: offset overflow", ErrInvalidArgument)
		}
		target = cur + offset
		whence = SeekStart
	case SeekStart:
	case SeekEnd:
	default:
		return -1, fmt.Errorf("%w: whence %d", ErrInvalidArgument, whence)
	}
	if whence == SeekStart && target < 0 {
		return -1, fmt.Errorf("%w: negative position %d", ErrInvalidArgument, target)
	}

	if s.buf == nil {
		s.makebuf()
	}
	if pos, ok := s.seekFast(target, whence); ok {
		return pos, nil
	}
	return s.seekDumb(target, whence)
}

// seekFast tries the buffer-local and block-aligned paths. It reports false
// when the stream must fall back to a plain backend seek.
func (s *Stream) seekFast(target int64, whence int) (int64, bool) {
	if s.flags.any(flagWR|flagNBF|flagNPT) || !s.flags.has(flagRD) {
		return 0, false
	}
	if !s.flags.has(flagOPT) {
		st, ok := s.backend.(stater)
		if !ok {
			s.flags |= flagNPT
			return 0, false
		}
		info, err := st.stat()
		if err != nil || !info.regular {
			s.flags |= flagNPT
			return 0, false
		}
		s.flags |= flagOPT
		s.blksize = max(info.blksize, 1)
	}

	if whence == SeekEnd {
		st, ok := s.backend.(stater)
		if !ok {
			return 0, false
		}
		info, err := st.stat()
		if err != nil {
			return 0, false
		}
		target += info.size
		if target < 0 {
			return 0, false
		}
	}

	curoff, err := s.backendOffset()
	if err != nil {
		return 0, false
	}
	n := int64(s.p + s.r)
	if start := curoff - n; start <= target && (target < curoff || target == curoff && s.r == 0) {
		o := int(target - start)
		s.p = o
		s.r = int(n) - o
		s.ub = nil
		s.flags &^= flagEOF
		return target, true
	}

	blk := int64(max(s.blksize, 1))
	aligned := target - target%blk
	if _, err := s.sseek(aligned, SeekStart); err != nil {
		return 0, false
	}
	s.p, s.r = 0, 0
	s.ub = nil
	s.flags &^= flagEOF
	if skip := int(target - aligned); skip > 0 {
		if err := s.refill(); err != nil || s.r < skip {
			return 0, false
		}
		s.p += skip
		s.r -= skip
	}
	return target, true
}

// seekDumb flushes pending output, seeks the backend verbatim and empties
// the buffer.
func (s *Stream) seekDumb(offset int64, whence int) (int64, error) {
	if s.flags.has(flagWR) {
		if err := s.flush(); err != nil {
			return -1, err
		}
	}
	pos, err := s.sseek(offset, whence)
	if err != nil {
		return -1, err
	}
	s.ub = nil
	s.p, s.r = 0, 0
	if s.flags.has(flagWR) {
		s.resetWrite()
	}
	s.flags &^= flagEOF
	return pos, nil
}
