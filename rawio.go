package stdio

import (
	"errors"
	"fmt"
	"io"
)

// sread reads from the backend and keeps the cached offset in step.
func (s *Stream) sread(p []byte) (int, error) {
	s.stats.reads++
	n, err := s.backend.Read(p)
	if n > 0 {
		if s.flags.has(flagOFF) {
			s.offset += int64(n)
		}
		return n, nil
	}
	if err == nil {
		err = io.EOF
	}
	if err != io.EOF {
		s.flags &^= flagOFF
	}
	return 0, err
}

// swrite writes to the backend. Append-mode streams over backends that do
// not append natively are positioned at the end first. Any append-mode
// write invalidates the cached offset.
func (s *Stream) swrite(p []byte) (int, error) {
	if s.flags.has(flagAPP) && !s.backend.Caps().Append {
		if _, err := s.sseek(0, SeekEnd); err != nil && s.flags.has(flagOPT) {
			return 0, err
		}
	}
	s.stats.writes++
	n, err := s.backend.Write(p)
	if n > 0 && s.flags.has(flagOFF) && !s.flags.has(flagAPP) {
		s.offset += int64(n)
	} else if n > 0 || err != nil {
		s.flags &^= flagOFF
	}
	if err == nil && n == 0 && len(p) > 0 {
		err = io.ErrShortWrite
	}
	return n, err
}

// sseek positions the backend and caches the resulting offset.
func (s *Stream) sseek(offset int64, whence int) (int64, error) {
	s.stats.seeks++
	pos, err := s.backend.Seek(offset, whence)
	if err != nil {
		s.flags &^= flagOFF
		return -1, err
	}
	if pos < 0 {
		s.flags &^= flagOFF
		return -1, fmt.Errorf("%w: backend returned offset %d", ErrInvalidArgument, pos)
	}
	s.flags |= flagOFF
	s.offset = pos
	return pos, nil
}

// backendOffset returns the backend position, from cache when valid.
func (s *Stream) backendOffset() (int64, error) {
	if s.flags.has(flagOFF) {
		return s.offset, nil
	}
	if !s.backend.Caps().Seek {
		return -1, fmt.Errorf("%w: %s stream", ErrNotSeekable, s.backend.kind())
	}
	return s.sseek(0, SeekCurrent)
}

func isNotSeekable(err error) bool { return errors.Is(err, ErrNotSeekable) }
