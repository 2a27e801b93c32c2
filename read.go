package stdio

import (
	"bytes"
	"io"
)

// rsetup switches the stream into read mode.
func (s *Stream) rsetup() error {
	if s.flags == 0 {
		return ErrClosed
	}
	if s.flags.has(flagRD) {
		return nil
	}
	if !s.flags.has(flagRW) {
		s.flags |= flagERR
		return ErrNotReadable
	}
	if s.flags.has(flagWR) {
		if err := s.flush(); err != nil {
			return err
		}
		s.flags &^= flagWR
	}
	s.w, s.lbfsize = 0, 0
	s.p, s.r = 0, 0
	s.flags |= flagRD
	return nil
}

// refill reads the next buffer's worth of input. Before reading from an
// unbuffered or line-buffered stream, every line-buffered output stream of
// the registry is flushed.
func (s *Stream) refill() error {
	s.r = 0
	if err := s.rsetup(); err != nil {
		return err
	}
	if s.flags.has(flagEOF) {
		return io.EOF
	}
	if s.flags.has(flagSTR) {
		s.flags |= flagEOF
		return io.EOF
	}
	if s.buf == nil {
		s.makebuf()
	}
	if s.flags.any(flagLBF|flagNBF) && s.reg != nil {
		s.reg.flushLineBuffered(s)
	}
	s.p = 0
	n, err := s.sread(s.buf)
	if n > 0 {
		s.r = n
		return nil
	}
	if err == io.EOF {
		s.flags |= flagEOF
	} else {
		s.flags |= flagERR
	}
	return err
}

// getc returns the next byte: pushback first, then the buffer, then a refill.
func (s *Stream) getc() (byte, error) {
	if n := len(s.ub); n > 0 {
		c := s.ub[n-1]
		s.ub = s.ub[:n-1]
		return c, nil
	}
	if s.r <= 0 {
		if err := s.refill(); err != nil {
			return 0, err
		}
	}
	c := s.buf[s.p]
	s.p++
	s.r--
	return c, nil
}

// ReadByte implements io.ByteReader.
func (s *Stream) ReadByte() (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.rsetup(); err != nil {
		return 0, err
	}
	return s.getc()
}

// Getc returns the next byte, or [EOF] on end of input or failure.
func (s *Stream) Getc() int {
	c, err := s.ReadByte()
	if err != nil {
		return EOF
	}
	return int(c)
}

// Read implements io.Reader with fread semantics: it keeps reading until p
// is full, input ends, or a read fails.
func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(p)
}

func (s *Stream) read(p []byte) (int, error) {
	if err := s.rsetup(); err != nil {
		return 0, err
	}
	total := 0
	for len(p) > 0 && len(s.ub) > 0 {
		n := len(s.ub) - 1
		p[0] = s.ub[n]
		s.ub = s.ub[:n]
		p = p[1:]
		total++
	}
	for len(p) > 0 {
		if s.r > 0 {
			n := copy(p, s.buf[s.p:s.p+s.r])
			s.p += n
			s.r -= n
			p = p[n:]
			total += n
			continue
		}
		if s.buf != nil && len(p) >= len(s.buf) && !s.flags.has(flagSTR) {
			n, err := s.readDirect(p)
			total += n
			p = p[n:]
			if err != nil {
				return total, err
			}
			continue
		}
		if err := s.refill(); err != nil {
			return total, err
		}
	}
	return total, nil
}

// readDirect refills straight into the caller's slice by substituting it for
// the stream buffer for one backend call.
func (s *Stream) readDirect(p []byte) (int, error) {
	saved, savedFlags := s.buf, s.flags&flagMBF
	s.buf = p
	err := s.refill()
	n := s.r
	s.buf = saved
	s.flags = s.flags&^flagMBF | savedFlags
	s.p, s.r = 0, 0
	return n, err
}

// ReadLine returns the next line including its newline. The final line of
// input may lack one. It returns io.EOF only when no bytes were read.
func (s *Stream) ReadLine() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.rsetup(); err != nil {
		return nil, err
	}
	var line []byte
	for len(s.ub) > 0 {
		c, _ := s.getc()
		line = append(line, c)
		if c == '\n' {
			return line, nil
		}
	}
	for {
		if s.r <= 0 {
			if err := s.refill(); err != nil {
				if len(line) > 0 && err == io.EOF {
					return line, nil
				}
				return line, err
			}
		}
		chunk := s.buf[s.p : s.p+s.r]
		if i := bytes.IndexByte(chunk, '\n'); i >= 0 {
			line = append(line, chunk[:i+1]...)
			s.p += i + 1
			s.r -= i + 1
			return line, nil
		}
		line = append(line, chunk...)
		s.p += s.r
		s.r = 0
	}
}
