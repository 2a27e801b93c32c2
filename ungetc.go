package stdio

// ungetc pushes c back onto the stream. If c is the byte just consumed from
// the buffer the cursor simply steps back; otherwise c goes onto the pushback
// stack, which is read before the buffer.
func (s *Stream) ungetc(c byte) error {
	if err := s.rsetup(); err != nil {
		return err
	}
	s.flags &^= flagEOF
	if len(s.ub) == 0 && s.buf != nil && s.p > 0 && s.buf[s.p-1] == c {
		s.p--
		s.r++
		return nil
	}
	if s.ub == nil {
		s.ub = s.ubuf[:0]
	}
	s.ub = append(s.ub, c)
	return nil
}

// Ungetc pushes c back so the next read returns it. Pushed-back bytes are
// returned in reverse order of pushing and are discarded by a seek. It
// returns c, or [EOF] if c is EOF or the stream cannot be read.
func (s *Stream) Ungetc(c int) int {
	if c == EOF {
		return EOF
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ungetc(byte(c)); err != nil {
		return EOF
	}
	return int(byte(c))
}
