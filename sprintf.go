package stdio

// Streams formatting into memory have no backend: flagSTR makes the write
// path copy into buf directly and account for bytes that do not fit.

// asprintfInitial is the starting capacity of an auto-growing target.
const asprintfInitial = 128

// newStringTarget returns a write stream over dst. Writing stops one byte
// short of its end to leave room for a terminator.
func newStringTarget(dst []byte) *Stream {
	return &Stream{flags: flagWR | flagSTR, buf: dst, w: len(dst) - 1}
}

// newGrowingTarget returns a write stream whose buffer grows as needed.
func newGrowingTarget() *Stream {
	s := newStringTarget(make([]byte, asprintfInitial))
	s.flags |= flagALC | flagMBF
	return s
}

// Snprintf formats into dst. At most len(dst)-1 bytes are stored, always
// followed by a NUL when dst is not empty. It returns the length the full
// output would have had.
func Snprintf(dst []byte, format string, args ...any) (int, error) {
	var one [1]byte
	target := dst
	if len(target) == 0 {
		target = one[:]
	}
	s := newStringTarget(target)
	n, err := s.doprnt(format, args)
	target[s.p] = 0
	return n, err
}

// Asprintf formats into newly allocated storage and returns the result.
func Asprintf(format string, args ...any) ([]byte, error) {
	s := newGrowingTarget()
	_, err := s.doprnt(format, args)
	if err != nil {
		return nil, err
	}
	return s.buf[:s.p:s.p], nil
}

// Sprintf is Asprintf returning a string.
func Sprintf(format string, args ...any) (string, error) {
	b, err := Asprintf(format, args...)
	return string(b), err
}
